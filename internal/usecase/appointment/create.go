package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/lock"
	"github.com/NavalhaClub/barber-agenda/internal/models"
	"github.com/NavalhaClub/barber-agenda/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BarbershopID uint
	BarberID     uint
	ServiceID    uint

	// Cliente autenticado (resolvido pelo perfil) OU dados de balcão
	CustomerID    uint
	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	Date  string // 2006-01-02 no fuso da barbearia
	Time  string // 15:04 no fuso da barbearia
	Notes string

	// Quem disparou a criação (para auditoria); zero em booking público
	ActorUserID uint
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo        domain.Repository
	locker      lock.SlotLocker
	audit       *audit.Dispatcher
	defaultStep int
}

func NewCreateAppointment(
	repo domain.Repository,
	locker lock.SlotLocker,
	auditDispatcher *audit.Dispatcher,
	defaultStep int,
) *CreateAppointment {
	return &CreateAppointment{
		repo:        repo,
		locker:      locker,
		audit:       auditDispatcher,
		defaultStep: defaultStep,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute fecha a corrida entre "li a agenda" e "reservei": dentro do
// lock do slot, a disponibilidade é recalculada e o horário pedido tem
// que continuar membro dela antes do INSERT.
func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, httperr.ErrNotFound("barbershop_not_found")
	}

	// Data/hora sempre no fuso da barbearia; o fuso do processo ou do
	// chamador produziria rejeições (ou sobreposições) com horas de erro
	loc := timezone.Location(shop.Timezone)
	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, loc)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date_or_time")
	}

	minAdvance := shop.MinAdvanceMinutes
	if minAdvance < 0 {
		minAdvance = 0
	}

	now := timezone.NowIn(shop.Timezone)
	if !start.After(now) || start.Before(now.Add(time.Duration(minAdvance)*time.Minute)) {
		return nil, httperr.ErrValidation("too_soon")
	}

	service, err := uc.repo.GetService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrNotFound("service_not_found")
	}

	barber, err := uc.repo.GetBarber(ctx, in.BarbershopID, in.BarberID)
	if err != nil || !barber.Active {
		return nil, httperr.ErrNotFound("barber_not_found")
	}

	duration := time.Duration(service.DurationMin) * time.Minute
	end := start.Add(duration)

	wh, err := uc.repo.GetWorkingHours(ctx, barber.ID, int(start.Weekday()))
	if err != nil {
		return nil, httperr.ErrSchedule("outside_working_hours")
	}

	win, ok := domain.WindowFromWorkingHours(wh, start, loc)
	if !ok || !win.Contains(start, end) {
		return nil, httperr.ErrSchedule("outside_working_hours")
	}

	customer, err := uc.resolveCustomer(ctx, in)
	if err != nil {
		return nil, err
	}

	step := shop.SlotStepMinutes
	if step <= 0 {
		step = uc.defaultStep
	}

	var created *models.Appointment

	err = uc.locker.WithSlotLock(ctx, barber.ID, start, func(lockCtx context.Context) error {
		// Revalidação no commit: o horário ainda é membro da saída do
		// cálculo de disponibilidade?
		busy, err := uc.repo.ListActiveAppointments(lockCtx, barber.ID, win.Start, win.End)
		if err != nil {
			return err
		}

		intervals := make([]domain.Interval, 0, len(busy))
		for _, ap := range busy {
			intervals = append(intervals, domain.Interval{Start: ap.StartTime, End: ap.EndTime})
		}

		slots := domain.BuildSlots(win, duration, time.Duration(step)*time.Minute, intervals, now)
		if !slotOffered(slots, start) {
			return httperr.ErrConflict("slot_no_longer_available")
		}

		// Cinto e suspensório: pega sobreposições fora da grade de slots
		if err := uc.repo.AssertNoTimeConflict(lockCtx, barber.ID, start, end); err != nil {
			return err
		}

		ap := &models.Appointment{
			Reference:    uuid.NewString(),
			BarbershopID: in.BarbershopID,
			BarberID:     barber.ID,
			CustomerID:   customer.ID,
			ServiceID:    service.ID,
			StartTime:    start,
			DurationMin:  service.DurationMin,
			EndTime:      end,
			Status:       string(domain.InitialStatus()),
			Notes:        in.Notes,
		}

		if err := uc.repo.CreateAppointment(lockCtx, ap); err != nil {
			return err
		}

		created = ap
		return nil
	})

	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, httperr.ErrConflict("slot_being_booked")
		}
		return nil, err
	}

	var actorID *uint
	if in.ActorUserID != 0 {
		actorID = &in.ActorUserID
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: in.BarbershopID,
		UserID:       actorID,
		Action:       audit.ActionAppointmentCreated,
		Entity:       "appointment",
		EntityID:     &created.ID,
	})

	return created, nil
}

func (uc *CreateAppointment) resolveCustomer(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Customer, error) {

	// Cliente autenticado já chega resolvido pelo perfil do usuário
	if in.CustomerID != 0 {
		return &models.Customer{ID: in.CustomerID, BarbershopID: in.BarbershopID}, nil
	}

	if in.CustomerName == "" || in.CustomerPhone == "" {
		return nil, httperr.ErrValidation("customer_data_required")
	}

	customer, err := uc.repo.GetOrCreateCustomer(
		ctx,
		in.BarbershopID,
		in.CustomerName,
		in.CustomerPhone,
		in.CustomerEmail,
	)
	if err != nil {
		return nil, err
	}

	return customer, nil
}

func slotOffered(slots []domain.TimeSlot, start time.Time) bool {
	for _, s := range slots {
		if s.StartAt.Equal(start) {
			return true
		}
	}
	return false
}
