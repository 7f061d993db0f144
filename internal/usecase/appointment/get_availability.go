package appointment

import (
	"context"
	"time"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/timezone"
)

type GetAvailability struct {
	repo        domain.Repository
	defaultStep int
}

func NewGetAvailability(repo domain.Repository, defaultStep int) *GetAvailability {
	return &GetAvailability{repo: repo, defaultStep: defaultStep}
}

// Execute enumera os horários livres do barbeiro na data pedida.
// Função de leitura pura: nada é reservado aqui, a vaga só fecha no
// commit da criação.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, httperr.ErrNotFound("barbershop_not_found")
	}

	barber, err := uc.repo.GetBarber(ctx, in.BarbershopID, in.BarberID)
	if err != nil || !barber.Active {
		return nil, httperr.ErrNotFound("barber_not_found")
	}

	service, err := uc.repo.GetService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrNotFound("service_not_found")
	}

	loc := timezone.Location(shop.Timezone)
	date := in.Date.In(loc)

	// Sem expediente configurado no weekday = dia fechado
	wh, err := uc.repo.GetWorkingHours(ctx, barber.ID, int(date.Weekday()))
	if err != nil {
		return []domain.TimeSlot{}, nil
	}

	win, ok := domain.WindowFromWorkingHours(wh, date, loc)
	if !ok {
		return []domain.TimeSlot{}, nil
	}

	busy, err := uc.repo.ListActiveAppointments(ctx, barber.ID, win.Start, win.End)
	if err != nil {
		return nil, err
	}

	intervals := make([]domain.Interval, 0, len(busy))
	for _, ap := range busy {
		intervals = append(intervals, domain.Interval{Start: ap.StartTime, End: ap.EndTime})
	}

	step := shop.SlotStepMinutes
	if step <= 0 {
		step = uc.defaultStep
	}

	slots := domain.BuildSlots(
		win,
		time.Duration(service.DurationMin)*time.Minute,
		time.Duration(step)*time.Minute,
		intervals,
		timezone.NowIn(shop.Timezone),
	)

	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	return slots, nil
}
