package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
)

// fakeRepo implementa domain.Repository em memória com a mesma
// semântica condicional do banco (escrita só se o status bater).
type fakeRepo struct {
	mu sync.Mutex

	shops        map[uint]*models.Barbershop
	barbers      map[uint]*models.Barber
	services     map[uint]*models.Service
	customers    map[uint]*models.Customer
	workingHours map[uint]map[int]*models.WorkingHours // barberID -> weekday
	appointments map[uint]*models.Appointment

	nextID uint

	// Falha injetável por ID, para testar continue-on-error do sweep
	transitionErr map[uint]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		shops:         map[uint]*models.Barbershop{},
		barbers:       map[uint]*models.Barber{},
		services:      map[uint]*models.Service{},
		customers:     map[uint]*models.Customer{},
		workingHours:  map[uint]map[int]*models.WorkingHours{},
		appointments:  map[uint]*models.Appointment{},
		nextID:        1,
		transitionErr: map[uint]error{},
	}
}

var _ domain.Repository = (*fakeRepo)(nil)

var errFakeNotFound = errors.New("not found")

// ---------- seeds ----------

func (f *fakeRepo) addShop(shop models.Barbershop) *models.Barbershop {
	f.mu.Lock()
	defer f.mu.Unlock()
	if shop.ID == 0 {
		shop.ID = f.nextID
		f.nextID++
	}
	if shop.Timezone == "" {
		shop.Timezone = "America/Sao_Paulo"
	}
	f.shops[shop.ID] = &shop
	return &shop
}

func (f *fakeRepo) addBarber(b models.Barber) *models.Barber {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == 0 {
		b.ID = f.nextID
		f.nextID++
	}
	f.barbers[b.ID] = &b
	return &b
}

func (f *fakeRepo) addService(s models.Service) *models.Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == 0 {
		s.ID = f.nextID
		f.nextID++
	}
	f.services[s.ID] = &s
	return &s
}

func (f *fakeRepo) addCustomer(c models.Customer) *models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	}
	f.customers[c.ID] = &c
	return &c
}

func (f *fakeRepo) addWorkingHours(wh models.WorkingHours) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.workingHours[wh.BarberID] == nil {
		f.workingHours[wh.BarberID] = map[int]*models.WorkingHours{}
	}
	f.workingHours[wh.BarberID][wh.Weekday] = &wh
}

func (f *fakeRepo) addAppointment(ap models.Appointment) *models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ap.ID == 0 {
		ap.ID = f.nextID
		f.nextID++
	}
	f.appointments[ap.ID] = &ap
	return &ap
}

// ---------- Barbershop ----------

func (f *fakeRepo) GetBarbershopByID(_ context.Context, id uint) (*models.Barbershop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.shops[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeRepo) GetBarbershopBySlug(_ context.Context, slug string) (*models.Barbershop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.shops {
		if s.Slug == slug {
			cp := *s
			return &cp, nil
		}
	}
	return nil, errFakeNotFound
}

// ---------- Barbers ----------

func (f *fakeRepo) GetBarber(_ context.Context, barbershopID, barberID uint) (*models.Barber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.barbers[barberID]; ok && b.BarbershopID == barbershopID {
		cp := *b
		return &cp, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeRepo) GetBarberByUser(_ context.Context, userID uint) (*models.Barber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.barbers {
		if b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, errFakeNotFound
}

// ---------- Services ----------

func (f *fakeRepo) GetService(_ context.Context, barbershopID, serviceID uint) (*models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.services[serviceID]; ok && s.BarbershopID == barbershopID {
		cp := *s
		return &cp, nil
	}
	return nil, errFakeNotFound
}

// ---------- Customers ----------

func (f *fakeRepo) GetCustomerByUser(_ context.Context, userID uint) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.UserID != nil && *c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeRepo) GetOrCreateCustomer(_ context.Context, barbershopID uint, name, phone, email string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.BarbershopID == barbershopID && c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	c := &models.Customer{
		ID:           f.nextID,
		BarbershopID: barbershopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
	}
	f.nextID++
	f.customers[c.ID] = c
	cp := *c
	return &cp, nil
}

// ---------- Disponibilidade ----------

func (f *fakeRepo) GetWorkingHours(_ context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if days, ok := f.workingHours[barberID]; ok {
		if wh, ok := days[weekday]; ok {
			cp := *wh
			return &cp, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeRepo) ListActiveAppointments(_ context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.BarberID != barberID || !domain.IsActive(domain.Status(ap.Status)) {
			continue
		}
		if ap.StartTime.Before(end) && start.Before(ap.EndTime) {
			out = append(out, *ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// ---------- Criação / conflito ----------

func (f *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Insert atômico com a checagem de sobreposição, como a constraint
	// de exclusão do banco: entre dois concorrentes só um entra
	if err := f.assertNoTimeConflictLocked(ap.BarberID, ap.StartTime, ap.EndTime); err != nil {
		return err
	}
	ap.ID = f.nextID
	f.nextID++
	cp := *ap
	f.appointments[ap.ID] = &cp
	return nil
}

func (f *fakeRepo) AssertNoTimeConflict(_ context.Context, barberID uint, start, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assertNoTimeConflictLocked(barberID, start, end)
}

func (f *fakeRepo) assertNoTimeConflictLocked(barberID uint, start, end time.Time) error {
	for _, ap := range f.appointments {
		if ap.BarberID != barberID || !domain.IsActive(domain.Status(ap.Status)) {
			continue
		}
		if ap.StartTime.Before(end) && start.Before(ap.EndTime) {
			return httperr.ErrConflict("time_conflict")
		}
	}
	return nil
}

// ---------- Estado ----------

func (f *fakeRepo) GetAppointmentByID(_ context.Context, id uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ap, ok := f.appointments[id]; ok {
		cp := *ap
		return &cp, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeRepo) TransitionStatus(_ context.Context, id uint, from, to domain.Status, fields map[string]any) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.transitionErr[id]; ok {
		return nil, err
	}

	ap, ok := f.appointments[id]
	if !ok || ap.Status != string(from) {
		return nil, domain.ErrStatusChanged
	}

	ap.Status = string(to)
	for k, v := range fields {
		switch k {
		case "cancellation_reason":
			ap.CancellationReason = v.(string)
		case "cancelled_by":
			ap.CancelledBy = v.(string)
		case "cancelled_at":
			ap.CancelledAt = v.(*time.Time)
		case "completed_at":
			ap.CompletedAt = v.(*time.Time)
		}
	}

	cp := *ap
	return &cp, nil
}

// ---------- Ocultação / purge ----------

func (f *fakeRepo) SetHidden(_ context.Context, id uint, role domain.Role, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ap, ok := f.appointments[id]
	if !ok {
		return errFakeNotFound
	}
	domain.MarkHidden(ap, role, at)
	return nil
}

func (f *fakeRepo) ClearHidden(_ context.Context, id uint, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ap, ok := f.appointments[id]
	if !ok {
		return errFakeNotFound
	}
	switch role {
	case domain.RoleCustomer:
		ap.HiddenByCustomer = false
	case domain.RoleBarber:
		ap.HiddenByBarber = false
	case domain.RoleAdmin:
		ap.HiddenByAdmin = false
	}
	if !ap.HiddenByCustomer && !ap.HiddenByBarber && !ap.HiddenByAdmin {
		ap.MarkedForDeletionAt = nil
	}
	return nil
}

func (f *fakeRepo) PurgeIfConsensus(_ context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ap, ok := f.appointments[id]
	if !ok {
		return false, nil
	}
	if domain.ReadyForPurge(ap) {
		delete(f.appointments, id)
		return true, nil
	}
	return false, nil
}

func (f *fakeRepo) PurgeAllConsensus(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, ap := range f.appointments {
		if domain.ReadyForPurge(ap) {
			delete(f.appointments, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) HardDelete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.appointments[id]; !ok {
		return errFakeNotFound
	}
	delete(f.appointments, id)
	return nil
}

// ---------- Reconciliador ----------

func (f *fakeRepo) ListExpiredPending(_ context.Context, now time.Time, defaultGraceMin int) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.Status != string(domain.StatusPending) {
			continue
		}
		grace := defaultGraceMin
		if shop, ok := f.shops[ap.BarbershopID]; ok && shop.PendingGraceMinutes > 0 {
			grace = shop.PendingGraceMinutes
		}
		if ap.StartTime.Add(time.Duration(grace) * time.Minute).Before(now) {
			out = append(out, *ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------- Listagem / stats ----------

func (f *fakeRepo) ListForRole(_ context.Context, q domain.ListQuery) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.BarbershopID != q.BarbershopID {
			continue
		}
		switch q.Role {
		case domain.RoleCustomer:
			if ap.CustomerID != q.CustomerID || ap.HiddenByCustomer {
				continue
			}
		case domain.RoleBarber:
			if ap.BarberID != q.BarberID || ap.HiddenByBarber {
				continue
			}
		case domain.RoleAdmin:
			if ap.HiddenByAdmin {
				continue
			}
		}
		if q.Status != "" && ap.Status != string(q.Status) {
			continue
		}
		if !q.From.IsZero() && ap.StartTime.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !ap.StartTime.Before(q.To) {
			continue
		}
		out = append(out, *ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeRepo) AggregateStats(_ context.Context, q domain.StatsQuery) ([]domain.StatRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Mesmo escopo por papel e mesma janela da listagem
	rows := map[string]*domain.StatRow{}
	for _, ap := range f.appointments {
		if ap.BarbershopID != q.BarbershopID {
			continue
		}
		switch q.Role {
		case domain.RoleCustomer:
			if ap.CustomerID != q.CustomerID || ap.HiddenByCustomer {
				continue
			}
		case domain.RoleBarber:
			if ap.BarberID != q.BarberID || ap.HiddenByBarber {
				continue
			}
		case domain.RoleAdmin:
			if ap.HiddenByAdmin {
				continue
			}
		}
		if !q.From.IsZero() && ap.StartTime.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !ap.StartTime.Before(q.To) {
			continue
		}

		var key string
		switch q.GroupBy {
		case domain.GroupByStatus:
			key = ap.Status
		case domain.GroupByBarber:
			key = fmt.Sprintf("%d", ap.BarberID)
		case domain.GroupByDay:
			key = ap.StartTime.Format("2006-01-02")
		}

		row, ok := rows[key]
		if !ok {
			row = &domain.StatRow{Key: key}
			rows[key] = row
		}
		row.Count++
		if svc, ok := f.services[ap.ServiceID]; ok {
			row.Revenue += svc.Price
		}
	}
	var out []domain.StatRow
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ---------- helpers de teste ----------

// Locker que só executa o callback, sem Redis.
type passthroughLocker struct{}

func (passthroughLocker) WithSlotLock(ctx context.Context, _ uint, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Locker que simula contenção permanente no slot.
type contendedLocker struct{ err error }

func (l contendedLocker) WithSlotLock(context.Context, uint, time.Time, func(ctx context.Context) error) error {
	return l.err
}

func testDispatcher() *audit.Dispatcher {
	return audit.NewDispatcher(audit.New(nil), zap.NewNop())
}
