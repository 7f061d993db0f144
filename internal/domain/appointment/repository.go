package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/NavalhaClub/barber-agenda/internal/models"
)

// ErrStatusChanged indica que a escrita condicional não encontrou o
// registro no status esperado (outra instância ganhou a corrida).
var ErrStatusChanged = errors.New("appointment status changed concurrently")

// ListQuery já chega com o escopo resolvido pelo usecase: cliente vê os
// próprios, barbeiro os próprios, admin a barbearia toda.
type ListQuery struct {
	BarbershopID uint
	Role         Role
	BarberID     uint
	CustomerID   uint

	From   time.Time
	To     time.Time
	Status Status // vazio = todos
}

type StatsGroupBy string

const (
	GroupByStatus StatsGroupBy = "status"
	GroupByBarber StatsGroupBy = "barber"
	GroupByDay    StatsGroupBy = "day"
)

type StatsQuery struct {
	BarbershopID uint
	Role         Role
	BarberID     uint
	CustomerID   uint

	From    time.Time
	To      time.Time
	GroupBy StatsGroupBy
}

type StatRow struct {
	Key     string  `json:"key"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type Repository interface {
	// -------- Barbershop --------
	GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error)
	GetBarbershopBySlug(ctx context.Context, slug string) (*models.Barbershop, error)

	// -------- Diretório de barbeiros --------
	GetBarber(ctx context.Context, barbershopID, barberID uint) (*models.Barber, error)
	GetBarberByUser(ctx context.Context, userID uint) (*models.Barber, error)

	// -------- Catálogo de serviços --------
	GetService(ctx context.Context, barbershopID, serviceID uint) (*models.Service, error)

	// -------- Clientes --------
	GetCustomerByUser(ctx context.Context, userID uint) (*models.Customer, error)
	GetOrCreateCustomer(ctx context.Context, barbershopID uint, name, phone, email string) (*models.Customer, error)

	// -------- Disponibilidade --------
	GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error)
	ListActiveAppointments(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error)

	// -------- Criação / conflito --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	AssertNoTimeConflict(ctx context.Context, barberID uint, start, end time.Time) error

	// -------- Mudança de estado (CAS) --------
	GetAppointmentByID(ctx context.Context, id uint) (*models.Appointment, error)
	// TransitionStatus aplica fields somente se o registro ainda estiver
	// em from; caso contrário retorna ErrStatusChanged e nada muda.
	TransitionStatus(ctx context.Context, id uint, from, to Status, fields map[string]any) (*models.Appointment, error)

	// -------- Ocultação / purge em consenso --------
	SetHidden(ctx context.Context, id uint, role Role, at time.Time) error
	ClearHidden(ctx context.Context, id uint, role Role) error
	PurgeIfConsensus(ctx context.Context, id uint) (bool, error)
	PurgeAllConsensus(ctx context.Context) (int64, error)
	HardDelete(ctx context.Context, id uint) error

	// -------- Reconciliador --------
	// defaultGraceMin cobre lojas sem carência própria configurada.
	ListExpiredPending(ctx context.Context, now time.Time, defaultGraceMin int) ([]models.Appointment, error)

	// -------- Listagem / estatísticas --------
	ListForRole(ctx context.Context, q ListQuery) ([]models.Appointment, error)
	AggregateStats(ctx context.Context, q StatsQuery) ([]StatRow, error)
}
