package appointment

import (
	"context"
	"time"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/dto"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
)

type ListFilter struct {
	From   time.Time
	To     time.Time
	Status string
}

type ListForRole struct {
	repo domain.Repository
}

func NewListForRole(repo domain.Repository) *ListForRole {
	return &ListForRole{repo: repo}
}

// Execute lista o que o papel enxerga: cliente os próprios, barbeiro os
// próprios, admin a barbearia toda. Sempre sem os registros que o
// próprio papel escondeu.
func (uc *ListForRole) Execute(
	ctx context.Context,
	barbershopID uint,
	userID uint,
	role domain.Role,
	filter ListFilter,
) ([]dto.AppointmentListDTO, error) {

	actor, err := resolveActor(ctx, uc.repo, userID, role)
	if err != nil {
		return nil, err
	}

	var status domain.Status
	if filter.Status != "" {
		status = domain.Status(filter.Status)
		if !domain.IsValidStatus(status) {
			return nil, httperr.ErrValidation("invalid_status")
		}
	}

	appointments, err := uc.repo.ListForRole(ctx, domain.ListQuery{
		BarbershopID: barbershopID,
		Role:         role,
		BarberID:     actor.BarberID,
		CustomerID:   actor.CustomerID,
		From:         filter.From,
		To:           filter.To,
		Status:       status,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:                 ap.ID,
			Reference:          ap.Reference,
			StartTime:          ap.StartTime,
			EndTime:            ap.EndTime,
			DurationMin:        ap.DurationMin,
			Status:             ap.Status,
			CustomerName:       ap.Customer.Name,
			BarberName:         ap.Barber.DisplayName,
			ServiceName:        ap.Service.Name,
			CancellationReason: ap.CancellationReason,
			CancelledBy:        ap.CancelledBy,
			CancelledAt:        ap.CancelledAt,
		})
	}

	return out, nil
}
