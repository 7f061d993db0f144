package appointment

import (
	"context"
	"time"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
)

type GetStats struct {
	repo domain.Repository
}

func NewGetStats(repo domain.Repository) *GetStats {
	return &GetStats{repo: repo}
}

// Execute agrega contagens e receita sobre a janela pedida. Só leitura;
// respeita a mesma visibilidade por papel das listagens.
func (uc *GetStats) Execute(
	ctx context.Context,
	barbershopID uint,
	userID uint,
	role domain.Role,
	from time.Time,
	to time.Time,
	groupBy domain.StatsGroupBy,
) ([]domain.StatRow, error) {

	switch groupBy {
	case domain.GroupByStatus, domain.GroupByBarber, domain.GroupByDay:
	default:
		return nil, httperr.ErrValidation("invalid_group_by")
	}

	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return nil, httperr.ErrValidation("invalid_window")
	}

	actor, err := resolveActor(ctx, uc.repo, userID, role)
	if err != nil {
		return nil, err
	}

	rows, err := uc.repo.AggregateStats(ctx, domain.StatsQuery{
		BarbershopID: barbershopID,
		Role:         role,
		BarberID:     actor.BarberID,
		CustomerID:   actor.CustomerID,
		From:         from,
		To:           to,
		GroupBy:      groupBy,
	})
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []domain.StatRow{}
	}
	return rows, nil
}
