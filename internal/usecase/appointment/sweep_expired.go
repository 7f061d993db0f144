package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
)

const expiredReason = "Não confirmado dentro do prazo"

type SweepFailure struct {
	AppointmentID uint   `json:"appointment_id"`
	Err           string `json:"error"`
}

type SweepResult struct {
	Processed int            `json:"processed"`
	Failures  []SweepFailure `json:"failures"`
}

type SweepExpired struct {
	repo         domain.Repository
	audit        *audit.Dispatcher
	defaultGrace time.Duration
}

func NewSweepExpired(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
	defaultGrace time.Duration,
) *SweepExpired {
	return &SweepExpired{
		repo:         repo,
		audit:        auditDispatcher,
		defaultGrace: defaultGrace,
	}
}

// Execute cancela (nunca apaga) pendings que ninguém aprovou dentro da
// janela de carência. A transição é condicionada a "ainda pending":
// sweeps concorrentes entre si ou com uma aprovação não se atropelam:
// quem perder a corrida só pula o registro. Falha de um registro não
// derruba o lote.
func (uc *SweepExpired) Execute(
	ctx context.Context,
	now time.Time,
) (SweepResult, error) {

	result := SweepResult{Failures: []SweepFailure{}}

	expired, err := uc.repo.ListExpiredPending(ctx, now, int(uc.defaultGrace.Minutes()))
	if err != nil {
		return result, err
	}

	for _, ap := range expired {
		cancelledAt := now
		_, err := uc.repo.TransitionStatus(
			ctx,
			ap.ID,
			domain.StatusPending,
			domain.StatusCancelled,
			map[string]any{
				"cancellation_reason": expiredReason,
				"cancelled_by":        string(domain.RoleSystem),
				"cancelled_at":        &cancelledAt,
			},
		)
		if err != nil {
			// Perdeu a corrida para uma aprovação/cancelamento: não é
			// falha, o registro simplesmente não está mais elegível
			if errors.Is(err, domain.ErrStatusChanged) {
				continue
			}
			result.Failures = append(result.Failures, SweepFailure{
				AppointmentID: ap.ID,
				Err:           err.Error(),
			})
			continue
		}

		result.Processed++

		uc.audit.Dispatch(audit.Event{
			BarbershopID: ap.BarbershopID,
			Action:       audit.ActionAppointmentCancelled,
			Entity:       "appointment",
			EntityID:     &ap.ID,
			Metadata:     map[string]string{"reason": expiredReason, "by": string(domain.RoleSystem)},
		})
	}

	return result, nil
}
