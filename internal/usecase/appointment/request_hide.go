package appointment

import (
	"context"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/timezone"
)

type RequestHide struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRequestHide(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *RequestHide {
	return &RequestHide{
		repo:  repo,
		audit: auditDispatcher,
	}
}

// Execute esconde o agendamento da listagem do papel. Idempotente.
// O status nunca é tocado aqui. Quando a terceira flag vira, o purge é
// tentado na hora; o sweep periódico fica só de rede de segurança.
func (uc *RequestHide) Execute(
	ctx context.Context,
	userID uint,
	role domain.Role,
	appointmentID uint,
) error {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return httperr.ErrNotFound("appointment_not_found")
	}

	actor, err := resolveActor(ctx, uc.repo, userID, role)
	if err != nil {
		return err
	}
	if !domain.Allowed(actor, ap, domain.ActionHide) {
		return httperr.ErrPermission("not_allowed")
	}

	now := timezone.Now()
	changed := domain.MarkHidden(ap, role, now)

	if err := uc.repo.SetHidden(ctx, ap.ID, role, now); err != nil {
		return err
	}

	if changed {
		uc.audit.Dispatch(audit.Event{
			BarbershopID: ap.BarbershopID,
			UserID:       &userID,
			Action:       audit.ActionAppointmentHidden,
			Entity:       "appointment",
			EntityID:     &ap.ID,
			Metadata:     map[string]string{"role": string(role)},
		})
	}

	if domain.ReadyForPurge(ap) {
		purged, err := uc.repo.PurgeIfConsensus(ctx, ap.ID)
		if err != nil {
			return err
		}
		if purged {
			uc.audit.Dispatch(audit.Event{
				BarbershopID: ap.BarbershopID,
				UserID:       &userID,
				Action:       audit.ActionConsensusPurge,
				Entity:       "appointment",
				EntityID:     &ap.ID,
			})
		}
	}

	return nil
}
