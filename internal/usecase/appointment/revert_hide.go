package appointment

import (
	"context"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
)

type RevertHide struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRevertHide(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *RevertHide {
	return &RevertHide{
		repo:  repo,
		audit: auditDispatcher,
	}
}

// Execute é o único caminho que desfaz uma flag de ocultação. Fora do
// fluxo normal: só admin, sempre auditado.
func (uc *RevertHide) Execute(
	ctx context.Context,
	userID uint,
	role domain.Role,
	appointmentID uint,
	target domain.Role,
) error {

	if role != domain.RoleAdmin {
		return httperr.ErrPermission("not_allowed")
	}
	if !domain.IsValidRole(target) {
		return httperr.ErrValidation("invalid_role")
	}

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return httperr.ErrNotFound("appointment_not_found")
	}

	if err := uc.repo.ClearHidden(ctx, ap.ID, target); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: ap.BarbershopID,
		UserID:       &userID,
		Action:       audit.ActionHideReverted,
		Entity:       "appointment",
		EntityID:     &ap.ID,
		Metadata:     map[string]string{"role": string(target)},
	})

	return nil
}
