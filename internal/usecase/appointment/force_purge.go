package appointment

import (
	"context"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
)

type ForcePurge struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewForcePurge(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *ForcePurge {
	return &ForcePurge{
		repo:  repo,
		audit: auditDispatcher,
	}
}

// Execute apaga sem consenso. Limpeza administrativa de registros
// órfãos ou errados. Auditado com ação distinta do purge por consenso.
func (uc *ForcePurge) Execute(
	ctx context.Context,
	userID uint,
	role domain.Role,
	appointmentID uint,
) error {

	if role != domain.RoleAdmin {
		return httperr.ErrPermission("not_allowed")
	}

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return httperr.ErrNotFound("appointment_not_found")
	}

	if err := uc.repo.HardDelete(ctx, ap.ID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: ap.BarbershopID,
		UserID:       &userID,
		Action:       audit.ActionForcePurge,
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return nil
}
