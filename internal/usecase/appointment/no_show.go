package appointment

import (
	"context"
	"errors"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
)

type MarkNoShow struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewMarkNoShow(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *MarkNoShow {
	return &MarkNoShow{
		repo:  repo,
		audit: auditDispatcher,
	}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	userID uint,
	role domain.Role,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, httperr.ErrNotFound("appointment_not_found")
	}

	cur := domain.Status(ap.Status)
	if err := domain.MarkNoShow(ap); err != nil {
		return nil, err
	}

	actor, err := resolveActor(ctx, uc.repo, userID, role)
	if err != nil {
		return nil, err
	}
	if !domain.Allowed(actor, ap, domain.ActionNoShow) {
		return nil, httperr.ErrPermission("not_allowed")
	}

	updated, err := uc.repo.TransitionStatus(ctx, ap.ID, cur, domain.StatusNoShow, nil)
	if err != nil {
		if errors.Is(err, domain.ErrStatusChanged) {
			return nil, httperr.ErrInvalidState("invalid_state")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: ap.BarbershopID,
		UserID:       &userID,
		Action:       audit.ActionAppointmentNoShow,
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return updated, nil
}
