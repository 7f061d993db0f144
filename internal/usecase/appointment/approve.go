package appointment

import (
	"context"
	"errors"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
)

type ApproveAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewApproveAppointment(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *ApproveAppointment {
	return &ApproveAppointment{
		repo:  repo,
		audit: auditDispatcher,
	}
}

func (uc *ApproveAppointment) Execute(
	ctx context.Context,
	userID uint,
	role domain.Role,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, httperr.ErrNotFound("appointment_not_found")
	}

	// Ordem do contrato: aresta primeiro, permissão depois, mutação por último
	cur := domain.Status(ap.Status)
	if err := domain.Approve(ap); err != nil {
		return nil, err
	}

	actor, err := resolveActor(ctx, uc.repo, userID, role)
	if err != nil {
		return nil, err
	}
	if !domain.Allowed(actor, ap, domain.ActionApprove) {
		return nil, httperr.ErrPermission("not_allowed")
	}

	updated, err := uc.repo.TransitionStatus(ctx, ap.ID, cur, domain.StatusConfirmed, nil)
	if err != nil {
		if errors.Is(err, domain.ErrStatusChanged) {
			return nil, httperr.ErrInvalidState("invalid_state")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: ap.BarbershopID,
		UserID:       &userID,
		Action:       audit.ActionAppointmentApproved,
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return updated, nil
}
