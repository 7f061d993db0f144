package appointment

import (
	"context"
	"errors"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
	"github.com/NavalhaClub/barber-agenda/internal/timezone"
)

type CancelAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCancelAppointment(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		audit: auditDispatcher,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	userID uint,
	role domain.Role,
	appointmentID uint,
	reason string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, httperr.ErrNotFound("appointment_not_found")
	}

	shop, err := uc.repo.GetBarbershopByID(ctx, ap.BarbershopID)
	if err != nil {
		return nil, httperr.ErrNotFound("barbershop_not_found")
	}

	cur := domain.Status(ap.Status)
	now := timezone.NowIn(shop.Timezone)

	// Valida aresta + motivo e monta os metadados de cancelamento
	if err := domain.Cancel(ap, role, reason, now); err != nil {
		return nil, err
	}

	actor, err := resolveActor(ctx, uc.repo, userID, role)
	if err != nil {
		return nil, err
	}
	if !domain.Allowed(actor, ap, domain.ActionCancel) {
		return nil, httperr.ErrPermission("not_allowed")
	}

	updated, err := uc.repo.TransitionStatus(ctx, ap.ID, cur, domain.StatusCancelled, map[string]any{
		"cancellation_reason": ap.CancellationReason,
		"cancelled_by":        ap.CancelledBy,
		"cancelled_at":        ap.CancelledAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStatusChanged) {
			return nil, httperr.ErrInvalidState("invalid_state")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: ap.BarbershopID,
		UserID:       &userID,
		Action:       audit.ActionAppointmentCancelled,
		Entity:       "appointment",
		EntityID:     &ap.ID,
		Metadata:     map[string]string{"reason": reason, "by": string(role)},
	})

	return updated, nil
}
