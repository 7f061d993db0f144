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

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteAppointment(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: auditDispatcher,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	userID uint,
	role domain.Role,
	appointmentID uint,
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

	if err := domain.Complete(ap, now); err != nil {
		return nil, err
	}

	actor, err := resolveActor(ctx, uc.repo, userID, role)
	if err != nil {
		return nil, err
	}
	if !domain.Allowed(actor, ap, domain.ActionComplete) {
		return nil, httperr.ErrPermission("not_allowed")
	}

	updated, err := uc.repo.TransitionStatus(ctx, ap.ID, cur, domain.StatusCompleted, map[string]any{
		"completed_at": ap.CompletedAt,
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
		Action:       audit.ActionAppointmentCompleted,
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	return updated, nil
}
