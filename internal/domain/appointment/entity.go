package appointment

import (
	"time"

	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Cada ação valida a aresta na tabela de transições antes de mutar.
// A escrita no banco ainda é condicionada ao status esperado (CAS);
// aqui só montamos a mutação.

func Approve(ap *models.Appointment) error {
	if !CanTransition(Status(ap.Status), StatusConfirmed) {
		return httperr.ErrInvalidState("invalid_state")
	}
	ap.Status = string(StatusConfirmed)
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if !CanTransition(Status(ap.Status), StatusCompleted) {
		return httperr.ErrInvalidState("invalid_state")
	}
	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment) error {
	if !CanTransition(Status(ap.Status), StatusNoShow) {
		return httperr.ErrInvalidState("invalid_state")
	}
	ap.Status = string(StatusNoShow)
	return nil
}

func Cancel(ap *models.Appointment, by Role, reason string, now time.Time) error {
	if reason == "" {
		return httperr.ErrValidation("cancellation_reason_required")
	}
	if !CanTransition(Status(ap.Status), StatusCancelled) {
		return httperr.ErrInvalidState("invalid_state")
	}
	ap.Status = string(StatusCancelled)
	ap.CancellationReason = reason
	ap.CancelledBy = string(by)
	ap.CancelledAt = &now
	return nil
}
