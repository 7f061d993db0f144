package appointment

import (
	"time"

	"github.com/NavalhaClub/barber-agenda/internal/models"
)

// ===============================
// Ocultação por papel (soft delete em consenso)
// ===============================

// HiddenFor diz se o registro está oculto para o papel informado.
// Admin não conta visão de barbeiro/cliente e vice-versa.
func HiddenFor(ap *models.Appointment, role Role) bool {
	switch role {
	case RoleCustomer:
		return ap.HiddenByCustomer
	case RoleBarber:
		return ap.HiddenByBarber
	case RoleAdmin:
		return ap.HiddenByAdmin
	}
	return false
}

// MarkHidden seta a flag do papel. Idempotente: repetir não muda nada.
// Retorna true quando a flag realmente virou.
func MarkHidden(ap *models.Appointment, role Role, now time.Time) bool {
	if HiddenFor(ap, role) {
		return false
	}

	switch role {
	case RoleCustomer:
		ap.HiddenByCustomer = true
	case RoleBarber:
		ap.HiddenByBarber = true
	case RoleAdmin:
		ap.HiddenByAdmin = true
	default:
		return false
	}

	if ap.MarkedForDeletionAt == nil {
		t := now
		ap.MarkedForDeletionAt = &t
	}
	return true
}

// ReadyForPurge é o predicado de consenso: exclusão física só quando
// as três partes esconderam o registro.
func ReadyForPurge(ap *models.Appointment) bool {
	return ap.HiddenByCustomer && ap.HiddenByBarber && ap.HiddenByAdmin
}
