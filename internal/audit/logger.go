package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/NavalhaClub/barber-agenda/internal/models"
)

// Ações registradas pelo core de agendamentos
const (
	ActionAppointmentCreated   = "appointment_created"
	ActionAppointmentApproved  = "appointment_approved"
	ActionAppointmentCancelled = "appointment_cancelled"
	ActionAppointmentCompleted = "appointment_completed"
	ActionAppointmentNoShow    = "appointment_no_show"
	ActionAppointmentHidden    = "appointment_hidden"
	ActionHideReverted         = "appointment_hide_reverted"

	// Purge por consenso e purge forçado são auditados com ações
	// distintas de propósito
	ActionConsensusPurge = "appointment_purged_consensus"
	ActionForcePurge     = "appointment_purged_forced"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(
	barbershopID uint,
	userID *uint,
	action string,
	entity string,
	entityID *uint,
	metadata any,
) error {

	// Sem banco configurado a auditoria vira no-op
	if l.db == nil {
		return nil
	}

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		BarbershopID: barbershopID,
		UserID:       userID,
		Action:       action,
		Entity:       entity,
		EntityID:     entityID,
		Metadata:     metaJSON,
	}

	return l.db.Create(&entry).Error
}
