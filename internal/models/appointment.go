package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Código público usado no link de confirmação enviado ao cliente
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	BarbershopID uint       `json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barbershop"`

	BarberID uint   `json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber"`

	CustomerID uint     `json:"customer_id"`
	Customer   Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"customer"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	StartTime time.Time `json:"start_time"`
	// Duração congelada no momento da criação; mudar o serviço depois
	// não altera agendamentos existentes
	DurationMin int       `json:"duration_min"`
	EndTime     time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'pending';index" json:"status"`

	// Ocultação por papel: cada parte esconde o registro da própria
	// listagem sem afetar as outras. Só viram false de novo via revert
	// administrativo auditado.
	HiddenByCustomer    bool       `gorm:"default:false" json:"hidden_by_customer"`
	HiddenByBarber      bool       `gorm:"default:false" json:"hidden_by_barber"`
	HiddenByAdmin       bool       `gorm:"default:false" json:"hidden_by_admin"`
	MarkedForDeletionAt *time.Time `json:"marked_for_deletion_at"`

	CancellationReason string     `gorm:"size:255" json:"cancellation_reason"`
	CancelledBy        string     `gorm:"size:20" json:"cancelled_by"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CompletedAt        *time.Time `json:"completed_at"`

	Notes string `gorm:"size:255" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
