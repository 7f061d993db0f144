package models

import "time"

// Perfil profissional do barbeiro. A identidade do barbeiro numa mutação
// é sempre resolvida a partir do usuário autenticado dono deste perfil,
// nunca de um barber_id vindo do cliente.
type Barber struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `json:"barbershop_id"`

	UserID uint `gorm:"uniqueIndex" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	DisplayName string `gorm:"size:100" json:"display_name"`
	Active      bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
