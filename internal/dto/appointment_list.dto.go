package dto

import "time"

type AppointmentListDTO struct {
	ID           uint      `json:"id"`
	Reference    string    `json:"reference"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	DurationMin  int       `json:"duration_min"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customer_name"`
	BarberName   string    `json:"barber_name"`
	ServiceName  string    `json:"service_name"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}
