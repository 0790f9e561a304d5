package models

import "time"

// BookingAudit is one row of the booking trail: every confirmation
// attempt and every flow blocked by inconsistent platform data.
type BookingAudit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SessionID string `gorm:"size:36;index" json:"session_id"`
	UserID    string `gorm:"size:64" json:"user_id"`
	Action    string `gorm:"size:50;not null;index" json:"action"`

	BarberID      string `gorm:"size:64" json:"barber_id"`
	ServiceID     string `gorm:"size:64" json:"service_id"`
	AppointmentID string `gorm:"size:64" json:"appointment_id"`
	Metadata      string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
