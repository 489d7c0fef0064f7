package domain

import "time"

type AppointmentStatus string

const (
	StatusPending  AppointmentStatus = "Pending"
	StatusApproved AppointmentStatus = "Approved"
	StatusRejected AppointmentStatus = "Rejected"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

// Appointment is a booked call between a patient and a doctor. RoomID is
// minted once at creation time and handed out-of-band to both parties; the
// signaling relay consumes it as an opaque key.
type Appointment struct {
	ID       AppointmentID     `json:"id"`
	UserID   UserID            `json:"user_id"`
	DoctorID DoctorID          `json:"doctor_id"`
	Date     time.Time         `json:"date"`
	Duration int               `json:"duration"` // minutes
	Status   AppointmentStatus `json:"status"`
	Payment  PaymentStatus     `json:"payment"`
	RoomID   RoomID            `json:"room_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
