package domain

type RoomID string
type UserID string
type DoctorID string
type AppointmentID string
