package domain

import "errors"

var (
	ErrRoomFull            = errors.New("room is full")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomClosed          = errors.New("room closed")
	ErrAlreadyJoined       = errors.New("connection already joined a room")
	ErrNotJoined           = errors.New("connection has not joined a room")
	ErrUserNotFound        = errors.New("user not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
