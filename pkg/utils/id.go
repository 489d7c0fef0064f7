package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GenerateRoomID generates a unique room ID for a call session.
// Format: room_<16 hex chars>.
func GenerateRoomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("room_%s", hex.EncodeToString(b))
}

// GenerateUserID generates a unique user ID
func GenerateUserID() string {
	return uuid.New().String()
}

// GenerateDoctorID generates a unique doctor ID
func GenerateDoctorID() string {
	return uuid.New().String()
}

// GenerateAppointmentID generates a unique appointment ID
func GenerateAppointmentID() string {
	return uuid.New().String()
}

// GenerateInstanceID generates an ID identifying one server process
func GenerateInstanceID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("telecare_%s", hex.EncodeToString(b))
}
