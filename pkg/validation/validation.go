package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// RoomIDRegex validates room ID format
	RoomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateEmail validates email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword validates password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}

// ValidateFullName validates a person's display name
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("full name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("full name is too long (max 100 characters)")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("full name contains invalid characters")
	}
	return nil
}

// ValidateRoomID validates room ID format
func ValidateRoomID(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room ID is required")
	}
	if len(roomID) > 100 {
		return fmt.Errorf("room ID is too long (max 100 characters)")
	}
	if !RoomIDRegex.MatchString(roomID) {
		return fmt.Errorf("invalid room ID format")
	}
	return nil
}

// ValidateAppointmentDate validates a proposed appointment date
func ValidateAppointmentDate(date time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if date.Before(time.Now()) {
		return fmt.Errorf("date must be in the future")
	}
	return nil
}

// ValidateDuration validates appointment duration in minutes
func ValidateDuration(minutes int) error {
	if minutes < 5 {
		return fmt.Errorf("duration must be at least 5 minutes")
	}
	if minutes > 240 {
		return fmt.Errorf("duration is too long (max 240 minutes)")
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
