package domain

import "time"

type User struct {
	ID                UserID    `json:"id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Gender            string    `json:"gender,omitempty"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	PreferredLanguage string    `json:"preferred_language,omitempty"`
	Birthdate         time.Time `json:"birthdate,omitempty"`
	ProfileImageURL   string    `json:"profile_image_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
