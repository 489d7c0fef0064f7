package domain

import "time"

type Doctor struct {
	ID                 DoctorID  `json:"id"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Gender             string    `json:"gender,omitempty"`
	Specializations    []string  `json:"specializations,omitempty"`
	PhoneNumber        string    `json:"phone_number,omitempty"`
	PreferredLanguages []string  `json:"preferred_languages,omitempty"`
	Birthdate          time.Time `json:"birthdate,omitempty"`
	ProfileImageURL    string    `json:"profile_image_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
