package ports

import (
	"context"
	"time"

	"telecare/internal/core/domain"
)

type CreateAppointmentInput struct {
	UserID   domain.UserID
	DoctorID domain.DoctorID
	Date     time.Time
	Duration int
}

type AppointmentService interface {
	Create(ctx context.Context, input CreateAppointmentInput) (*domain.Appointment, error)
	GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error)
	SetStatus(ctx context.Context, id domain.AppointmentID, status domain.AppointmentStatus) (*domain.Appointment, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID domain.DoctorID) ([]*domain.Appointment, error)
}

// DoctorFilter narrows the doctor directory. List criteria match when the
// doctor offers any of the requested values; gender is an exact match. Empty
// criteria are ignored, but at least one must be set.
type DoctorFilter struct {
	Specializations []string
	Languages       []string
	Gender          string
}

type DoctorService interface {
	Register(ctx context.Context, doctor *domain.Doctor, password string) (*domain.Doctor, error)
	GetByID(ctx context.Context, id domain.DoctorID) (*domain.Doctor, error)
	List(ctx context.Context) ([]*domain.Doctor, error)
	Filter(ctx context.Context, filter DoctorFilter) ([]*domain.Doctor, error)
}
