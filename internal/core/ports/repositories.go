package ports

import (
	"context"

	"telecare/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *domain.Doctor) error
	GetByID(ctx context.Context, id domain.DoctorID) (*domain.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Doctor, error)
	List(ctx context.Context) ([]*domain.Doctor, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) error
	GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error)
	GetByRoomID(ctx context.Context, roomID domain.RoomID) (*domain.Appointment, error)
	Update(ctx context.Context, appointment *domain.Appointment) error
	ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID domain.DoctorID) ([]*domain.Appointment, error)
}
