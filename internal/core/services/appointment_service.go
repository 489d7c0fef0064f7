package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"
	"telecare/pkg/distributed"
	apperrors "telecare/pkg/errors"
	"telecare/pkg/utils"
	"telecare/pkg/validation"

	"go.uber.org/zap"
)

// AppointmentServiceImpl books calls between patients and doctors. Creating
// an appointment mints the roomId that both parties later present to the
// signaling relay; the relay itself never calls back into this service.
type AppointmentServiceImpl struct {
	appointments ports.AppointmentRepository
	users        ports.UserRepository
	doctors      ports.DoctorRepository
	locks        *distributed.Manager
	logger       *zap.SugaredLogger
}

func NewAppointmentService(
	appointments ports.AppointmentRepository,
	users ports.UserRepository,
	doctors ports.DoctorRepository,
	locks *distributed.Manager,
	logger *zap.SugaredLogger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		appointments: appointments,
		users:        users,
		doctors:      doctors,
		locks:        locks,
		logger:       logger,
	}
}

func (s *AppointmentServiceImpl) Create(ctx context.Context, input ports.CreateAppointmentInput) (*domain.Appointment, error) {
	if err := validation.ValidateAppointmentDate(input.Date); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateDuration(input.Duration); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, err
	}
	if _, err := s.doctors.GetByID(ctx, input.DoctorID); err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return nil, apperrors.NewNotFoundError("doctor")
		}
		return nil, err
	}

	// The overlap check and the insert must not race a concurrent booking
	// for the same doctor. The lock is per doctor, held across both, and
	// distributed so multiple API instances behind one Redis agree on it.
	if s.locks != nil {
		lock := s.locks.AcquireLock(fmt.Sprintf("doctor:%s", input.DoctorID), 10*time.Second)
		if err := lock.Lock(ctx, 5*time.Second); err != nil {
			return nil, apperrors.NewUnavailableError("could not reserve booking slot, try again")
		}
		defer lock.Unlock(ctx)
	}

	if err := s.checkSlotFree(ctx, input); err != nil {
		return nil, err
	}

	now := time.Now()
	appointment := &domain.Appointment{
		ID:        domain.AppointmentID(utils.GenerateAppointmentID()),
		UserID:    input.UserID,
		DoctorID:  input.DoctorID,
		Date:      input.Date,
		Duration:  input.Duration,
		Status:    domain.StatusPending,
		Payment:   domain.PaymentPending,
		RoomID:    domain.RoomID(utils.GenerateRoomID()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.logger.Infow("appointment created",
		"appointment_id", appointment.ID,
		"user_id", appointment.UserID,
		"doctor_id", appointment.DoctorID,
		"room_id", appointment.RoomID,
		"date", appointment.Date,
	)
	return appointment, nil
}

func (s *AppointmentServiceImpl) checkSlotFree(ctx context.Context, input ports.CreateAppointmentInput) error {
	existing, err := s.appointments.ListByDoctor(ctx, input.DoctorID)
	if err != nil {
		return err
	}

	start := input.Date
	end := input.Date.Add(time.Duration(input.Duration) * time.Minute)

	for _, a := range existing {
		if a.Status == domain.StatusRejected {
			continue
		}
		aStart := a.Date
		aEnd := a.Date.Add(time.Duration(a.Duration) * time.Minute)
		if start.Before(aEnd) && aStart.Before(end) {
			return apperrors.NewConflictError("doctor is not available at the requested time")
		}
	}
	return nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, apperrors.NewNotFoundError("appointment")
		}
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentServiceImpl) SetStatus(ctx context.Context, id domain.AppointmentID, status domain.AppointmentStatus) (*domain.Appointment, error) {
	switch status {
	case domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
	default:
		return nil, apperrors.NewInvalidInputError("unknown appointment status")
	}

	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, apperrors.NewNotFoundError("appointment")
		}
		return nil, err
	}

	appointment.Status = status
	appointment.UpdatedAt = time.Now()
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}

	s.logger.Infow("appointment status updated", "appointment_id", id, "status", status)
	return appointment, nil
}

func (s *AppointmentServiceImpl) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

func (s *AppointmentServiceImpl) ListByDoctor(ctx context.Context, doctorID domain.DoctorID) ([]*domain.Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID)
}
