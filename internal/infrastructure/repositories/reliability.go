package repositories

import (
	"context"
	"errors"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"
	"telecare/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// ReliableAppointmentRepository guards a backing appointment repository with
// a circuit breaker. Domain outcomes (not found, conflicts) are not
// infrastructure failures and never trip the breaker; only transport-level
// errors count.
type ReliableAppointmentRepository struct {
	inner   ports.AppointmentRepository
	breaker *circuitbreaker.CircuitBreaker
}

func NewReliableAppointmentRepository(inner ports.AppointmentRepository, logger *zap.SugaredLogger) *ReliableAppointmentRepository {
	cb := circuitbreaker.New(circuitbreaker.DefaultConfig())
	cb.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("appointment repository circuit breaker state change",
			"from", from.String(), "to", to.String())
	})
	return &ReliableAppointmentRepository{inner: inner, breaker: cb}
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrAppointmentNotFound) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrDoctorNotFound)
}

func (r *ReliableAppointmentRepository) do(ctx context.Context, op func() error) error {
	var opErr error
	err := r.breaker.Execute(ctx, func() error {
		opErr = op()
		if opErr != nil && isDomainError(opErr) {
			return nil
		}
		return opErr
	})
	if opErr != nil {
		return opErr
	}
	return err
}

func (r *ReliableAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	return r.do(ctx, func() error { return r.inner.Create(ctx, appointment) })
}

func (r *ReliableAppointmentRepository) GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	var result *domain.Appointment
	err := r.do(ctx, func() error {
		var err error
		result, err = r.inner.GetByID(ctx, id)
		return err
	})
	return result, err
}

func (r *ReliableAppointmentRepository) GetByRoomID(ctx context.Context, roomID domain.RoomID) (*domain.Appointment, error) {
	var result *domain.Appointment
	err := r.do(ctx, func() error {
		var err error
		result, err = r.inner.GetByRoomID(ctx, roomID)
		return err
	})
	return result, err
}

func (r *ReliableAppointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	return r.do(ctx, func() error { return r.inner.Update(ctx, appointment) })
}

func (r *ReliableAppointmentRepository) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	err := r.do(ctx, func() error {
		var err error
		result, err = r.inner.ListByUser(ctx, userID)
		return err
	})
	return result, err
}

func (r *ReliableAppointmentRepository) ListByDoctor(ctx context.Context, doctorID domain.DoctorID) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	err := r.do(ctx, func() error {
		var err error
		result, err = r.inner.ListByDoctor(ctx, doctorID)
		return err
	})
	return result, err
}
