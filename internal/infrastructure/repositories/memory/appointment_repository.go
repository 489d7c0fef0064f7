package memory

import (
	"context"
	"sort"
	"sync"

	"telecare/internal/core/domain"
)

// AppointmentRepository is an in-memory appointment store for development
// and tests.
type AppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[domain.AppointmentID]*domain.Appointment
	byRoom       map[domain.RoomID]domain.AppointmentID
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		appointments: make(map[domain.AppointmentID]*domain.Appointment),
		byRoom:       make(map[domain.RoomID]domain.AppointmentID),
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *appointment
	r.appointments[appointment.ID] = &stored
	r.byRoom[appointment.RoomID] = appointment.ID
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	copied := *appointment
	return &copied, nil
}

func (r *AppointmentRepository) GetByRoomID(ctx context.Context, roomID domain.RoomID) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byRoom[roomID]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	copied := *r.appointments[id]
	return &copied, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[appointment.ID]; !ok {
		return domain.ErrAppointmentNotFound
	}

	stored := *appointment
	r.appointments[appointment.ID] = &stored
	return nil
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, appointment := range r.appointments {
		if appointment.UserID == userID {
			copied := *appointment
			result = append(result, &copied)
		}
	}
	sortByDate(result)
	return result, nil
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID domain.DoctorID) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID {
			copied := *appointment
			result = append(result, &copied)
		}
	}
	sortByDate(result)
	return result, nil
}

func sortByDate(appointments []*domain.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].Date.Before(appointments[j].Date)
	})
}
