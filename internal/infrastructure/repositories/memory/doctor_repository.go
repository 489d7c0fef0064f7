package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"telecare/internal/core/domain"
)

// DoctorRepository is an in-memory doctor store for development and tests.
type DoctorRepository struct {
	mu      sync.RWMutex
	doctors map[domain.DoctorID]*domain.Doctor
	byEmail map[string]domain.DoctorID
}

func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{
		doctors: make(map[domain.DoctorID]*domain.Doctor),
		byEmail: make(map[string]domain.DoctorID),
	}
}

func (r *DoctorRepository) Create(ctx context.Context, doctor *domain.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(doctor.Email)
	if _, exists := r.byEmail[email]; exists {
		return domain.ErrEmailTaken
	}

	stored := *doctor
	r.doctors[doctor.ID] = &stored
	r.byEmail[email] = doctor.ID
	return nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id domain.DoctorID) (*domain.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doctor, ok := r.doctors[id]
	if !ok {
		return nil, domain.ErrDoctorNotFound
	}
	copied := *doctor
	return &copied, nil
}

func (r *DoctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrDoctorNotFound
	}
	copied := *r.doctors[id]
	return &copied, nil
}

func (r *DoctorRepository) List(ctx context.Context) ([]*domain.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Doctor, 0, len(r.doctors))
	for _, doctor := range r.doctors {
		copied := *doctor
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}
