package services

import (
	"context"
	"errors"
	"time"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"
	"telecare/pkg/cache"
	apperrors "telecare/pkg/errors"
	"telecare/pkg/utils"
	"telecare/pkg/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const doctorListCacheKey = "doctors:all"

// DoctorServiceImpl manages the doctor directory. The full list is the hot
// read path (patients browse it on every booking), so it sits behind a short
// TTL cache that registration invalidates.
type DoctorServiceImpl struct {
	doctors ports.DoctorRepository
	cache   *cache.Cache
	logger  *zap.SugaredLogger
}

func NewDoctorService(doctors ports.DoctorRepository, logger *zap.SugaredLogger) *DoctorServiceImpl {
	return &DoctorServiceImpl{
		doctors: doctors,
		cache:   cache.New(30 * time.Second),
		logger:  logger,
	}
}

func (s *DoctorServiceImpl) Register(ctx context.Context, doctor *domain.Doctor, password string) (*domain.Doctor, error) {
	if err := validation.ValidateFullName(doctor.FullName); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateEmail(doctor.Email); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to hash password", 500)
	}

	now := time.Now()
	doctor.ID = domain.DoctorID(utils.GenerateDoctorID())
	doctor.FullName = utils.SanitizeString(doctor.FullName)
	doctor.Email = utils.NormalizeEmail(doctor.Email)
	doctor.PasswordHash = string(hash)
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	if err := s.doctors.Create(ctx, doctor); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, apperrors.NewConflictError("email already registered")
		}
		return nil, err
	}

	s.cache.Delete(doctorListCacheKey)
	s.logger.Infow("doctor registered", "doctor_id", doctor.ID)
	return doctor, nil
}

func (s *DoctorServiceImpl) GetByID(ctx context.Context, id domain.DoctorID) (*domain.Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return nil, apperrors.NewNotFoundError("doctor")
		}
		return nil, err
	}
	return doctor, nil
}

func (s *DoctorServiceImpl) List(ctx context.Context) ([]*domain.Doctor, error) {
	result, err := s.cache.GetOrSet(ctx, doctorListCacheKey, func(ctx context.Context) (interface{}, error) {
		return s.doctors.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Doctor), nil
}

// Filter returns the doctors matching the given criteria. It reads through
// the same cached list as List, so browsing with filters stays off the
// repository on the hot path.
func (s *DoctorServiceImpl) Filter(ctx context.Context, filter ports.DoctorFilter) ([]*domain.Doctor, error) {
	if len(filter.Specializations) == 0 && len(filter.Languages) == 0 && filter.Gender == "" {
		return nil, apperrors.NewInvalidInputError("at least one filter must be provided")
	}

	doctors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if len(filter.Specializations) > 0 && !containsAny(d.Specializations, filter.Specializations) {
			continue
		}
		if len(filter.Languages) > 0 && !containsAny(d.PreferredLanguages, filter.Languages) {
			continue
		}
		if filter.Gender != "" && d.Gender != filter.Gender {
			continue
		}
		matched = append(matched, d)
	}
	return matched, nil
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Close releases the cache cleanup goroutine.
func (s *DoctorServiceImpl) Close() {
	s.cache.Stop()
}
