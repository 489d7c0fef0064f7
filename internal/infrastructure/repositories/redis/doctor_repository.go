package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisDoctorRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisDoctorRepository(client *redis.Client) ports.DoctorRepository {
	return &RedisDoctorRepository{
		client: client,
		prefix: "telecare:doctor:",
	}
}

func (r *RedisDoctorRepository) doctorKey(id domain.DoctorID) string {
	return r.prefix + string(id)
}

func (r *RedisDoctorRepository) emailKey(email string) string {
	return r.prefix + "email:" + strings.ToLower(email)
}

func (r *RedisDoctorRepository) allKey() string {
	return r.prefix + "all"
}

func (r *RedisDoctorRepository) Create(ctx context.Context, doctor *domain.Doctor) error {
	claimed, err := r.client.SetNX(ctx, r.emailKey(doctor.Email), string(doctor.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim doctor email: %w", err)
	}
	if !claimed {
		return domain.ErrEmailTaken
	}

	data, err := json.Marshal(doctor)
	if err != nil {
		return fmt.Errorf("failed to marshal doctor: %w", err)
	}

	if err := r.client.Set(ctx, r.doctorKey(doctor.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set doctor in Redis: %w", err)
	}
	if err := r.client.SAdd(ctx, r.allKey(), string(doctor.ID)).Err(); err != nil {
		return fmt.Errorf("failed to add doctor to index: %w", err)
	}
	return nil
}

func (r *RedisDoctorRepository) GetByID(ctx context.Context, id domain.DoctorID) (*domain.Doctor, error) {
	data, err := r.client.Get(ctx, r.doctorKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor from Redis: %w", err)
	}

	var doctor domain.Doctor
	if err := json.Unmarshal([]byte(data), &doctor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal doctor: %w", err)
	}
	return &doctor, nil
}

func (r *RedisDoctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	id, err := r.client.Get(ctx, r.emailKey(email)).Result()
	if err == redis.Nil {
		return nil, domain.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor email: %w", err)
	}
	return r.GetByID(ctx, domain.DoctorID(id))
}

func (r *RedisDoctorRepository) List(ctx context.Context) ([]*domain.Doctor, error) {
	ids, err := r.client.SMembers(ctx, r.allKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor ids: %w", err)
	}

	doctors := make([]*domain.Doctor, 0, len(ids))
	for _, id := range ids {
		doctor, err := r.GetByID(ctx, domain.DoctorID(id))
		if err == domain.ErrDoctorNotFound {
			// Index entry without a record; skip rather than fail the list
			continue
		}
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}
