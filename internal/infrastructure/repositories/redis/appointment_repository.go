package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisAppointmentRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisAppointmentRepository(client *redis.Client) ports.AppointmentRepository {
	return &RedisAppointmentRepository{
		client: client,
		prefix: "telecare:appointment:",
	}
}

func (r *RedisAppointmentRepository) appointmentKey(id domain.AppointmentID) string {
	return r.prefix + string(id)
}

func (r *RedisAppointmentRepository) roomKey(roomID domain.RoomID) string {
	return r.prefix + "room:" + string(roomID)
}

func (r *RedisAppointmentRepository) userIndexKey(userID domain.UserID) string {
	return r.prefix + "user:" + string(userID)
}

func (r *RedisAppointmentRepository) doctorIndexKey(doctorID domain.DoctorID) string {
	return r.prefix + "doctor:" + string(doctorID)
}

func (r *RedisAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	data, err := json.Marshal(appointment)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.appointmentKey(appointment.ID), data, 0)
	pipe.Set(ctx, r.roomKey(appointment.RoomID), string(appointment.ID), 0)
	pipe.SAdd(ctx, r.userIndexKey(appointment.UserID), string(appointment.ID))
	pipe.SAdd(ctx, r.doctorIndexKey(appointment.DoctorID), string(appointment.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store appointment in Redis: %w", err)
	}
	return nil
}

func (r *RedisAppointmentRepository) GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	data, err := r.client.Get(ctx, r.appointmentKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment from Redis: %w", err)
	}

	var appointment domain.Appointment
	if err := json.Unmarshal([]byte(data), &appointment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal appointment: %w", err)
	}
	return &appointment, nil
}

func (r *RedisAppointmentRepository) GetByRoomID(ctx context.Context, roomID domain.RoomID) (*domain.Appointment, error) {
	id, err := r.client.Get(ctx, r.roomKey(roomID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve appointment room: %w", err)
	}
	return r.GetByID(ctx, domain.AppointmentID(id))
}

func (r *RedisAppointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	if _, err := r.GetByID(ctx, appointment.ID); err != nil {
		return err
	}

	data, err := json.Marshal(appointment)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment: %w", err)
	}

	if err := r.client.Set(ctx, r.appointmentKey(appointment.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update appointment in Redis: %w", err)
	}
	return nil
}

func (r *RedisAppointmentRepository) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error) {
	return r.listByIndex(ctx, r.userIndexKey(userID))
}

func (r *RedisAppointmentRepository) ListByDoctor(ctx context.Context, doctorID domain.DoctorID) ([]*domain.Appointment, error) {
	return r.listByIndex(ctx, r.doctorIndexKey(doctorID))
}

func (r *RedisAppointmentRepository) listByIndex(ctx context.Context, indexKey string) ([]*domain.Appointment, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment ids: %w", err)
	}

	appointments := make([]*domain.Appointment, 0, len(ids))
	for _, id := range ids {
		appointment, err := r.GetByID(ctx, domain.AppointmentID(id))
		if err == domain.ErrAppointmentNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}

	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].Date.Before(appointments[j].Date)
	})
	return appointments, nil
}
