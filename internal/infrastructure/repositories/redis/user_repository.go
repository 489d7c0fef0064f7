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

type RedisUserRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisUserRepository(client *redis.Client) ports.UserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: "telecare:user:",
	}
}

func (r *RedisUserRepository) userKey(id domain.UserID) string {
	return r.prefix + string(id)
}

func (r *RedisUserRepository) emailKey(email string) string {
	return r.prefix + "email:" + strings.ToLower(email)
}

func (r *RedisUserRepository) Create(ctx context.Context, user *domain.User) error {
	// Claim the email first; SETNX makes uniqueness race-free
	claimed, err := r.client.SetNX(ctx, r.emailKey(user.Email), string(user.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim user email: %w", err)
	}
	if !claimed {
		return domain.ErrEmailTaken
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.client.Set(ctx, r.userKey(user.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set user in Redis: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	data, err := r.client.Get(ctx, r.userKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Redis: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, err := r.client.Get(ctx, r.emailKey(email)).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user email: %w", err)
	}
	return r.GetByID(ctx, domain.UserID(id))
}

func (r *RedisUserRepository) Update(ctx context.Context, user *domain.User) error {
	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	if !strings.EqualFold(existing.Email, user.Email) {
		claimed, err := r.client.SetNX(ctx, r.emailKey(user.Email), string(user.ID), 0).Result()
		if err != nil {
			return fmt.Errorf("failed to claim user email: %w", err)
		}
		if !claimed {
			return domain.ErrEmailTaken
		}
		if err := r.client.Del(ctx, r.emailKey(existing.Email)).Err(); err != nil {
			return fmt.Errorf("failed to release old user email: %w", err)
		}
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.client.Set(ctx, r.userKey(user.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update user in Redis: %w", err)
	}
	return nil
}
