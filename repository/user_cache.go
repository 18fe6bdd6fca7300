package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"studyplan-backend/models"
)

const userCachePrefix = "studyplan:user:"

// CachedUserRepository reads users through Redis. A nil client turns it into
// a plain pass-through, so the cache stays optional.
type CachedUserRepository struct {
	next   UserRepository
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedUserRepository(next UserRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.next.Create(ctx, user)
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.redis == nil {
		return r.next.GetByID(ctx, id)
	}

	key := userCachePrefix + id
	raw, err := r.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedUser
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached.toModel(), nil
		}
		r.logger.Warn().Str("user_id", id).Msg("dropping undecodable cached user")
	case !errors.Is(err, redis.Nil):
		r.logger.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
	}

	user, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, user)
	return user, nil
}

func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *CachedUserRepository) UpdateFCMToken(ctx context.Context, id, token string) error {
	if err := r.next.UpdateFCMToken(ctx, id, token); err != nil {
		return err
	}
	if r.redis != nil {
		if err := r.redis.Del(ctx, userCachePrefix+id).Err(); err != nil {
			r.logger.Warn().Err(err).Str("user_id", id).Msg("user cache invalidation failed")
		}
	}
	return nil
}

func (r *CachedUserRepository) store(ctx context.Context, user *models.User) {
	raw, err := json.Marshal(newCachedUser(user))
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, userCachePrefix+user.ID, raw, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("user_id", user.ID).Msg("user cache write failed")
	}
}

// cachedUser mirrors models.User without the password hash.
type cachedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	College   string    `json:"college"`
	FCMToken  string    `json:"fcmToken,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCachedUser(u *models.User) cachedUser {
	return cachedUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		College:   u.College,
		FCMToken:  u.FCMToken,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c cachedUser) toModel() *models.User {
	return &models.User{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		College:   c.College,
		FCMToken:  c.FCMToken,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
