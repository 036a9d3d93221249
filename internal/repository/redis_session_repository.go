package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ultimatum-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ SessionRepository = (*RedisSessionRepository)(nil)

const (
	sessionKeyPrefix     = "ultimatum:session:"
	participantKeyPrefix = "ultimatum:participant:"
)

// RedisSessionRepository хранит JSON-снимки сессий с TTL.
// Незавершенные сессии просто истекают.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionRepo"),
	}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func participantKey(participantID string) string {
	return participantKeyPrefix + participantID
}

// Save записывает снимок и, если участник уже известен, добавляет сессию в его индекс.
func (r *RedisSessionRepository) Save(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии %s: %w", s.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), data, r.ttl)
	if s.ParticipantID != "" {
		key := participantKey(s.ParticipantID)
		pipe.SAdd(ctx, key, s.ID.String())
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save session snapshot", zap.String("sessionID", s.ID.String()), zap.Error(err))
		return fmt.Errorf("error saving session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to load session snapshot", zap.String("sessionID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("error loading session %s: %w", id, err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии %s: %w", id, err)
	}
	if s.AIMemory == nil {
		s.AIMemory = make(map[models.AIType][]int)
	}
	return &s, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("error deleting session %s: %w", id, err)
	}
	return nil
}

// ListByParticipant возвращает ID сессий участника, еще не истекших по TTL индекса.
func (r *RedisSessionRepository) ListByParticipant(ctx context.Context, participantID string) ([]uuid.UUID, error) {
	members, err := r.client.SMembers(ctx, participantKey(participantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing sessions of participant %s: %w", participantID, err)
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			r.logger.Warn("Invalid session id in participant index", zap.String("value", m))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
