package repository

import (
	"context"
	"fmt"

	"ultimatum-server/internal/models"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

var _ SessionRepository = (*MemorySessionRepository)(nil)

// MemorySessionRepository хранит сессии в памяти с ограничением по размеру.
// При переполнении вытесняется сессия, к которой дольше всего не обращались.
type MemorySessionRepository struct {
	cache  *lru.Cache[uuid.UUID, *models.Session]
	logger *zap.Logger
}

func NewMemorySessionRepository(size int, logger *zap.Logger) (*MemorySessionRepository, error) {
	if size <= 0 {
		return nil, fmt.Errorf("session cache size must be positive, got %d", size)
	}
	log := logger.Named("MemorySessionRepo")
	cache, err := lru.NewWithEvict[uuid.UUID, *models.Session](size, func(id uuid.UUID, s *models.Session) {
		log.Info("Session evicted from memory store",
			zap.String("sessionID", id.String()),
			zap.String("state", string(s.State)),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &MemorySessionRepository{cache: cache, logger: log}, nil
}

// Save сохраняет копию: изменения объекта после Save не видны хранилищу.
func (r *MemorySessionRepository) Save(_ context.Context, s *models.Session) error {
	r.cache.Add(s.ID, s.Clone())
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s, ok := r.cache.Get(id)
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.cache.Remove(id)
	return nil
}

func (r *MemorySessionRepository) ListByParticipant(_ context.Context, participantID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, s := range r.cache.Values() {
		if s.ParticipantID == participantID {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

// Len возвращает число сессий в памяти.
func (r *MemorySessionRepository) Len() int {
	return r.cache.Len()
}
