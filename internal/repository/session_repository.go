package repository

import (
	"context"

	"ultimatum-server/internal/models"

	"github.com/google/uuid"
)

// SessionRepository хранит сессии между HTTP-запросами.
// Get возвращает models.ErrSessionNotFound, если сессии нет или она вытеснена.
type SessionRepository interface {
	Save(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByParticipant возвращает ID известных сессий участника.
	ListByParticipant(ctx context.Context, participantID string) ([]uuid.UUID, error)
}
