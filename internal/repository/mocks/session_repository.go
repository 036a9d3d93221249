package mocks

import (
	"context"

	"ultimatum-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Save(ctx context.Context, s *models.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}
func (m *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *SessionRepository) ListByParticipant(ctx context.Context, participantID string) ([]uuid.UUID, error) {
	args := m.Called(ctx, participantID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}
