package mocks

import (
	"context"

	"ultimatum-server/internal/export"
	"ultimatum-server/internal/game"
	"ultimatum-server/internal/models"
	"ultimatum-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock ExperimentService
type ExperimentService struct {
	mock.Mock
}

func (m *ExperimentService) CreateSession(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}
func (m *ExperimentService) StartSession(ctx context.Context, id uuid.UUID, identity game.Identity) (*models.Session, error) {
	args := m.Called(ctx, id, identity)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}
func (m *ExperimentService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}
func (m *ExperimentService) SubmitOffer(ctx context.Context, id uuid.UUID, offer int) (*service.ActionResult, error) {
	args := m.Called(ctx, id, offer)
	r, _ := args.Get(0).(*service.ActionResult)
	return r, args.Error(1)
}
func (m *ExperimentService) SubmitResponse(ctx context.Context, id uuid.UUID, response models.Response) (*service.ActionResult, error) {
	args := m.Called(ctx, id, response)
	r, _ := args.Get(0).(*service.ActionResult)
	return r, args.Error(1)
}
func (m *ExperimentService) SubmitEmotion(ctx context.Context, id uuid.UUID, emotion models.Emotion) (*service.EmotionResult, error) {
	args := m.Called(ctx, id, emotion)
	r, _ := args.Get(0).(*service.EmotionResult)
	return r, args.Error(1)
}
func (m *ExperimentService) Export(ctx context.Context, id uuid.UUID) (*export.Document, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*export.Document)
	return d, args.Error(1)
}
func (m *ExperimentService) ListParticipantSessions(ctx context.Context, participantID string) ([]uuid.UUID, error) {
	args := m.Called(ctx, participantID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}
