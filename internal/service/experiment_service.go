package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ultimatum-server/internal/export"
	"ultimatum-server/internal/game"
	"ultimatum-server/internal/models"
	"ultimatum-server/internal/repository"
	"ultimatum-server/internal/sink"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExperimentService управляет жизненным циклом сессий эксперимента.
type ExperimentService interface {
	// CreateSession создает сессию в состоянии intro с уже сгенерированными раундами.
	CreateSession(ctx context.Context) (*models.Session, error)
	StartSession(ctx context.Context, id uuid.UUID, identity game.Identity) (*models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SubmitOffer(ctx context.Context, id uuid.UUID, offer int) (*ActionResult, error)
	SubmitResponse(ctx context.Context, id uuid.UUID, response models.Response) (*ActionResult, error)
	// SubmitEmotion завершает раунд. Ошибки хранилищ результатов не прерывают
	// сессию и возвращаются в EmotionResult.Warnings.
	SubmitEmotion(ctx context.Context, id uuid.UUID, emotion models.Emotion) (*EmotionResult, error)
	// Export возвращает документ результатов; models.ErrSessionNotFinished до done.
	Export(ctx context.Context, id uuid.UUID) (*export.Document, error)
	ListParticipantSessions(ctx context.Context, participantID string) ([]uuid.UUID, error)
}

// ActionResult: итог решения участника до выбора эмоции.
type ActionResult struct {
	Session *models.Session
	Record  models.TrialRecord
}

// EmotionResult описывает итог завершенного раунда.
type EmotionResult struct {
	Session  *models.Session
	Record   models.TrialRecord
	Done     bool
	Summary  *models.TraitSummary
	Warnings []error
}

type experimentService struct {
	machine *game.Machine
	repo    repository.SessionRepository
	archive *export.Archive
	cfg     models.ExperimentConfig
	locks   *sessionLocks
	logger  *zap.Logger
}

// NewExperimentService создает сервис. archive может быть nil.
func NewExperimentService(
	machine *game.Machine,
	repo repository.SessionRepository,
	archive *export.Archive,
	cfg models.ExperimentConfig,
	logger *zap.Logger,
) (ExperimentService, error) {
	if err := game.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &experimentService{
		machine: machine,
		repo:    repo,
		archive: archive,
		cfg:     cfg,
		locks:   newSessionLocks(),
		logger:  logger.Named("ExperimentService"),
	}, nil
}

func (s *experimentService) CreateSession(ctx context.Context) (*models.Session, error) {
	session, err := s.machine.NewSession(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}
	sessionsCreatedTotal.Inc()
	s.logger.Info("Session created", zap.String("sessionID", session.ID.String()))
	return session.Clone(), nil
}

func (s *experimentService) StartSession(ctx context.Context, id uuid.UUID, identity game.Identity) (*models.Session, error) {
	var out *models.Session
	err := s.withSession(ctx, id, func(session *models.Session) error {
		if err := s.machine.Start(session, identity); err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	sessionsStartedTotal.Inc()
	return out.Clone(), nil
}

func (s *experimentService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

func (s *experimentService) SubmitOffer(ctx context.Context, id uuid.UUID, offer int) (*ActionResult, error) {
	var result ActionResult
	err := s.withSession(ctx, id, func(session *models.Session) error {
		rec, err := s.machine.SubmitOffer(session, offer)
		if err != nil {
			return err
		}
		result = ActionResult{Session: session, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accepted := result.Record.Accepted != nil && *result.Record.Accepted
	proposerDecisionsTotal.WithLabelValues(string(result.Record.AIType), strconv.FormatBool(accepted)).Inc()
	reactionTimeSeconds.WithLabelValues(string(models.RoleProposer)).Observe(result.Record.ReactionTimeSeconds)
	result.Session = result.Session.Clone()
	return &result, nil
}

func (s *experimentService) SubmitResponse(ctx context.Context, id uuid.UUID, response models.Response) (*ActionResult, error) {
	var result ActionResult
	err := s.withSession(ctx, id, func(session *models.Session) error {
		rec, err := s.machine.SubmitResponse(session, response)
		if err != nil {
			return err
		}
		result = ActionResult{Session: session, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reactionTimeSeconds.WithLabelValues(string(models.RoleResponder)).Observe(result.Record.ReactionTimeSeconds)
	result.Session = result.Session.Clone()
	return &result, nil
}

func (s *experimentService) SubmitEmotion(ctx context.Context, id uuid.UUID, emotion models.Emotion) (*EmotionResult, error) {
	var result EmotionResult
	err := s.withSession(ctx, id, func(session *models.Session) error {
		// Запись результатов не должна обрываться из-за отключения клиента.
		out, err := s.machine.SubmitEmotion(context.WithoutCancel(ctx), session, emotion)
		if err != nil {
			return err
		}
		result = EmotionResult{
			Session:  session,
			Record:   out.Record,
			Done:     out.Done,
			Summary:  out.Summary,
			Warnings: out.Warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Архив пишется только после сохранения done: повтор запроса после ошибки Save не создаст второй файл.
	if result.Done {
		if err := s.archiveSession(result.Session); err != nil {
			result.Warnings = append(result.Warnings, err)
		}
	}

	trialsCompletedTotal.WithLabelValues(string(result.Record.Role)).Inc()
	for _, w := range result.Warnings {
		names := sink.FailedSinks(w)
		if len(names) == 0 {
			names = []string{"unknown"}
		}
		for _, name := range names {
			sinkFailuresTotal.WithLabelValues(name).Inc()
		}
	}
	if result.Done {
		sessionsFinishedTotal.Inc()
	}
	result.Session = result.Session.Clone()
	return &result, nil
}

func (s *experimentService) Export(ctx context.Context, id uuid.UUID) (*export.Document, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return export.Build(session)
}

func (s *experimentService) ListParticipantSessions(ctx context.Context, participantID string) ([]uuid.UUID, error) {
	if participantID == "" {
		return nil, models.ErrIdentityRequired
	}
	return s.repo.ListByParticipant(ctx, participantID)
}

// withSession загружает сессию под блокировкой, применяет fn и сохраняет результат.
// Если fn вернула ошибку, сессия не сохраняется.
func (s *experimentService) withSession(ctx context.Context, id uuid.UUID, fn func(*models.Session) error) error {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(session); err != nil {
		if !errors.Is(err, models.ErrValidation) {
			s.logger.Error("Session action failed", zap.String("sessionID", id.String()), zap.Error(err))
		}
		return err
	}
	if err := s.repo.Save(context.WithoutCancel(ctx), session); err != nil {
		s.logger.Error("Failed to save session", zap.String("sessionID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}

func (s *experimentService) archiveSession(session *models.Session) error {
	if s.archive == nil {
		return nil
	}
	doc, err := export.Build(session)
	if err != nil {
		return &models.SinkError{Sink: "archive", Err: err}
	}
	if _, err := s.archive.Save(doc); err != nil {
		s.logger.Warn("Failed to archive finished session", zap.String("sessionID", session.ID.String()), zap.Error(err))
		return &models.SinkError{Sink: "archive", Err: err}
	}
	return nil
}
