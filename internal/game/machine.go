package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"ultimatum-server/internal/logger"
	"ultimatum-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultSink принимает плоские строки результатов.
// Допускается доставка at-least-once; об ошибке нужно сообщать, а не глотать ее.
type ResultSink interface {
	Append(ctx context.Context, row models.Row) error
}

// Identity содержит данные, которые участник вводит на вводном экране.
type Identity struct {
	Consent     bool
	Name        string
	PhoneSuffix string
}

// Outcome: результат завершения раунда (после выбора эмоции).
type Outcome struct {
	Record  models.TrialRecord
	Done    bool
	Summary *models.TraitSummary
	// Warnings содержит нефатальные ошибки записи во внешнее хранилище.
	Warnings []error
}

// Machine продвигает сессию по состояниям intro → running → emotion_pending → … → done.
// Сама Machine не хранит состояния сессий и может обслуживать любое их число,
// но одна сессия должна обрабатываться последовательно.
type Machine struct {
	rnd    RandomSource
	clock  Clock
	sink   ResultSink
	logger *zap.Logger
}

// NewMachine создает автомат. sink может быть nil: тогда строки никуда не отправляются.
func NewMachine(rnd RandomSource, clock Clock, sink ResultSink, logger *zap.Logger) *Machine {
	if rnd == nil {
		rnd = DefaultSource()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		rnd:    rnd,
		clock:  clock,
		sink:   sink,
		logger: logger.Named("GameMachine"),
	}
}

// NewSession создает сессию в состоянии intro. Раунды генерируются здесь один раз.
func (m *Machine) NewSession(cfg models.ExperimentConfig) (*models.Session, error) {
	trials, err := GenerateTrials(m.rnd, cfg)
	if err != nil {
		return nil, err
	}
	s := &models.Session{
		ID:        uuid.New(),
		Config:    cfg,
		Trials:    trials,
		State:     models.StateIntro,
		AIMemory:  make(map[models.AIType][]int, len(models.AITypes())),
		Records:   make([]models.TrialRecord, 0, len(trials)),
		CreatedAt: m.clock.Now().UTC(),
	}
	m.logger.Debug("Session created",
		zap.String("sessionID", s.ID.String()),
		zap.Int("proposerTrials", cfg.ProposerCount),
		zap.Int("responderTrials", cfg.ResponderCount),
	)
	return s, nil
}

// Start переводит сессию из intro в первый раунд.
func (m *Machine) Start(s *models.Session, id Identity) error {
	if s.State != models.StateIntro {
		return fmt.Errorf("%w: start in state %s", models.ErrInvalidState, s.State)
	}
	if !id.Consent {
		return models.ErrConsentRequired
	}
	name := strings.TrimSpace(id.Name)
	suffix := strings.TrimSpace(id.PhoneSuffix)
	if name == "" || suffix == "" {
		return models.ErrIdentityRequired
	}

	s.Name = name
	s.PhoneSuffix = suffix
	s.ParticipantID = name + suffix
	m.enterTrial(s, 0)
	m.logger.Info("Session started",
		zap.String("sessionID", s.ID.String()),
		logger.Participant(s.ParticipantID),
	)
	return nil
}

// SubmitOffer обрабатывает предложение участника в раунде предлагающего.
func (m *Machine) SubmitOffer(s *models.Session, offer int) (models.TrialRecord, error) {
	trial, err := m.currentTrial(s, models.RoleProposer)
	if err != nil {
		return models.TrialRecord{}, err
	}
	total := s.Config.TotalAmount
	if offer < 0 || offer > total {
		return models.TrialRecord{}, fmt.Errorf("%w: %d not in [0, %d]", models.ErrOfferOutOfRange, offer, total)
	}

	ai := trial.AIType
	// Стратегия считается по памяти ДО добавления текущего предложения.
	strategy := ClassifyStrategy(s.AIMemory[ai], offer)
	decision := Decide(m.rnd, ai, offer)
	if s.AIMemory == nil {
		s.AIMemory = make(map[models.AIType][]int)
	}
	s.AIMemory[ai] = append(s.AIMemory[ai], offer)

	accepted := decision.Accepted
	prob := decision.AcceptProbability
	rec := models.TrialRecord{
		TrialNumber:         s.CurrentIndex + 1,
		Role:                models.RoleProposer,
		Offer:               offer,
		ReactionTimeSeconds: m.reactionTime(s),
		AIType:              ai,
		Accepted:            &accepted,
		AcceptProbability:   &prob,
		Strategy:            strategy,
		RiskLevel:           ClassifyRisk(offer),
	}
	if accepted {
		rec.ProposerReward = total - offer
		rec.ResponderReward = offer
	}

	s.Pending = &rec
	s.State = models.StateEmotionPending
	return rec, nil
}

// SubmitResponse обрабатывает решение участника в раунде отвечающего.
func (m *Machine) SubmitResponse(s *models.Session, resp models.Response) (models.TrialRecord, error) {
	trial, err := m.currentTrial(s, models.RoleResponder)
	if err != nil {
		return models.TrialRecord{}, err
	}

	rec := models.TrialRecord{
		TrialNumber: s.CurrentIndex + 1,
		Role:        models.RoleResponder,
		Offer:       trial.Offer,
		Response:    resp,
		FrameType:   trial.FrameType,
		ProposerPct: trial.ProposerPct,
	}
	switch resp {
	case models.ResponseAccept:
		rec.ResponderReward = trial.Offer
		rec.ProposerReward = s.Config.TotalAmount - trial.Offer
	case models.ResponseReject:
		// Отказ: оба ничего не получают.
	default:
		return models.TrialRecord{}, fmt.Errorf("%w: %q", models.ErrInvalidResponse, resp)
	}
	rec.ReactionTimeSeconds = m.reactionTime(s)

	s.Pending = &rec
	s.State = models.StateEmotionPending
	return rec, nil
}

// SubmitEmotion прикрепляет эмоцию к ожидающей записи, добавляет запись в сессию,
// отправляет ее во внешнее хранилище и переходит к следующему раунду или к done.
// Ошибки хранилища не откатывают переход и возвращаются в Outcome.Warnings.
func (m *Machine) SubmitEmotion(ctx context.Context, s *models.Session, emotion models.Emotion) (Outcome, error) {
	if s.State != models.StateEmotionPending || s.Pending == nil {
		return Outcome{}, fmt.Errorf("%w: emotion in state %s", models.ErrInvalidState, s.State)
	}
	if _, err := models.ParseEmotion(string(emotion)); err != nil {
		return Outcome{}, err
	}

	rec := *s.Pending
	rec.Emotion = emotion
	s.Records = append(s.Records, rec)
	s.Pending = nil

	out := Outcome{Record: rec}
	if err := m.emit(ctx, s, rec.Row()); err != nil {
		out.Warnings = append(out.Warnings, err)
	}

	next := s.CurrentIndex + 1
	if next < len(s.Trials) {
		m.enterTrial(s, next)
		return out, nil
	}

	summary := m.finish(s)
	out.Done = true
	out.Summary = &summary
	if err := m.emit(ctx, s, summary.Row()); err != nil {
		out.Warnings = append(out.Warnings, err)
	}
	return out, nil
}

func (m *Machine) finish(s *models.Session) models.TraitSummary {
	summary := Summarize(s.Records)
	finishedAt := m.clock.Now().UTC()
	s.State = models.StateDone
	s.Summary = &summary
	s.FinishedAt = &finishedAt
	m.logger.Info("Session finished",
		zap.String("sessionID", s.ID.String()),
		logger.Participant(s.ParticipantID),
		zap.Int("records", len(s.Records)),
	)
	return summary
}

func (m *Machine) currentTrial(s *models.Session, role models.Role) (models.Trial, error) {
	if s.State != models.StateRunning {
		return models.Trial{}, fmt.Errorf("%w: %s action in state %s", models.ErrInvalidState, role, s.State)
	}
	trial, ok := s.CurrentTrial()
	if !ok {
		return models.Trial{}, fmt.Errorf("%w: trial index %d out of range", models.ErrInvalidState, s.CurrentIndex)
	}
	if trial.Role != role {
		return models.Trial{}, fmt.Errorf("%w: trial %d expects %s", models.ErrWrongRole, s.CurrentIndex+1, trial.Role)
	}
	return trial, nil
}

func (m *Machine) enterTrial(s *models.Session, index int) {
	s.CurrentIndex = index
	s.State = models.StateRunning
	s.Pending = nil
	s.TrialStartedAt = m.clock.Now()
}

// reactionTime: секунды с входа в раунд, округленные до сотых.
func (m *Machine) reactionTime(s *models.Session) float64 {
	elapsed := m.clock.Now().Sub(s.TrialStartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return math.Round(elapsed*100) / 100
}

func (m *Machine) emit(ctx context.Context, s *models.Session, row models.Row) error {
	if m.sink == nil {
		return nil
	}
	row["session_id"] = s.ID.String()
	row["participant_id"] = s.ParticipantID
	if err := m.sink.Append(ctx, row); err != nil {
		var sinkErr *models.SinkError
		if !errors.As(err, &sinkErr) {
			err = &models.SinkError{Sink: "result", Err: err}
		}
		m.logger.Warn("Failed to append row to result sink",
			zap.String("sessionID", s.ID.String()),
			zap.Any("kind", row["kind"]),
			zap.Error(err),
		)
		return err
	}
	return nil
}
