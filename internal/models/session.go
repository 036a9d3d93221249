package models

import (
	"time"

	"github.com/google/uuid"
)

// State: состояние конечного автомата сессии.
type State string

const (
	StateIntro          State = "intro"
	StateRunning        State = "running"
	StateEmotionPending State = "emotion_pending"
	StateDone           State = "done"
)

// TrialsPerSession: число раундов в каждой сессии. Настраивается только разбиение по ролям.
const TrialsPerSession = 30

// ExperimentConfig фиксирует параметры эксперимента на момент создания сессии.
type ExperimentConfig struct {
	TotalAmount    int `json:"totalAmount"`
	ProposerCount  int `json:"proposerCount"`
	ResponderCount int `json:"responderCount"`
	// OfferStep: шаг ввода суммы в интерфейсе. Сервер его не навязывает.
	OfferStep int `json:"offerStep"`
}

// TrialCount возвращает общее число раундов.
func (c ExperimentConfig) TrialCount() int {
	return c.ProposerCount + c.ResponderCount
}

// Session представляет прохождение эксперимента одним участником.
// Принадлежит одному потоку взаимодействия; сервис сериализует действия над ней.
type Session struct {
	ID            uuid.UUID        `json:"id"`
	ParticipantID string           `json:"participantId,omitempty"`
	Name          string           `json:"name,omitempty"`
	PhoneSuffix   string           `json:"phoneSuffix,omitempty"`
	Config        ExperimentConfig `json:"config"`

	// Trials генерируются один раз при создании и больше не меняются.
	Trials       []Trial `json:"trials"`
	State        State   `json:"state"`
	CurrentIndex int     `json:"currentIndex"`

	// AIMemory хранит предложения участника каждому типу соперника по порядку.
	AIMemory map[AIType][]int `json:"aiMemory"`
	Records  []TrialRecord    `json:"records"`
	// Pending: запись текущего раунда, ожидающая эмоции.
	Pending        *TrialRecord  `json:"pending,omitempty"`
	TrialStartedAt time.Time     `json:"trialStartedAt"`
	Summary        *TraitSummary `json:"summary,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// CurrentTrial возвращает текущий раунд, если сессия находится внутри последовательности.
func (s *Session) CurrentTrial() (Trial, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Trials) {
		return Trial{}, false
	}
	return s.Trials[s.CurrentIndex], true
}

// Finished сообщает, что сессия в терминальном состоянии.
func (s *Session) Finished() bool {
	return s.State == StateDone
}

// Clone возвращает независимую копию сессии.
func (s *Session) Clone() *Session {
	c := *s
	c.Trials = append([]Trial(nil), s.Trials...)
	c.Records = append([]TrialRecord(nil), s.Records...)
	if s.AIMemory != nil {
		c.AIMemory = make(map[AIType][]int, len(s.AIMemory))
		for k, v := range s.AIMemory {
			c.AIMemory[k] = append([]int(nil), v...)
		}
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Summary != nil {
		sum := *s.Summary
		c.Summary = &sum
	}
	if s.FinishedAt != nil {
		f := *s.FinishedAt
		c.FinishedAt = &f
	}
	return &c
}
