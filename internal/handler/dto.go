package handler

import (
	"time"

	"ultimatum-server/internal/models"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// --- Запросы --- //

type startSessionRequest struct {
	Consent     bool   `json:"consent"`
	Name        string `json:"name" validate:"max=100"`
	PhoneSuffix string `json:"phoneSuffix" validate:"max=20"`
}

type offerRequest struct {
	// Указатель, чтобы отличить отсутствующее поле от нулевого предложения.
	Offer *int `json:"offer" validate:"required"`
}

type responseRequest struct {
	Response string `json:"response" validate:"required,oneof=accept reject"`
}

type emotionRequest struct {
	Emotion string `json:"emotion" validate:"required"`
}

// --- Ответы --- //

type emotionOption struct {
	Value models.Emotion `json:"value"`
	Label string         `json:"label"`
}

// trialPrompt: то, что участник видит в текущем раунде.
type trialPrompt struct {
	TrialNumber int              `json:"trialNumber"`
	TotalTrials int              `json:"totalTrials"`
	Role        models.Role      `json:"role"`
	Title       string           `json:"title"`
	Text        string           `json:"text"`
	AIType      models.AIType    `json:"aiType,omitempty"`
	AILabel     string           `json:"aiLabel,omitempty"`
	FrameType   models.FrameType `json:"frameType,omitempty"`
	// Поля ввода предложения (только для предлагающего).
	MinOffer     *int `json:"minOffer,omitempty"`
	MaxOffer     *int `json:"maxOffer,omitempty"`
	DefaultOffer *int `json:"defaultOffer,omitempty"`
	OfferStep    *int `json:"offerStep,omitempty"`
}

// dealFeedback: исход раунда, который показывается на шаге выбора эмоции.
type dealFeedback struct {
	Agreed            bool            `json:"agreed"`
	ParticipantReward int             `json:"participantReward"`
	OpponentReward    int             `json:"opponentReward"`
	Message           string          `json:"message"`
	Question          string          `json:"question"`
	Emotions          []emotionOption `json:"emotions"`
}

type sessionResponse struct {
	ID              string                  `json:"id"`
	State           models.State            `json:"state"`
	ParticipantID   string                  `json:"participantId,omitempty"`
	Config          models.ExperimentConfig `json:"config"`
	CompletedTrials int                     `json:"completedTrials"`
	Intro           string                  `json:"intro,omitempty"`
	Prompt          *trialPrompt            `json:"prompt,omitempty"`
	Pending         *models.TrialRecord     `json:"pending,omitempty"`
	Feedback        *dealFeedback           `json:"feedback,omitempty"`
	Summary         *models.TraitSummary    `json:"summary,omitempty"`
	Message         string                  `json:"message,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	FinishedAt      *time.Time              `json:"finishedAt,omitempty"`
}

type actionResponse struct {
	Session  sessionResponse    `json:"session"`
	Record   models.TrialRecord `json:"record"`
	Feedback dealFeedback       `json:"feedback"`
}

type emotionResponse struct {
	Session  sessionResponse      `json:"session"`
	Record   models.TrialRecord   `json:"record"`
	Done     bool                 `json:"done"`
	Summary  *models.TraitSummary `json:"summary,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
}

type participantSessionsResponse struct {
	ParticipantID string   `json:"participantId"`
	SessionIDs    []string `json:"sessionIds"`
}

func intPtr(v int) *int { return &v }

func emotionOptions() []emotionOption {
	all := models.Emotions()
	out := make([]emotionOption, 0, len(all))
	for _, e := range all {
		out = append(out, emotionOption{Value: e, Label: e.Label()})
	}
	return out
}

func newFeedback(rec models.TrialRecord) dealFeedback {
	fb := dealFeedback{
		Agreed:   rec.Agreed(),
		Question: emotionQuestion,
		Emotions: emotionOptions(),
	}
	switch rec.Role {
	case models.RoleProposer:
		fb.ParticipantReward, fb.OpponentReward = rec.ProposerReward, rec.ResponderReward
	case models.RoleResponder:
		fb.ParticipantReward, fb.OpponentReward = rec.ResponderReward, rec.ProposerReward
	}
	if fb.Agreed {
		fb.Message = dealText(fb.ParticipantReward, fb.OpponentReward)
	} else {
		fb.Message = dealFailedText
	}
	return fb
}

func newTrialPrompt(s *models.Session, t models.Trial) *trialPrompt {
	p := &trialPrompt{
		TrialNumber: s.CurrentIndex + 1,
		TotalTrials: len(s.Trials),
		Role:        t.Role,
		Title:       roleTitle(t.Role),
	}
	switch t.Role {
	case models.RoleProposer:
		p.AIType = t.AIType
		p.AILabel = t.AIType.Label()
		p.Text = proposerPromptText(t.AIType)
		p.MinOffer = intPtr(0)
		p.MaxOffer = intPtr(s.Config.TotalAmount)
		p.DefaultOffer = intPtr(s.Config.TotalAmount / 2)
		if s.Config.OfferStep > 0 {
			p.OfferStep = intPtr(s.Config.OfferStep)
		}
	case models.RoleResponder:
		p.FrameType = t.FrameType
		p.Text = responderPromptText(t, s.Config.TotalAmount)
	}
	return p
}

// newSessionResponse не раскрывает будущие раунды: только текущий вопрос.
func newSessionResponse(s *models.Session) sessionResponse {
	resp := sessionResponse{
		ID:              s.ID.String(),
		State:           s.State,
		ParticipantID:   s.ParticipantID,
		Config:          s.Config,
		CompletedTrials: len(s.Records),
		CreatedAt:       s.CreatedAt,
		FinishedAt:      s.FinishedAt,
	}
	switch s.State {
	case models.StateIntro:
		resp.Intro = introText(s.Config)
	case models.StateRunning:
		if t, ok := s.CurrentTrial(); ok {
			resp.Prompt = newTrialPrompt(s, t)
		}
	case models.StateEmotionPending:
		if s.Pending != nil {
			resp.Pending = s.Pending
			fb := newFeedback(*s.Pending)
			resp.Feedback = &fb
		}
	case models.StateDone:
		resp.Summary = s.Summary
		resp.Message = finishedText
	}
	return resp
}
