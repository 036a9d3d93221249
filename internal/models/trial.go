package models

import "fmt"

// Role определяет, кем выступает участник в конкретном раунде.
type Role string

const (
	RoleProposer  Role = "proposer"
	RoleResponder Role = "responder"
)

func (r Role) Valid() bool {
	switch r {
	case RoleProposer, RoleResponder:
		return true
	}
	return false
}

// AIType: тип симулируемого соперника, которому участник делает предложение.
type AIType string

const (
	AILenient AIType = "lenient"
	AIStrict  AIType = "strict"
)

// AITypes возвращает все типы соперников в фиксированном порядке.
func AITypes() []AIType {
	return []AIType{AILenient, AIStrict}
}

// Label возвращает имя соперника, которое видит участник.
func (a AIType) Label() string {
	switch a {
	case AILenient:
		return "무난이"
	case AIStrict:
		return "엄격이"
	}
	return string(a)
}

func (a AIType) Valid() bool {
	switch a {
	case AILenient, AIStrict:
		return true
	}
	return false
}

// FrameType описывает, как предложение подается отвечающему.
type FrameType string

const (
	// FrameDirect: "вы получаете N".
	FrameDirect FrameType = "direct"
	// FrameIndirect: "предлагающий оставляет себе N", долю отвечающего нужно вычислить.
	FrameIndirect FrameType = "indirect"
)

func FrameTypes() []FrameType {
	return []FrameType{FrameDirect, FrameIndirect}
}

func (f FrameType) Valid() bool {
	switch f {
	case FrameDirect, FrameIndirect:
		return true
	}
	return false
}

// Response: решение участника в роли отвечающего.
type Response string

const (
	ResponseAccept Response = "accept"
	ResponseReject Response = "reject"
)

// ParseResponse проверяет строку из запроса.
func ParseResponse(s string) (Response, error) {
	switch r := Response(s); r {
	case ResponseAccept, ResponseReject:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResponse, s)
}

// Emotion: самооценка эмоции после раунда.
type Emotion string

const (
	EmotionJoy            Emotion = "joy"
	EmotionRelief         Emotion = "relief"
	EmotionNeutral        Emotion = "neutral"
	EmotionDisappointment Emotion = "disappointment"
	EmotionAnger          Emotion = "anger"
)

// Emotions возвращает варианты в порядке показа участнику.
func Emotions() []Emotion {
	return []Emotion{EmotionJoy, EmotionRelief, EmotionNeutral, EmotionDisappointment, EmotionAnger}
}

// Label возвращает подпись варианта на экране.
func (e Emotion) Label() string {
	switch e {
	case EmotionJoy:
		return "😊 기쁨"
	case EmotionRelief:
		return "😌 다행스러움"
	case EmotionNeutral:
		return "😐 무감정/잘 모르겠음"
	case EmotionDisappointment:
		return "☹️ 실망"
	case EmotionAnger:
		return "😠 화남"
	}
	return string(e)
}

// ParseEmotion проверяет строку из запроса.
func ParseEmotion(s string) (Emotion, error) {
	switch e := Emotion(s); e {
	case EmotionJoy, EmotionRelief, EmotionNeutral, EmotionDisappointment, EmotionAnger:
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEmotion, s)
}

// Strategy классифицирует предложение относительно предыдущего предложения тому же сопернику.
type Strategy string

const (
	StrategyFirstOffer Strategy = "first-offer"
	StrategyExplore    Strategy = "explore"
	StrategyExploit    Strategy = "exploit"
)

// RiskLevel: грубая оценка того, насколько предложение далеко от равного раздела.
type RiskLevel string

const (
	RiskVeryLow RiskLevel = "very-low"
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
)

// Trial: один запланированный раунд сессии.
// Для предлагающего заполнен AIType, для отвечающего FrameType и Offer.
type Trial struct {
	Role      Role      `json:"role"`
	AIType    AIType    `json:"aiType,omitempty"`
	FrameType FrameType `json:"frameType,omitempty"`
	// Offer: сумма, которую получит отвечающий (только для RoleResponder).
	Offer int `json:"offer,omitempty"`
	// ProposerPct: доля предлагающего в процентах (только для FrameIndirect).
	ProposerPct int `json:"proposerPct,omitempty"`
}

// ProposerKeeps возвращает сумму, которую предлагающий оставляет себе в раунде отвечающего.
func (t Trial) ProposerKeeps(total int) int {
	return total - t.Offer
}
