package models

// Row: плоская запись для внешнего хранилища результатов.
// Ключи повторяют колонки исходной таблицы результатов.
type Row map[string]any

// Виды строк, которые получает хранилище результатов.
const (
	RowKindTrial   = "trial"
	RowKindSummary = "summary"
)

// TrialRecord представляет сохраняемый итог одного раунда.
type TrialRecord struct {
	TrialNumber         int     `json:"trial"`
	Role                Role    `json:"role"`
	Offer               int     `json:"offer"`
	ReactionTimeSeconds float64 `json:"rt"`
	Emotion             Emotion `json:"emotion"`
	ProposerReward      int     `json:"proposer_reward"`
	ResponderReward     int     `json:"responder_reward"`

	// Поля раунда предлагающего
	AIType            AIType    `json:"aiType,omitempty"`
	Accepted          *bool     `json:"accepted,omitempty"`
	AcceptProbability *float64  `json:"acceptProbability,omitempty"`
	Strategy          Strategy  `json:"strategy,omitempty"`
	RiskLevel         RiskLevel `json:"riskAversion,omitempty"`

	// Поля раунда отвечающего
	Response    Response  `json:"response,omitempty"`
	FrameType   FrameType `json:"frameType,omitempty"`
	ProposerPct int       `json:"proposerPct,omitempty"`
}

// Agreed сообщает, состоялась ли сделка в раунде.
func (r TrialRecord) Agreed() bool {
	switch r.Role {
	case RoleProposer:
		return r.Accepted != nil && *r.Accepted
	case RoleResponder:
		return r.Response == ResponseAccept
	}
	return false
}

// Row превращает запись в плоскую строку. Поля другой роли остаются пустыми строками,
// чтобы у строк таблицы была одинаковая ширина.
func (r TrialRecord) Row() Row {
	row := Row{
		"kind":             RowKindTrial,
		"trial":            r.TrialNumber,
		"role":             string(r.Role),
		"offer":            r.Offer,
		"emotion":          string(r.Emotion),
		"proposer_reward":  r.ProposerReward,
		"responder_reward": r.ResponderReward,
		"rt":               r.ReactionTimeSeconds,
		"aiType":           "",
		"frameType":        "",
		"riskAversion":     "",
		"strategy":         "",
	}
	switch r.Role {
	case RoleProposer:
		if r.Accepted != nil {
			row["accepted"] = *r.Accepted
		}
		if r.AcceptProbability != nil {
			row["acceptProbability"] = *r.AcceptProbability
		}
		row["aiType"] = r.AIType.Label()
		row["riskAversion"] = string(r.RiskLevel)
		row["strategy"] = string(r.Strategy)
	case RoleResponder:
		row["response"] = string(r.Response)
		row["frameType"] = string(r.FrameType)
		if r.ProposerPct > 0 {
			row["proposerPct"] = r.ProposerPct
		}
	}
	return row
}
