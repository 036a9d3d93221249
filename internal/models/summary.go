package models

import "encoding/json"

// Metric представляет значение поведенческой метрики.
// Calculated=false означает "недостаточно данных", а не нулевую склонность.
type Metric struct {
	Value      float64
	Calculated bool
	SampleSize int
}

type metricJSON struct {
	Value      *float64 `json:"value"`
	Calculated bool     `json:"calculated"`
	SampleSize int      `json:"sampleSize"`
}

// Undefined возвращает метрику без данных.
func Undefined() Metric {
	return Metric{}
}

// MarshalJSON отдает null вместо значения для нерассчитанной метрики.
func (m Metric) MarshalJSON() ([]byte, error) {
	out := metricJSON{Calculated: m.Calculated, SampleSize: m.SampleSize}
	if m.Calculated {
		v := m.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var in metricJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Metric{Calculated: in.Calculated, SampleSize: in.SampleSize}
	if in.Calculated && in.Value != nil {
		m.Value = *in.Value
	}
	return nil
}

// RowValue возвращает значение для плоской строки (nil, если метрика не определена).
func (m Metric) RowValue() any {
	if !m.Calculated {
		return nil
	}
	return m.Value
}

// TraitSummary содержит сводку поведенческих черт за сессию.
type TraitSummary struct {
	ExploitRatio    Metric `json:"exploitRatio"`
	ExploreStd      Metric `json:"exploreStd"`
	RiskAverseRatio Metric `json:"riskAverseRatio"`
	PunishmentRate  Metric `json:"punishmentRate"`
	LossAversion    Metric `json:"lossAversion"`
	IgnoreBenefit   Metric `json:"ignoreBenefit"`

	ProposerTrials  int `json:"proposerTrials"`
	ResponderTrials int `json:"responderTrials"`
}

// Row превращает сводку в плоскую строку для хранилища результатов.
func (s TraitSummary) Row() Row {
	return Row{
		"kind":             RowKindSummary,
		"exploitRatio":     s.ExploitRatio.RowValue(),
		"exploreStd":       s.ExploreStd.RowValue(),
		"riskAverseRatio":  s.RiskAverseRatio.RowValue(),
		"punishmentRate":   s.PunishmentRate.RowValue(),
		"lossAversion":     s.LossAversion.RowValue(),
		"ignoreBenefit":    s.IgnoreBenefit.RowValue(),
		"proposer_trials":  s.ProposerTrials,
		"responder_trials": s.ResponderTrials,
	}
}
