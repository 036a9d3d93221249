package game_test

import (
	"encoding/json"
	"testing"

	"ultimatum-server/internal/game"
	"ultimatum-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_LiteralExample(t *testing.T) {
	records := []models.TrialRecord{
		{Role: models.RoleProposer, Offer: 10000},
		{Role: models.RoleProposer, Offer: 60000},
		{Role: models.RoleResponder, Offer: 15000, Response: models.ResponseReject},
		{Role: models.RoleResponder, Offer: 55000, Response: models.ResponseAccept},
	}

	s := game.Summarize(records)

	assert.True(t, s.ExploitRatio.Calculated)
	assert.Equal(t, 0.5, s.ExploitRatio.Value)
	assert.True(t, s.RiskAverseRatio.Calculated)
	assert.Equal(t, 0.5, s.RiskAverseRatio.Value)
	assert.True(t, s.PunishmentRate.Calculated)
	assert.Equal(t, 1.0, s.PunishmentRate.Value)
	assert.False(t, s.LossAversion.Calculated, "no mid-range responder trials")
	assert.True(t, s.IgnoreBenefit.Calculated)
	assert.Equal(t, 0.0, s.IgnoreBenefit.Value)

	assert.True(t, s.ExploreStd.Calculated)
	assert.InDelta(t, 25000.0, s.ExploreStd.Value, 1e-9)

	assert.Equal(t, 2, s.ProposerTrials)
	assert.Equal(t, 2, s.ResponderTrials)
}

func TestSummarize_Idempotent(t *testing.T) {
	records := []models.TrialRecord{
		{Role: models.RoleProposer, Offer: 45000},
		{Role: models.RoleResponder, Offer: 30000, Response: models.ResponseReject},
		{Role: models.RoleResponder, Offer: 40000, Response: models.ResponseAccept},
	}
	assert.Equal(t, game.Summarize(records), game.Summarize(records))
}

func TestSummarize_Empty(t *testing.T) {
	s := game.Summarize(nil)
	for name, m := range map[string]models.Metric{
		"exploitRatio":    s.ExploitRatio,
		"exploreStd":      s.ExploreStd,
		"riskAverseRatio": s.RiskAverseRatio,
		"punishmentRate":  s.PunishmentRate,
		"lossAversion":    s.LossAversion,
		"ignoreBenefit":   s.IgnoreBenefit,
	} {
		assert.False(t, m.Calculated, name)
	}
}

func TestSummarize_BandBoundaries(t *testing.T) {
	records := []models.TrialRecord{
		{Role: models.RoleResponder, Offer: 20000, Response: models.ResponseReject},
		{Role: models.RoleResponder, Offer: 20001, Response: models.ResponseReject},
		{Role: models.RoleResponder, Offer: 49999, Response: models.ResponseAccept},
		{Role: models.RoleResponder, Offer: 50000, Response: models.ResponseReject},
	}
	s := game.Summarize(records)

	assert.Equal(t, 1.0, s.PunishmentRate.Value)
	assert.Equal(t, 1, s.PunishmentRate.SampleSize)
	assert.Equal(t, 0.5, s.LossAversion.Value)
	assert.Equal(t, 2, s.LossAversion.SampleSize)
	assert.Equal(t, 1.0, s.IgnoreBenefit.Value)
	// Без раундов предлагающего метрики предлагающего не определены.
	assert.False(t, s.ExploitRatio.Calculated)
	assert.False(t, s.ExploreStd.Calculated)
}

func TestSummary_UndefinedMarshalsAsNull(t *testing.T) {
	s := game.Summarize([]models.TrialRecord{{Role: models.RoleProposer, Offer: 50000}})

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	loss, ok := decoded["lossAversion"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, loss["value"])
	assert.Equal(t, false, loss["calculated"])
	risk, ok := decoded["riskAverseRatio"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, risk["value"])

	row := s.Row()
	assert.Nil(t, row["lossAversion"])
	assert.Equal(t, 1.0, row["riskAverseRatio"])

	var back models.TraitSummary
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, back)
}
