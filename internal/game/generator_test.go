package game_test

import (
	"errors"
	"testing"

	"ultimatum-server/internal/game"
	"ultimatum-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() models.ExperimentConfig {
	return models.ExperimentConfig{TotalAmount: 100000, ProposerCount: 12, ResponderCount: 18, OfferStep: 5000}
}

func TestGenerateTrials_CountsAndRoles(t *testing.T) {
	splits := []struct {
		name       string
		proposers  int
		responders int
	}{
		{"12/18", 12, 18},
		{"14/16", 14, 16},
		{"30/0", 30, 0},
		{"0/30", 0, 30},
	}

	for _, split := range splits {
		t.Run(split.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.ProposerCount = split.proposers
			cfg.ResponderCount = split.responders

			for seed := uint64(1); seed <= 50; seed++ {
				trials, err := game.GenerateTrials(game.NewSeededSource(seed), cfg)
				require.NoError(t, err)
				require.Len(t, trials, 30)

				counts := map[models.Role]int{}
				for _, tr := range trials {
					counts[tr.Role]++
				}
				assert.Equal(t, split.proposers, counts[models.RoleProposer])
				assert.Equal(t, split.responders, counts[models.RoleResponder])
			}
		})
	}
}

func TestGenerateTrials_OfferBounds(t *testing.T) {
	cfg := defaultConfig()
	direct := map[int]bool{10000: true, 20000: true, 30000: true, 40000: true, 50000: true}
	pcts := map[int]bool{60: true, 70: true, 80: true, 90: true}

	for seed := uint64(1); seed <= 100; seed++ {
		trials, err := game.GenerateTrials(game.NewSeededSource(seed), cfg)
		require.NoError(t, err)

		for i, tr := range trials {
			switch tr.Role {
			case models.RoleProposer:
				assert.True(t, tr.AIType.Valid(), "trial %d: ai type %q", i, tr.AIType)
				assert.Zero(t, tr.Offer)
			case models.RoleResponder:
				assert.GreaterOrEqual(t, tr.Offer, 0)
				assert.LessOrEqual(t, tr.Offer, cfg.TotalAmount)
				switch tr.FrameType {
				case models.FrameDirect:
					assert.True(t, direct[tr.Offer], "trial %d: direct offer %d", i, tr.Offer)
					assert.Zero(t, tr.ProposerPct)
				case models.FrameIndirect:
					require.True(t, pcts[tr.ProposerPct], "trial %d: pct %d", i, tr.ProposerPct)
					assert.Equal(t, cfg.TotalAmount-cfg.TotalAmount*tr.ProposerPct/100, tr.Offer)
				default:
					t.Fatalf("trial %d: unexpected frame %q", i, tr.FrameType)
				}
			}
		}
	}
}

func TestGenerateTrials_Reproducible(t *testing.T) {
	cfg := defaultConfig()
	a, err := game.GenerateTrials(game.NewSeededSource(42), cfg)
	require.NoError(t, err)
	b, err := game.GenerateTrials(game.NewSeededSource(42), cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := game.GenerateTrials(game.NewSeededSource(43), cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerateTrials_InvalidConfig(t *testing.T) {
	cases := map[string]models.ExperimentConfig{
		"zero total":       {TotalAmount: 0, ProposerCount: 12, ResponderCount: 18},
		"negative count":   {TotalAmount: 100000, ProposerCount: -1, ResponderCount: 18},
		"no trials at all": {TotalAmount: 100000},
		"20/20":            {TotalAmount: 100000, ProposerCount: 20, ResponderCount: 20},
		"1/0":              {TotalAmount: 100000, ProposerCount: 1},
		"12/17":            {TotalAmount: 100000, ProposerCount: 12, ResponderCount: 17},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			trials, err := game.GenerateTrials(game.NewSeededSource(1), cfg)
			assert.Nil(t, trials)
			assert.True(t, errors.Is(err, models.ErrInvalidConfig))
			assert.True(t, errors.Is(err, models.ErrValidation))
		})
	}
}

func TestValidateConfig_RequiresFullSession(t *testing.T) {
	for _, split := range [][2]int{{12, 18}, {14, 16}, {30, 0}} {
		cfg := models.ExperimentConfig{TotalAmount: 100000, ProposerCount: split[0], ResponderCount: split[1]}
		assert.NoError(t, game.ValidateConfig(cfg), "split %d/%d", split[0], split[1])
	}

	err := game.ValidateConfig(models.ExperimentConfig{TotalAmount: 100000, ProposerCount: 20, ResponderCount: 20})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "exactly 30 trials")
}

func TestIndirectOffer(t *testing.T) {
	assert.Equal(t, 40000, game.IndirectOffer(100000, 60))
	assert.Equal(t, 30000, game.IndirectOffer(100000, 70))
	assert.Equal(t, 20000, game.IndirectOffer(100000, 80))
	assert.Equal(t, 10000, game.IndirectOffer(100000, 90))
	// Доля предлагающего округляется вниз.
	assert.Equal(t, 34, game.IndirectOffer(99, 66))
}
