package game

import (
	"fmt"

	"ultimatum-server/internal/models"
)

// Варианты сумм для раундов отвечающего.
var (
	directOffers        = []int{10000, 20000, 30000, 40000, 50000}
	indirectProposerPct = []int{60, 70, 80, 90}
)

// ValidateConfig проверяет конфигурацию эксперимента.
func ValidateConfig(cfg models.ExperimentConfig) error {
	if cfg.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive, got %d", models.ErrInvalidConfig, cfg.TotalAmount)
	}
	if cfg.ProposerCount < 0 || cfg.ResponderCount < 0 {
		return fmt.Errorf("%w: trial counts must not be negative (%d/%d)", models.ErrInvalidConfig, cfg.ProposerCount, cfg.ResponderCount)
	}
	if cfg.TrialCount() != models.TrialsPerSession {
		return fmt.Errorf("%w: session must have exactly %d trials, got %d/%d",
			models.ErrInvalidConfig, models.TrialsPerSession, cfg.ProposerCount, cfg.ResponderCount)
	}
	return nil
}

// GenerateTrials строит упорядоченную последовательность раундов одной сессии.
// Мультимножество ролей перемешивается, затем для каждого раунда по порядку
// разыгрываются его атрибуты. Для одного и того же источника результат воспроизводим.
func GenerateTrials(rnd RandomSource, cfg models.ExperimentConfig) ([]models.Trial, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	roles := make([]models.Role, 0, cfg.TrialCount())
	for i := 0; i < cfg.ProposerCount; i++ {
		roles = append(roles, models.RoleProposer)
	}
	for i := 0; i < cfg.ResponderCount; i++ {
		roles = append(roles, models.RoleResponder)
	}
	rnd.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	aiTypes := models.AITypes()
	frames := models.FrameTypes()

	trials := make([]models.Trial, 0, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			panic(fmt.Sprintf("game: unexpected role %q", role))
		}
		if role == models.RoleProposer {
			trials = append(trials, models.Trial{
				Role:   models.RoleProposer,
				AIType: aiTypes[rnd.IntN(len(aiTypes))],
			})
			continue
		}
		trials = append(trials, responderTrial(rnd, frames[rnd.IntN(len(frames))], cfg.TotalAmount))
	}
	return trials, nil
}

func responderTrial(rnd RandomSource, frame models.FrameType, total int) models.Trial {
	if !frame.Valid() {
		panic(fmt.Sprintf("game: unexpected frame %q", frame))
	}
	t := models.Trial{Role: models.RoleResponder, FrameType: frame}
	if frame == models.FrameDirect {
		t.Offer = directOffers[rnd.IntN(len(directOffers))]
	} else {
		t.ProposerPct = indirectProposerPct[rnd.IntN(len(indirectProposerPct))]
		t.Offer = IndirectOffer(total, t.ProposerPct)
	}
	if t.Offer < 0 || t.Offer > total {
		panic(fmt.Sprintf("game: responder offer %d outside [0, %d]", t.Offer, total))
	}
	return t
}

// IndirectOffer вычисляет долю отвечающего по проценту, который оставляет себе предлагающий.
// Доля предлагающего округляется вниз.
func IndirectOffer(total, proposerPct int) int {
	return total - total*proposerPct/100
}
