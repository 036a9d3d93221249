package game

import (
	"fmt"

	"ultimatum-server/internal/models"
)

// Decision: решение симулируемого соперника по предложению участника.
type Decision struct {
	Accepted          bool
	AcceptProbability float64
}

// AcceptProbability возвращает вероятность согласия соперника.
// offer: сумма, которую участник отдает сопернику.
func AcceptProbability(ai models.AIType, offer int) float64 {
	switch ai {
	case models.AILenient:
		switch {
		case offer >= 40000:
			return 1.0
		case offer >= 20000:
			return 0.6
		default:
			return 0.2
		}
	case models.AIStrict:
		switch {
		case offer >= 50000:
			return 1.0
		case offer >= 30000:
			return 0.5
		default:
			return 0.1
		}
	}
	panic(fmt.Sprintf("game: unexpected ai type %q", ai))
}

// Decide разыгрывает согласие соперника.
func Decide(rnd RandomSource, ai models.AIType, offer int) Decision {
	p := AcceptProbability(ai, offer)
	return Decision{
		Accepted:          rnd.Float64() < p,
		AcceptProbability: p,
	}
}

// exploreThreshold: минимальная разница с прошлым предложением, считающаяся поиском.
const exploreThreshold = 10000

// ClassifyStrategy сравнивает предложение с последним предыдущим предложением
// тому же типу соперника. prior не должен включать текущее предложение.
func ClassifyStrategy(prior []int, offer int) models.Strategy {
	if len(prior) == 0 {
		return models.StrategyFirstOffer
	}
	diff := offer - prior[len(prior)-1]
	if diff < 0 {
		diff = -diff
	}
	if diff >= exploreThreshold {
		return models.StrategyExplore
	}
	return models.StrategyExploit
}

// ClassifyRisk: чистая функция суммы предложения, не зависит от типа соперника.
func ClassifyRisk(offer int) models.RiskLevel {
	switch {
	case offer >= 50000:
		return models.RiskVeryLow
	case offer >= 40000:
		return models.RiskLow
	case offer >= 20000:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
