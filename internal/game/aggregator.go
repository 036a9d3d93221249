package game

import (
	"math"

	"ultimatum-server/internal/models"
)

// Границы сумм, по которым считаются поведенческие черты.
const (
	lowOfferLimit    = 20000 // предложения ниже: эксплуатация (для предлагающего)
	fairOfferLimit   = 50000 // от этой суммы, избегание риска / "щедрое" предложение
	punishOfferLimit = 20000 // включительно: "несправедливое" предложение для отвечающего
)

// Summarize считает сводку поведенческих черт по всем записям сессии.
// Чистая функция: на одном и том же наборе записей всегда дает одинаковый результат.
func Summarize(records []models.TrialRecord) models.TraitSummary {
	var (
		proposerOffers          []int
		lowTotal, lowRejected   int
		midTotal, midRejected   int
		highTotal, highRejected int
		responderTrials         int
	)

	for _, r := range records {
		switch r.Role {
		case models.RoleProposer:
			proposerOffers = append(proposerOffers, r.Offer)
		case models.RoleResponder:
			responderTrials++
			rejected := r.Response == models.ResponseReject
			switch {
			case r.Offer <= punishOfferLimit:
				lowTotal++
				if rejected {
					lowRejected++
				}
			case r.Offer < fairOfferLimit:
				midTotal++
				if rejected {
					midRejected++
				}
			default:
				highTotal++
				if rejected {
					highRejected++
				}
			}
		}
	}

	exploit, riskAverse := 0, 0
	for _, offer := range proposerOffers {
		if offer < lowOfferLimit {
			exploit++
		}
		if offer >= fairOfferLimit {
			riskAverse++
		}
	}

	return models.TraitSummary{
		ExploitRatio:    ratio(exploit, len(proposerOffers)),
		ExploreStd:      populationStd(proposerOffers),
		RiskAverseRatio: ratio(riskAverse, len(proposerOffers)),
		PunishmentRate:  ratio(lowRejected, lowTotal),
		LossAversion:    ratio(midRejected, midTotal),
		IgnoreBenefit:   ratio(highRejected, highTotal),
		ProposerTrials:  len(proposerOffers),
		ResponderTrials: responderTrials,
	}
}

func ratio(matching, total int) models.Metric {
	if total == 0 {
		return models.Undefined()
	}
	return models.Metric{
		Value:      float64(matching) / float64(total),
		Calculated: true,
		SampleSize: total,
	}
}

// populationStd: стандартное отклонение генеральной совокупности (деление на n).
func populationStd(values []int) models.Metric {
	if len(values) == 0 {
		return models.Undefined()
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	return models.Metric{
		Value:      math.Sqrt(sq / float64(len(values))),
		Calculated: true,
		SampleSize: len(values),
	}
}
