package handler

import (
	"fmt"
	"strconv"

	"ultimatum-server/internal/models"
)

// Тексты, которые видит участник.
const (
	introFormat = "당신은 총 %d회의 거래를 진행하며, 각 거래에서 %s원을 나눠 갖습니다. " +
		"제안자는 금액을 제시하고, 상대는 수락하거나 거절할 수 있습니다. " +
		"제안이 거절되면 둘 다 돈을 받지 못합니다."
	proposerTitle   = "제안자 역할"
	responderTitle  = "응답자 역할"
	offerInputLabel = "상대에게 제안할 금액"
	emotionQuestion = "지금 기분은 어땠나요?"
	dealFailedText  = "거래 결렬. 아무도 돈을 받지 못했습니다."
	finishedText    = "실험이 완료되었습니다. 감사합니다!"
)

// formatWon форматирует сумму с разделителями тысяч: 50000 -> "50,000".
func formatWon(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func introText(cfg models.ExperimentConfig) string {
	return fmt.Sprintf(introFormat, cfg.TrialCount(), formatWon(cfg.TotalAmount))
}

func roleTitle(r models.Role) string {
	switch r {
	case models.RoleProposer:
		return proposerTitle
	case models.RoleResponder:
		return responderTitle
	}
	return string(r)
}

// responderPromptText описывает предложение в выбранной подаче.
func responderPromptText(t models.Trial, total int) string {
	switch t.FrameType {
	case models.FrameDirect:
		return fmt.Sprintf("상대가 당신에게 %s원을 제시했습니다.", formatWon(t.Offer))
	case models.FrameIndirect:
		return fmt.Sprintf("상대가 자신이 %s원을 갖겠다고 제시했습니다.", formatWon(t.ProposerKeeps(total)))
	}
	return ""
}

func proposerPromptText(ai models.AIType) string {
	return fmt.Sprintf("%s에게 %s", ai.Label(), offerInputLabel)
}

// dealText: сообщение об исходе раунда с точки зрения участника.
func dealText(participantReward, opponentReward int) string {
	return fmt.Sprintf("거래 성사! 당신: %s원 / 상대: %s원", formatWon(participantReward), formatWon(opponentReward))
}
