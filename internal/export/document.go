package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"ultimatum-server/internal/models"
)

// FileName: имя файла, под которым участник скачивает результаты.
const FileName = "ultimatum_game_framing_results.json"

// Document содержит сериализуемые результаты завершенной сессии.
type Document struct {
	SessionID     string                  `json:"sessionId"`
	ParticipantID string                  `json:"participantId"`
	Config        models.ExperimentConfig `json:"config"`
	CreatedAt     time.Time               `json:"createdAt"`
	FinishedAt    *time.Time              `json:"finishedAt,omitempty"`
	Records       []models.TrialRecord    `json:"records"`
	Summary       *models.TraitSummary    `json:"summary"`
}

// Build собирает документ. Доступно только для сессии в состоянии done.
func Build(s *models.Session) (*Document, error) {
	if !s.Finished() {
		return nil, fmt.Errorf("%w: session %s is in state %s", models.ErrSessionNotFinished, s.ID, s.State)
	}
	records := make([]models.TrialRecord, len(s.Records))
	copy(records, s.Records)
	return &Document{
		SessionID:     s.ID.String(),
		ParticipantID: s.ParticipantID,
		Config:        s.Config,
		CreatedAt:     s.CreatedAt,
		FinishedAt:    s.FinishedAt,
		Records:       records,
		Summary:       s.Summary,
	}, nil
}

// Marshal сериализует документ с отступом в два пробела, корейский текст не экранируется.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("ошибка сериализации результатов: %w", err)
	}
	return buf.Bytes(), nil
}
