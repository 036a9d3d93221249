package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ultimatum-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func finishedSession() *models.Session {
	accepted := true
	finished := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	return &models.Session{
		ID:            uuid.MustParse("6f1c2d3e-4b5a-4c6d-8e7f-901234567890"),
		ParticipantID: "홍길동1234",
		Config:        models.ExperimentConfig{TotalAmount: 100000, ProposerCount: 1, ResponderCount: 1},
		State:         models.StateDone,
		Records: []models.TrialRecord{
			{TrialNumber: 1, Role: models.RoleProposer, Offer: 50000, Emotion: models.EmotionJoy, AIType: models.AIStrict, Accepted: &accepted, ProposerReward: 50000, ResponderReward: 50000},
			{TrialNumber: 2, Role: models.RoleResponder, Offer: 10000, Emotion: models.EmotionAnger, Response: models.ResponseReject, FrameType: models.FrameDirect},
		},
		Summary:    &models.TraitSummary{ProposerTrials: 1, ResponderTrials: 1},
		CreatedAt:  finished.Add(-30 * time.Minute),
		FinishedAt: &finished,
	}
}

func TestBuild_RequiresDone(t *testing.T) {
	s := finishedSession()
	s.State = models.StateRunning

	_, err := Build(s)
	assert.ErrorIs(t, err, models.ErrSessionNotFinished)
}

func TestBuild_PreservesOrderAndEmotion(t *testing.T) {
	doc, err := Build(finishedSession())
	require.NoError(t, err)

	raw, err := doc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "홍길동1234", "korean text is not escaped")
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \""))

	var decoded struct {
		Records []map[string]any `json:"records"`
		Summary map[string]any   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Records, 2)
	for i, rec := range decoded.Records {
		assert.Equal(t, float64(i+1), rec["trial"])
		_, ok := rec["emotion"]
		assert.True(t, ok, "emotion is always present")
	}
	assert.NotNil(t, decoded.Summary)
}

func TestBuild_CopiesRecords(t *testing.T) {
	s := finishedSession()
	doc, err := Build(s)
	require.NoError(t, err)

	doc.Records[0].Offer = 1
	assert.Equal(t, 50000, s.Records[0].Offer)
}

func TestArchive_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	a, err := NewArchive(dir, zap.NewNop())
	require.NoError(t, err)
	a.now = func() time.Time { return time.UnixMilli(1714559400123) }

	doc, err := Build(finishedSession())
	require.NoError(t, err)

	path, err := a.Save(doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "result_1714559400123.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc.SessionID, back.SessionID)
	assert.Len(t, back.Records, 2)

	// Тот же момент времени не перезаписывает первый файл.
	second, err := a.Save(doc)
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
	assert.Contains(t, filepath.Base(second), doc.SessionID)
}

func TestNewArchive_EmptyDir(t *testing.T) {
	_, err := NewArchive("", zap.NewNop())
	assert.Error(t, err)
}
