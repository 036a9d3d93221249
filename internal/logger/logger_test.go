package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONWithLevel(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "warn", Encoding: "yaml", OutputPath: out, Service: "ultimatum-test"})
	require.NoError(t, err)

	log.Info("skipped")
	log.Warn("Result sink failed")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Result sink failed", entry["msg"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "caller")
	assert.Equal(t, "ultimatum-test", entry["service"])
}

func TestNew_DefaultServiceField(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{OutputPath: out})
	require.NoError(t, err)

	log.Info("Session created", Participant("홍길동1234"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, DefaultService, entry["service"])
	assert.Equal(t, "홍***1234", entry["participantID"])
	assert.NotContains(t, string(data), "홍길동")
}

func TestMaskParticipant(t *testing.T) {
	assert.Equal(t, "k***0000", MaskParticipant("kim0000"))
	assert.Equal(t, "a***1234", MaskParticipant("a1234"))
	assert.Equal(t, "****", MaskParticipant("1234"))
	assert.Equal(t, "", MaskParticipant(""))
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", OutputPath: filepath.Join(t.TempDir(), "app.log")})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(0))
	assert.False(t, log.Core().Enabled(-1))
}
