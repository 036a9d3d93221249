package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecretFrom(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("  s3cret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("\n"), 0o600))

	secret, err := ReadSecretFrom(dir, "db_password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)

	_, err = ReadSecretFrom(dir, "empty")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSecretNotFound)

	_, err = ReadSecretFrom(dir, "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestReadOptionalSecret(t *testing.T) {
	dir := t.TempDir()

	secret, err := ReadOptionalSecret(dir, "gsheet_credentials")
	require.NoError(t, err)
	assert.Empty(t, secret)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gsheet_credentials"), []byte(`{"type":"service_account"}`), 0o600))
	secret, err = ReadOptionalSecret(dir, "gsheet_credentials")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, secret)
}
