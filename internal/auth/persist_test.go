package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistTokenRewritesOnlyTokenLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	original := "# credentials\nKICKBASE_EMAIL=me@example.com\nBEARER_TOKEN=old\n\nLEAGUE_ID=5378755\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o640))

	require.NoError(t, PersistToken(path, "new-token"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# credentials\nKICKBASE_EMAIL=me@example.com\nBEARER_TOKEN=\"new-token\"\n\nLEAGUE_ID=5378755\n", string(data))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "new-token", env[TokenKey])
	assert.Equal(t, "5378755", env["LEAGUE_ID"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestPersistTokenAppendsWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEAGUE_ID=1"), 0o600))

	require.NoError(t, PersistToken(path, "abc"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LEAGUE_ID=1\nBEARER_TOKEN=\"abc\"\n", string(data))
}

func TestPersistTokenCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, PersistToken(path, "abc"))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{TokenKey: "abc"}, env)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPersistTokenRequiresPath(t *testing.T) {
	assert.Error(t, PersistToken("", "abc"))
}

func TestIsTokenLine(t *testing.T) {
	assert.True(t, isTokenLine("BEARER_TOKEN=x"))
	assert.True(t, isTokenLine("  export BEARER_TOKEN = x\r"))
	assert.False(t, isTokenLine("BEARER_TOKEN_OLD=x"))
	assert.False(t, isTokenLine("# BEARER_TOKEN=x"))
	assert.False(t, isTokenLine(""))
}
