package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/providers"
	"github.com/preston-bernstein/kickbase-collector/internal/providers/kickbase"
)

type stubLoginer struct {
	result kickbase.LoginResult
	err    error
	calls  int
	email  string
}

func (s *stubLoginer) Login(ctx context.Context, email, password string) (kickbase.LoginResult, error) {
	s.calls++
	s.email = email
	return s.result, s.err
}

func TestObtainPrefersConfiguredToken(t *testing.T) {
	loginer := &stubLoginer{}
	p := NewProvider(config.AuthConfig{Token: " tok ", Email: "me@example.com", Password: "pw"}, "", loginer, nil)

	cred, err := p.Obtain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.Token)
	assert.Equal(t, SourceConfig, cred.Source)
	assert.Zero(t, loginer.calls)
}

func TestObtainFallsBackToLogin(t *testing.T) {
	expires := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	loginer := &stubLoginer{result: kickbase.LoginResult{Token: "fresh", ExpiresAt: expires}}
	p := NewProvider(config.AuthConfig{Email: " me@example.com ", Password: "pw"}, "", loginer, nil)

	cred, err := p.Obtain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credential{Token: "fresh", ExpiresAt: expires, Source: SourceLogin}, cred)
	assert.Equal(t, "me@example.com", loginer.email)
}

func TestObtainPersistsTokenWhenConfigured(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("KICKBASE_EMAIL=me@example.com\n"), 0o600))

	loginer := &stubLoginer{result: kickbase.LoginResult{Token: "fresh"}}
	p := NewProvider(config.AuthConfig{Email: "me@example.com", Password: "pw", PersistToken: true}, envFile, loginer, nil)

	cred, err := p.Obtain(context.Background())
	require.NoError(t, err)
	assert.True(t, cred.Persisted)

	env, err := godotenv.Read(envFile)
	require.NoError(t, err)
	assert.Equal(t, "fresh", env[TokenKey])
	assert.Equal(t, "me@example.com", env["KICKBASE_EMAIL"])
}

func TestLoginReportsFailedPersist(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "missing", ".env")
	loginer := &stubLoginer{result: kickbase.LoginResult{Token: "fresh"}}
	p := NewProvider(config.AuthConfig{Email: "me@example.com", Password: "pw"}, envFile, loginer, nil)

	cred, err := p.Login(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "fresh", cred.Token)
	assert.False(t, cred.Persisted)
	assert.NoFileExists(t, envFile)

	cred, err = p.Login(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, cred.Persisted)
}

func TestObtainWithoutCredentialsIsAuthError(t *testing.T) {
	p := NewProvider(config.AuthConfig{}, "", nil, nil)

	_, err := p.Obtain(context.Background())
	assert.True(t, providers.IsAuth(err))
	assert.ErrorIs(t, err, config.ErrMissingCredential)
}

func TestLoginFailuresBecomeAuthErrors(t *testing.T) {
	rejected := &providers.AuthError{StatusCode: 401, Message: "login rejected"}
	p := NewProvider(config.AuthConfig{Email: "a", Password: "b"}, "", &stubLoginer{err: rejected}, nil)
	_, err := p.Obtain(context.Background())
	assert.Same(t, rejected, err)

	network := errors.New("dial tcp: refused")
	p = NewProvider(config.AuthConfig{Email: "a", Password: "b"}, "", &stubLoginer{err: network}, nil)
	_, err = p.Obtain(context.Background())
	assert.True(t, providers.IsAuth(err))
	assert.ErrorIs(t, err, network)
}

func TestCredentialRedacted(t *testing.T) {
	assert.Equal(t, "****", Credential{Token: "short"}.Redacted())
	assert.Equal(t, "abcd****wxyz", Credential{Token: "abcdefghijklmnopqrstuvwxyz"}.Redacted())
}
