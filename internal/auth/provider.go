package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/providers"
	"github.com/preston-bernstein/kickbase-collector/internal/providers/kickbase"
)

// Loginer performs the identity/secret exchange.
type Loginer interface {
	Login(ctx context.Context, email, password string) (kickbase.LoginResult, error)
}

// Provider picks the cheapest available strategy: a configured token first,
// then a login exchange.
type Provider struct {
	cfg     config.AuthConfig
	envFile string
	loginer Loginer
	logger  *slog.Logger
}

// NewProvider builds a credential provider. envFile is where a freshly issued
// token is persisted when cfg.PersistToken is set.
func NewProvider(cfg config.AuthConfig, envFile string, loginer Loginer, logger *slog.Logger) *Provider {
	return &Provider{cfg: cfg, envFile: envFile, loginer: loginer, logger: logger}
}

// Obtain returns a credential or an *providers.AuthError.
func (p *Provider) Obtain(ctx context.Context) (Credential, error) {
	if p.cfg.HasToken() {
		return Credential{Token: strings.TrimSpace(p.cfg.Token), Source: SourceConfig}, nil
	}
	if p.cfg.CanLogin() && p.loginer != nil {
		return p.Login(ctx, p.cfg.PersistToken)
	}
	return Credential{}, &providers.AuthError{Err: config.ErrMissingCredential}
}

// Login always performs the exchange, optionally persisting the new token.
// A failed write is logged and reported through Credential.Persisted.
func (p *Provider) Login(ctx context.Context, persist bool) (Credential, error) {
	if !p.cfg.CanLogin() || p.loginer == nil {
		return Credential{}, &providers.AuthError{Err: config.ErrMissingCredential}
	}

	res, err := p.loginer.Login(ctx, strings.TrimSpace(p.cfg.Email), p.cfg.Password)
	if err != nil {
		if providers.IsAuth(err) {
			return Credential{}, err
		}
		return Credential{}, &providers.AuthError{Message: "login exchange failed: " + err.Error(), Err: err}
	}

	cred := Credential{Token: res.Token, ExpiresAt: res.ExpiresAt, Source: SourceLogin}
	logging.Info(p.logger, "login succeeded",
		slog.String("token", cred.Redacted()),
		slog.Time("expires_at", cred.ExpiresAt),
	)

	if persist {
		if err := PersistToken(p.envFile, cred.Token); err != nil {
			logging.Warn(p.logger, "failed to persist token", slog.String(logging.FieldPath, p.envFile), slog.Any("err", err))
		} else {
			cred.Persisted = true
			logging.Info(p.logger, "token persisted", slog.String(logging.FieldPath, p.envFile))
		}
	}
	return cred, nil
}
