package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingCredential is returned when neither a token nor login identity is configured.
var ErrMissingCredential = errors.New("no bearer token or login credentials configured")

// Config holds runtime configuration for every command.
type Config struct {
	Auth        AuthConfig      `koanf:"auth"`
	Kickbase    KickbaseConfig  `koanf:"kickbase"`
	Collector   CollectorConfig `koanf:"collector"`
	Events      EventsConfig    `koanf:"events"`
	Provider    string          `koanf:"provider"`
	FixturePath string          `koanf:"fixture_path"`
	EnvFile     string          `koanf:"env_file"`
	Port        string          `koanf:"port"`
	Metrics     MetricsConfig   `koanf:"metrics"`
	Log         LogConfig       `koanf:"log"`
}

// AuthConfig carries the credential inputs. Token wins over a login exchange.
type AuthConfig struct {
	Token        string `koanf:"token"`
	Email        string `koanf:"email"`
	Password     string `koanf:"password"`
	PersistToken bool   `koanf:"persist_token"`
}

// HasToken reports whether a pre-issued bearer token is configured.
func (a AuthConfig) HasToken() bool {
	return strings.TrimSpace(a.Token) != ""
}

// CanLogin reports whether identity and secret are both configured.
func (a AuthConfig) CanLogin() bool {
	return strings.TrimSpace(a.Email) != "" && a.Password != ""
}

// KickbaseConfig controls how we talk to the Kickbase API.
type KickbaseConfig struct {
	BaseURL       string        `koanf:"base_url"`
	LeagueID      string        `koanf:"league_id"`
	CompetitionID string        `koanf:"competition_id"`
	HTTPTimeout   time.Duration `koanf:"http_timeout"`
}

// CollectorConfig controls the incremental player collection run.
type CollectorConfig struct {
	RosterPath      string        `koanf:"roster_path"`
	OutputPath      string        `koanf:"output_path"`
	CheckpointEvery int           `koanf:"checkpoint_every"`
	DelayMin        time.Duration `koanf:"delay_min"`
	DelayMax        time.Duration `koanf:"delay_max"`
	Cooldown        time.Duration `koanf:"cooldown"`
	Resume          bool          `koanf:"resume"`
	// Interval schedules recurring collections under serve. Zero disables them.
	Interval time.Duration `koanf:"interval"`
}

// EventsConfig controls the per-day event pipeline.
type EventsConfig struct {
	DataDir        string `koanf:"data_dir"`
	CategoriesPath string `koanf:"categories_path"`
}

// LogConfig selects level and handler format.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// New returns a Config populated with defaults only.
func New() Config {
	return Config{
		Kickbase: KickbaseConfig{
			BaseURL:       defaultBaseURL,
			CompetitionID: defaultCompetitionID,
			HTTPTimeout:   defaultHTTPTimeout,
		},
		Collector: CollectorConfig{
			RosterPath:      defaultRosterPath,
			OutputPath:      defaultOutputPath,
			CheckpointEvery: defaultCheckpointEvery,
			DelayMin:        defaultDelayMin,
			DelayMax:        defaultDelayMax,
			Cooldown:        defaultCooldown,
		},
		Events: EventsConfig{
			DataDir: defaultDataDir,
		},
		Provider: defaultProvider,
		EnvFile:  defaultEnvFile,
		Port:     defaultPort,
		Metrics: MetricsConfig{
			Enabled:      true,
			Port:         defaultMetricsPort,
			ServiceName:  defaultServiceName,
			OtlpInsecure: true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// RequireCredential fails with ErrMissingCredential when no auth strategy is usable.
func (c Config) RequireCredential() error {
	if c.Auth.HasToken() || c.Auth.CanLogin() {
		return nil
	}
	return ErrMissingCredential
}

func (c *Config) normalize() error {
	c.Kickbase.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Kickbase.BaseURL), "/")
	if c.Kickbase.BaseURL == "" {
		c.Kickbase.BaseURL = defaultBaseURL
	}
	if c.Kickbase.CompetitionID == "" {
		c.Kickbase.CompetitionID = defaultCompetitionID
	}
	if c.Kickbase.HTTPTimeout <= 0 {
		c.Kickbase.HTTPTimeout = defaultHTTPTimeout
	}
	if c.Collector.CheckpointEvery <= 0 {
		c.Collector.CheckpointEvery = defaultCheckpointEvery
	}
	if c.Collector.Cooldown <= 0 {
		c.Collector.Cooldown = defaultCooldown
	}
	if c.Collector.Interval < 0 {
		c.Collector.Interval = 0
	}
	if c.Collector.DelayMin < 0 {
		c.Collector.DelayMin = 0
	}
	if c.Collector.DelayMax < c.Collector.DelayMin {
		c.Collector.DelayMax = c.Collector.DelayMin
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case "":
		c.Provider = defaultProvider
	case ProviderKickbase, ProviderFixture:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Provider == ProviderFixture && c.FixturePath == "" {
		c.FixturePath = c.Collector.OutputPath
	}
	return nil
}
