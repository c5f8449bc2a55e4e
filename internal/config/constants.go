package config

import "time"

const (
	envConfigFile = "KICKBASE_CONFIG"
	envEnvFile    = "KICKBASE_ENV_FILE"

	defaultEnvFile = ".env"

	defaultBaseURL       = "https://api.kickbase.com/v4"
	defaultCompetitionID = "1"
	defaultHTTPTimeout   = 30 * time.Second

	defaultRosterPath      = "all_players.json"
	defaultOutputPath      = "detailed_players.json"
	defaultCheckpointEvery = 10
	defaultDelayMin        = 10 * time.Millisecond
	defaultDelayMax        = 100 * time.Millisecond
	// Upstream answers 429 for roughly a minute once the quota is exhausted.
	defaultCooldown = 60 * time.Second

	defaultDataDir = "data"

	defaultProvider    = ProviderKickbase
	defaultPort        = "4000"
	defaultMetricsPort = "9090"
	defaultServiceName = "kickbase-collector"
)

// Provider names accepted by KICKBASE_PROVIDER.
const (
	ProviderKickbase = "kickbase"
	ProviderFixture  = "fixture"
)

// envKeys maps recognized environment variables onto koanf paths.
var envKeys = map[string]string{
	"BEARER_TOKEN":      "auth.token",
	"KICKBASE_EMAIL":    "auth.email",
	"KICKBASE_PASSWORD": "auth.password",

	"KICKBASE_PERSIST_TOKEN": "auth.persist_token",

	"KICKBASE_BASE_URL":       "kickbase.base_url",
	"KICKBASE_LEAGUE_ID":      "kickbase.league_id",
	"KICKBASE_COMPETITION_ID": "kickbase.competition_id",
	"KICKBASE_HTTP_TIMEOUT":   "kickbase.http_timeout",

	"KICKBASE_ROSTER_PATH":      "collector.roster_path",
	"KICKBASE_OUTPUT_PATH":      "collector.output_path",
	"KICKBASE_CHECKPOINT_EVERY": "collector.checkpoint_every",
	"KICKBASE_DELAY_MIN":        "collector.delay_min",
	"KICKBASE_DELAY_MAX":        "collector.delay_max",
	"KICKBASE_COOLDOWN":         "collector.cooldown",
	"KICKBASE_RESUME":           "collector.resume",
	"KICKBASE_COLLECT_INTERVAL": "collector.interval",

	"KICKBASE_DATA_DIR":        "events.data_dir",
	"KICKBASE_CATEGORIES_PATH": "events.categories_path",
	"KICKBASE_PROVIDER":        "provider",
	"KICKBASE_FIXTURE_PATH":    "fixture_path",
	"KICKBASE_ENV_FILE":        "env_file",
	"PORT":                     "port",

	"METRICS_ENABLED":             "metrics.enabled",
	"METRICS_PORT":                "metrics.port",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "metrics.otlp_endpoint",
	"OTEL_SERVICE_NAME":           "metrics.service_name",
	"OTEL_EXPORTER_OTLP_INSECURE": "metrics.otlp_insecure",

	"LOG_LEVEL":  "log.level",
	"LOG_FORMAT": "log.format",
}

var (
	durationKeys = []string{
		"kickbase.http_timeout",
		"collector.delay_min",
		"collector.delay_max",
		"collector.cooldown",
		"collector.interval",
	}
	positiveIntKeys = []string{"collector.checkpoint_every"}
	boolKeys        = []string{
		"auth.persist_token",
		"collector.resume",
		"metrics.enabled",
		"metrics.otlp_insecure",
	}
)
