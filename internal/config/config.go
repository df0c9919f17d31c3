package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Matching  MatchingConfig  `yaml:"matching"`
	Cache     CacheConfig     `yaml:"cache"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings. The browser extension calls the API
// cross-origin, so the defaults are permissive.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,POST,OPTIONS"`
	AllowedHeaders string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Authorization,Content-Type"`
	MaxAge         int    `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN               string        `yaml:"dsn"                 env:"DATABASE_DSN"                 env-required:"true"`
	MaxConns          int32         `yaml:"max_conns"           env:"DATABASE_MAX_CONNS"           env-default:"25"`
	MinConns          int32         `yaml:"min_conns"           env:"DATABASE_MIN_CONNS"           env-default:"2"`
	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime"   env:"DATABASE_MAX_CONN_LIFETIME"   env-default:"1h"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time"  env:"DATABASE_MAX_CONN_IDLE_TIME"  env-default:"30m"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" env:"DATABASE_HEALTH_CHECK_PERIOD" env-default:"1m"`
}

// AuthConfig holds reviewer token settings. An empty JWTSecret disables
// reviewer authentication on the feedback resolve/ignore endpoints.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"wh40k-terms"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"AUTH_TOKEN_TTL"  env-default:"720h"`
}

// Enabled reports whether reviewer tokens are required.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// MatchingConfig holds the confidence thresholds used by the resolver.
// The six named thresholds are tunable per deployment.
type MatchingConfig struct {
	FuzzyHigh              float64 `yaml:"fuzzy_high"               env:"MATCH_FUZZY_HIGH"               env-default:"0.75"`
	FuzzyMedium            float64 `yaml:"fuzzy_medium"             env:"MATCH_FUZZY_MEDIUM"             env-default:"0.70"`
	FuzzyLow               float64 `yaml:"fuzzy_low"                env:"MATCH_FUZZY_LOW"                env-default:"0.60"`
	PhoneticHigh           float64 `yaml:"phonetic_high"            env:"MATCH_PHONETIC_HIGH"            env-default:"0.5"`
	PhoneticLow            float64 `yaml:"phonetic_low"             env:"MATCH_PHONETIC_LOW"             env-default:"0.4"`
	Categorization         float64 `yaml:"categorization"           env:"MATCH_CATEGORIZATION"           env-default:"0.8"`
	PhoneticBonus          float64 `yaml:"phonetic_bonus"           env:"MATCH_PHONETIC_BONUS"           env-default:"0.15"`
	FactionHintBoost       float64 `yaml:"faction_hint_boost"       env:"MATCH_FACTION_HINT_BOOST"       env-default:"0.2"`
	ContextBoost           float64 `yaml:"context_boost"            env:"MATCH_CONTEXT_BOOST"            env-default:"0.15"`
	ResolveFloor           float64 `yaml:"resolve_floor"            env:"MATCH_RESOLVE_FLOOR"            env-default:"0.4"`
	MaxBatchTerms          int     `yaml:"max_batch_terms"          env:"MATCH_MAX_BATCH_TERMS"          env-default:"50"`
	BatchConcurrency       int     `yaml:"batch_concurrency"        env:"MATCH_BATCH_CONCURRENCY"        env-default:"8"`
	ParallelScoreThreshold int     `yaml:"parallel_score_threshold" env:"MATCH_PARALLEL_SCORE_THRESHOLD" env-default:"2000"`
	TablesPath             string  `yaml:"tables_path"              env:"MATCH_TABLES_PATH"`
}

// CacheConfig holds Candidate Index cache settings.
type CacheConfig struct {
	CandidateTTL time.Duration `yaml:"candidate_ttl" env:"CACHE_CANDIDATE_TTL" env-default:"60s"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"CACHE_FETCH_TIMEOUT" env-default:"3s"`
}

// FeedbackConfig holds feedback store settings.
type FeedbackConfig struct {
	AutoRecord     bool          `yaml:"auto_record"     env:"FEEDBACK_AUTO_RECORD"     env-default:"false"`
	RecordTimeout  time.Duration `yaml:"record_timeout"  env:"FEEDBACK_RECORD_TIMEOUT"  env-default:"2s"`
	MaxSuggestions int           `yaml:"max_suggestions" env:"FEEDBACK_MAX_SUGGESTIONS" env-default:"5"`
	RetentionDays  int           `yaml:"retention_days"  env:"FEEDBACK_RETENTION_DAYS"  env-default:"90"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"   env-default:"600"`
	Burst             int `yaml:"burst"               env:"RATE_LIMIT_BURST" env-default:"60"`
}
