package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/celengan/internal/common"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Database   DatabaseConfig
	Engine     EngineConfig
	Classifier ClassifierConfig
	Parser     ParserConfig
	Sweep      SweepConfig
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// EngineConfig tunes the dialogue engine.
type EngineConfig struct {
	Language          string
	MaxTurns          int
	MaxUnrelatedTurns int
	PendingTTL        time.Duration
	SnapshotTTL       time.Duration
	CommitRetryDelay  time.Duration
}

// ClassifierConfig selects and configures the classification backend.
type ClassifierConfig struct {
	Backend   string
	Endpoint  string
	APIKey    string
	Model     string
	Threshold float64
	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit int
}

// ParserConfig configures amount and entity extraction.
type ParserConfig struct {
	VocabularyFile string
	Pick           string
	MinBareAmount  int64
}

// SweepConfig schedules the external expiry sweep.
type SweepConfig struct {
	Schedule string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Path: "$HOME/.local/share/celengan/celengan.db",
		},
		Engine: EngineConfig{
			Language:          "id",
			MaxTurns:          20,
			MaxUnrelatedTurns: 3,
			PendingTTL:        15 * time.Minute,
			SnapshotTTL:       10 * time.Minute,
			CommitRetryDelay:  200 * time.Millisecond,
		},
		Classifier: ClassifierConfig{
			Backend:   "rules",
			Model:     "gemini-2.5-flash",
			Threshold: 0.3,
			Timeout:   2500 * time.Millisecond,
			CacheTTL:  5 * time.Minute,
			RateLimit: 120,
		},
		Parser: ParserConfig{
			Pick:          "last",
			MinBareAmount: 100,
		},
		Sweep: SweepConfig{
			Schedule: "@every 1m",
		},
	}
}

// SetDefaults registers every default with v so config files and
// CELENGAN_* environment variables only need to override what differs.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("engine.language", d.Engine.Language)
	v.SetDefault("engine.max_turns", d.Engine.MaxTurns)
	v.SetDefault("engine.max_unrelated_turns", d.Engine.MaxUnrelatedTurns)
	v.SetDefault("engine.pending_ttl", d.Engine.PendingTTL)
	v.SetDefault("engine.snapshot_ttl", d.Engine.SnapshotTTL)
	v.SetDefault("engine.commit_retry_delay", d.Engine.CommitRetryDelay)
	v.SetDefault("classifier.backend", d.Classifier.Backend)
	v.SetDefault("classifier.model", d.Classifier.Model)
	v.SetDefault("classifier.threshold", d.Classifier.Threshold)
	v.SetDefault("classifier.timeout", d.Classifier.Timeout)
	v.SetDefault("classifier.cache_ttl", d.Classifier.CacheTTL)
	v.SetDefault("classifier.rate_limit", d.Classifier.RateLimit)
	v.SetDefault("parser.pick", d.Parser.Pick)
	v.SetDefault("parser.min_bare_amount", d.Parser.MinBareAmount)
	v.SetDefault("sweep.schedule", d.Sweep.Schedule)
}

// Load reads the configuration from v. Secrets fall back to the usual
// environment variables when the config file does not set them.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Engine: EngineConfig{
			Language:          v.GetString("engine.language"),
			MaxTurns:          v.GetInt("engine.max_turns"),
			MaxUnrelatedTurns: v.GetInt("engine.max_unrelated_turns"),
			PendingTTL:        v.GetDuration("engine.pending_ttl"),
			SnapshotTTL:       v.GetDuration("engine.snapshot_ttl"),
			CommitRetryDelay:  v.GetDuration("engine.commit_retry_delay"),
		},
		Classifier: ClassifierConfig{
			Backend:   v.GetString("classifier.backend"),
			Endpoint:  v.GetString("classifier.endpoint"),
			APIKey:    v.GetString("classifier.api_key"),
			Model:     v.GetString("classifier.model"),
			Threshold: v.GetFloat64("classifier.threshold"),
			Timeout:   v.GetDuration("classifier.timeout"),
			CacheTTL:  v.GetDuration("classifier.cache_ttl"),
			RateLimit: v.GetInt("classifier.rate_limit"),
		},
		Parser: ParserConfig{
			VocabularyFile: ExpandPath(v.GetString("parser.vocabulary_file")),
			Pick:           v.GetString("parser.pick"),
			MinBareAmount:  v.GetInt64("parser.min_bare_amount"),
		},
		Sweep: SweepConfig{
			Schedule: v.GetString("sweep.schedule"),
		},
	}

	if cfg.Classifier.APIKey == "" {
		switch cfg.Classifier.Backend {
		case "gemini":
			cfg.Classifier.APIKey = os.Getenv("GEMINI_API_KEY")
			if cfg.Classifier.APIKey == "" {
				cfg.Classifier.APIKey = os.Getenv("GOOGLE_API_KEY")
			}
		case "http":
			cfg.Classifier.APIKey = os.Getenv("CELENGAN_CLASSIFIER_TOKEN")
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Engine.MaxTurns <= 0 {
		return fmt.Errorf("%w: engine.max_turns must be positive", common.ErrInvalidConfig)
	}
	if c.Engine.MaxUnrelatedTurns <= 0 {
		return fmt.Errorf("%w: engine.max_unrelated_turns must be positive", common.ErrInvalidConfig)
	}
	if c.Engine.PendingTTL <= 0 {
		return fmt.Errorf("%w: engine.pending_ttl must be positive", common.ErrInvalidConfig)
	}
	if c.Classifier.Threshold < 0 || c.Classifier.Threshold > 1 {
		return fmt.Errorf("%w: classifier.threshold must be between 0 and 1", common.ErrInvalidConfig)
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("%w: classifier.timeout must be positive", common.ErrInvalidConfig)
	}

	switch c.Classifier.Backend {
	case "rules":
	case "http":
		if c.Classifier.Endpoint == "" {
			return fmt.Errorf("%w: classifier.endpoint is required for the http backend", common.ErrMissingConfig)
		}
	case "gemini":
		if c.Classifier.APIKey == "" {
			return fmt.Errorf("%w: classifier.api_key (or GEMINI_API_KEY) is required for the gemini backend", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown classifier backend %q", common.ErrInvalidConfig, c.Classifier.Backend)
	}

	switch c.Parser.Pick {
	case "last", "first", "largest":
	default:
		return fmt.Errorf("%w: parser.pick must be last, first or largest", common.ErrInvalidConfig)
	}

	return nil
}
