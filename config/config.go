package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	ShiftAssignor ShiftAssignorConfig `yaml:"shift_assignor"`
	Defaults      DefaultsConfig      `yaml:"defaults"`
	Auth          AuthConfig          `yaml:"auth"`
	Media         MediaConfig         `yaml:"media"`
	Push          PushConfig          `yaml:"push"`
	WorkerPool    WorkerPoolConfig    `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ShiftAssignorConfig holds the configuration for the background shift sweep.
type ShiftAssignorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalMinutes int           `yaml:"interval_minutes"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	LookbackHours   int           `yaml:"lookback_hours"`
}

// DefaultsConfig names entities that are resolved once at startup
// instead of being hardcoded at call sites.
type DefaultsConfig struct {
	Department string `yaml:"department"`
}

// AuthConfig holds JWT signing configuration.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTLHours int           `yaml:"token_ttl_hours"`
	TokenTTL      time.Duration `yaml:"-"` // Ignored by YAML parser
}

// MediaConfig locates the file store holding uploaded and reference images.
type MediaConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.ShiftAssignor.IntervalMinutes <= 0 {
		cfg.ShiftAssignor.IntervalMinutes = 5
	}
	cfg.ShiftAssignor.Interval = time.Duration(cfg.ShiftAssignor.IntervalMinutes) * time.Minute

	if cfg.ShiftAssignor.LookbackHours <= 0 {
		cfg.ShiftAssignor.LookbackHours = 24
	}

	if cfg.Defaults.Department == "" {
		cfg.Defaults.Department = "Production"
	}

	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	if cfg.Media.BaseDir == "" {
		cfg.Media.BaseDir = "."
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
