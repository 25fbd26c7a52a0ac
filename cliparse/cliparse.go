package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseRedis    = "redis"
)

// Weight rules
const (
	RuleTiered = "tiered"
	RuleGated  = "gated"
)

type Config struct {
	Port         int    `toml:"port"`
	DatabaseURL  string `toml:"database_url"`
	DatabaseType string `toml:"database_type"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	LogSalt      string `toml:"log_salt"`
	Currency     string `toml:"currency"`

	// Path of the TOML file the config was read from, if any
	ConfigPath string `toml:"-"`

	Voting     VotingConfig     `toml:"voting"`
	Refresh    RefreshConfig    `toml:"refresh"`
	Simulation SimulationConfig `toml:"simulation"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Export     ExportConfig     `toml:"export"`
}

type VotingConfig struct {
	WeightRule    string  `toml:"weight_rule"`
	MinDonation   float64 `toml:"min_donation"`
	AllowDeletion bool    `toml:"allow_deletion"`
	SeedSamples   bool    `toml:"seed_samples"`
}

type RefreshConfig struct {
	Interval Duration `toml:"interval"`
}

type SimulationConfig struct {
	Enabled     bool     `toml:"enabled"`
	MinInterval Duration `toml:"min_interval"`
	MaxInterval Duration `toml:"max_interval"`
}

// RedisConfig is used for the event bus, and for storage when DatabaseType is redis.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

type ExportConfig struct {
	IncludeWeight   bool     `toml:"include_weight"`
	ArchivePrefix   string   `toml:"archive_prefix"`
	ArchiveInterval Duration `toml:"archive_interval"`
}

// ParseFlags builds the configuration from defaults, an optional TOML file,
// environment variables, and finally command line flags.
func ParseFlags(args []string) (Config, error) {
	cfg := Defaults()

	var (
		port       int
		dbURL      string
		dbType     string
		configPath string
		logLevel   string
	)

	fs := flag.NewFlagSet("livepoll", flag.ContinueOnError)

	fs.IntVar(&port, "p", 0, "Server port")
	fs.StringVar(&dbURL, "d", "", "Database URL")
	fs.StringVar(&dbType, "t", "", "Database type (sqlite, postgres or redis)")
	fs.StringVar(&configPath, "c", "", "Path to TOML config file")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// .env is optional
	_ = godotenv.Load()

	if configPath == "" {
		configPath = os.Getenv("LIVEPOLL_CONFIG")
	}
	if configPath != "" {
		if err := LoadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
		cfg.ConfigPath = configPath
	}

	// Fall back to environment variables
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, errors.New("invalid PORT env variable")
		}
		cfg.Port = p
	}
	setStr(&cfg.DatabaseURL, "DATABASE_URL")
	setStr(&cfg.DatabaseType, "DATABASE_TYPE")
	applyEnvOverrides(&cfg)

	// CLI flags win over everything else
	if port != 0 {
		cfg.Port = port
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if dbType != "" {
		cfg.DatabaseType = dbType
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if cfg.DatabaseType == DatabaseSQLite && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "livepoll.db"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
