package cliparse

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML files can use strings like "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the configuration used when nothing overrides it.
// The vote simulation is off unless explicitly enabled.
func Defaults() Config {
	return Config{
		Port:         3318,
		DatabaseType: DatabaseSQLite,
		LogLevel:     "info",
		LogFormat:    "text",
		LogSalt:      "livepoll",
		Currency:     "Rs.",
		Voting: VotingConfig{
			WeightRule:    RuleTiered,
			AllowDeletion: true,
			SeedSamples:   true,
		},
		Refresh: RefreshConfig{
			Interval: Duration{2 * time.Second},
		},
		Simulation: SimulationConfig{
			MinInterval: Duration{3 * time.Second},
			MaxInterval: Duration{8 * time.Second},
		},
		S3: S3Config{
			Region:         "us-east-1",
			ForcePathStyle: true,
		},
		Export: ExportConfig{
			IncludeWeight: true,
			ArchivePrefix: "ledger/",
		},
	}
}

// LoadFile decodes a TOML file on top of cfg. Keys missing from the file keep
// their current values.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []string

	switch c.DatabaseType {
	case DatabaseSQLite, DatabasePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "database URL required (use -d or DATABASE_URL env)")
		}
	case DatabaseRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, "redis addr required when database type is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown database type %q (valid: sqlite, postgres, redis)", c.DatabaseType))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d", c.Port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	switch c.Voting.WeightRule {
	case RuleTiered, RuleGated:
	default:
		errs = append(errs, fmt.Sprintf("unknown weight rule %q (valid: tiered, gated)", c.Voting.WeightRule))
	}
	if c.Voting.MinDonation < 0 {
		errs = append(errs, "voting: min_donation must not be negative")
	}

	if c.Refresh.Interval.Duration <= 0 {
		errs = append(errs, "refresh: interval must be positive")
	}

	if c.Simulation.Enabled {
		if c.Simulation.MinInterval.Duration <= 0 {
			errs = append(errs, "simulation: min_interval must be positive")
		}
		if c.Simulation.MaxInterval.Duration < c.Simulation.MinInterval.Duration {
			errs = append(errs, "simulation: max_interval must not be below min_interval")
		}
	}

	if c.Export.ArchiveInterval.Duration > 0 && c.S3.Bucket == "" {
		errs = append(errs, "export: archive_interval requires an s3 bucket")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads LIVEPOLL_* variables. Each one only replaces the
// config value when it is set.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.LogLevel, "LIVEPOLL_LOG_LEVEL")
	setStr(&cfg.LogFormat, "LIVEPOLL_LOG_FORMAT")
	setStr(&cfg.LogSalt, "LIVEPOLL_LOG_SALT")
	setStr(&cfg.Currency, "LIVEPOLL_CURRENCY")

	setStr(&cfg.Voting.WeightRule, "LIVEPOLL_WEIGHT_RULE")
	setFloat64(&cfg.Voting.MinDonation, "LIVEPOLL_MIN_DONATION")
	setBool(&cfg.Voting.AllowDeletion, "LIVEPOLL_ALLOW_DELETION")
	setBool(&cfg.Voting.SeedSamples, "LIVEPOLL_SEED_SAMPLES")

	setDuration(&cfg.Refresh.Interval, "LIVEPOLL_REFRESH_INTERVAL")

	setBool(&cfg.Simulation.Enabled, "LIVEPOLL_SIMULATION_ENABLED")
	setDuration(&cfg.Simulation.MinInterval, "LIVEPOLL_SIMULATION_MIN_INTERVAL")
	setDuration(&cfg.Simulation.MaxInterval, "LIVEPOLL_SIMULATION_MAX_INTERVAL")

	setStr(&cfg.Redis.Addr, "LIVEPOLL_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "LIVEPOLL_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LIVEPOLL_REDIS_DB")

	setStr(&cfg.S3.Endpoint, "LIVEPOLL_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "LIVEPOLL_S3_REGION")
	setStr(&cfg.S3.Bucket, "LIVEPOLL_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "LIVEPOLL_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "LIVEPOLL_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "LIVEPOLL_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "LIVEPOLL_S3_FORCE_PATH_STYLE")

	setBool(&cfg.Export.IncludeWeight, "LIVEPOLL_EXPORT_INCLUDE_WEIGHT")
	setStr(&cfg.Export.ArchivePrefix, "LIVEPOLL_EXPORT_ARCHIVE_PREFIX")
	setDuration(&cfg.Export.ArchiveInterval, "LIVEPOLL_EXPORT_ARCHIVE_INTERVAL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
