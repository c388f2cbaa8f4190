package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string // "" disables the gRPC health listener

	Env   string // "dev" | "prod"
	Store string // "sqlite" | "memory"

	// DB
	DBPath string // e.g. "./data/accesshub.db"

	// Sessions
	JWTSecret        string
	SessionTTL       time.Duration
	ResetPasswordTTL time.Duration
	LoginRatePerMin  int // 0 disables login throttling
	PublicBaseURL    string

	// Heartbeat retention
	HeartbeatRetentionDays int // 0 = keep forever
	PruneIntervalHours     int // how often the pruner runs (default 6)

	DisplayTimezone string // IANA name used for code status text
	SeedDev         bool   // explicit opt-in only, never implied by Env
}

// fileConfig mirrors Config for the optional TOML file.  Pointers tell
// "unset" apart from zero.
type fileConfig struct {
	HTTPAddr               *string `toml:"http_addr"`
	GRPCAddr               *string `toml:"grpc_addr"`
	Env                    *string `toml:"env"`
	Store                  *string `toml:"store"`
	DBPath                 *string `toml:"db_path"`
	JWTSecret              *string `toml:"jwt_secret"`
	SessionTTLHours        *int    `toml:"session_ttl_hours"`
	ResetPasswordTTLHours  *int    `toml:"reset_password_ttl_hours"`
	LoginRatePerMinute     *int    `toml:"login_rate_per_minute"`
	PublicBaseURL          *string `toml:"public_base_url"`
	HeartbeatRetentionDays *int    `toml:"heartbeat_retention_days"`
	PruneIntervalHours     *int    `toml:"prune_interval_hours"`
	DisplayTimezone        *string `toml:"display_timezone"`
	SeedDev                *bool   `toml:"seed_dev"`
}

const envPrefix = "ACCESSHUB_"

func defaults() Config {
	return Config{
		HTTPAddr:               ":8080",
		Env:                    "dev",
		Store:                  "sqlite",
		DBPath:                 "./data/accesshub.db",
		SessionTTL:             12 * time.Hour,
		ResetPasswordTTL:       6 * time.Hour,
		LoginRatePerMin:        10,
		PublicBaseURL:          "http://localhost:8080",
		HeartbeatRetentionDays: 30,
		PruneIntervalHours:     6,
		DisplayTimezone:        "UTC",
	}
}

// FromEnv builds the config from, in increasing precedence: defaults, the
// TOML file named by ACCESSHUB_CONFIG, and ACCESSHUB_* variables.  A .env
// file in the working directory is loaded first if present; it never
// overrides variables already set.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.GRPCAddr, fc.GRPCAddr)
	setString(&c.Env, fc.Env)
	setString(&c.Store, fc.Store)
	setString(&c.DBPath, fc.DBPath)
	setString(&c.JWTSecret, fc.JWTSecret)
	setString(&c.PublicBaseURL, fc.PublicBaseURL)
	setString(&c.DisplayTimezone, fc.DisplayTimezone)
	if fc.SessionTTLHours != nil {
		c.SessionTTL = time.Duration(*fc.SessionTTLHours) * time.Hour
	}
	if fc.ResetPasswordTTLHours != nil {
		c.ResetPasswordTTL = time.Duration(*fc.ResetPasswordTTLHours) * time.Hour
	}
	if fc.LoginRatePerMinute != nil {
		c.LoginRatePerMin = *fc.LoginRatePerMinute
	}
	if fc.HeartbeatRetentionDays != nil {
		c.HeartbeatRetentionDays = *fc.HeartbeatRetentionDays
	}
	if fc.PruneIntervalHours != nil {
		c.PruneIntervalHours = *fc.PruneIntervalHours
	}
	if fc.SeedDev != nil {
		c.SeedDev = *fc.SeedDev
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getenvDefault(envPrefix+"HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = getenvDefault(envPrefix+"GRPC_ADDR", c.GRPCAddr)

	env := strings.ToLower(getenvDefault(envPrefix+"ENV", c.Env))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}
	c.Env = env
	c.Store = strings.ToLower(getenvDefault(envPrefix+"STORE", c.Store))

	c.DBPath = getenvDefault(envPrefix+"DB_PATH", c.DBPath)
	c.JWTSecret = getenvDefault(envPrefix+"JWT_SECRET", c.JWTSecret)
	c.SessionTTL = time.Duration(getenvInt(envPrefix+"SESSION_TTL_HOURS", int(c.SessionTTL/time.Hour))) * time.Hour
	c.ResetPasswordTTL = time.Duration(getenvInt(envPrefix+"RESET_PASSWORD_TTL_HOURS", int(c.ResetPasswordTTL/time.Hour))) * time.Hour
	c.LoginRatePerMin = getenvInt(envPrefix+"LOGIN_RATE_PER_MINUTE", c.LoginRatePerMin)
	c.PublicBaseURL = strings.TrimRight(getenvDefault(envPrefix+"PUBLIC_BASE_URL", c.PublicBaseURL), "/")

	c.HeartbeatRetentionDays = getenvInt(envPrefix+"HEARTBEAT_RETENTION_DAYS", c.HeartbeatRetentionDays)
	c.PruneIntervalHours = getenvInt(envPrefix+"PRUNE_INTERVAL_HOURS", c.PruneIntervalHours)

	c.DisplayTimezone = getenvDefault(envPrefix+"DISPLAY_TIMEZONE", c.DisplayTimezone)
	c.SeedDev = getenvBool(envPrefix+"SEED_DEV", c.SeedDev)
}

// Validate rejects configurations the server cannot run with.  In prod a
// session secret is mandatory; dev falls back to a random one per process.
func (c Config) Validate() error {
	if c.Store != "sqlite" && c.Store != "memory" {
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.Env == "prod" && len(c.JWTSecret) < 32 {
		return errors.New("config: ACCESSHUB_JWT_SECRET must be at least 32 characters in prod")
	}
	if c.Env == "prod" && c.SeedDev {
		return errors.New("config: ACCESSHUB_SEED_DEV is not allowed in prod")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session ttl must be positive")
	}
	if c.ResetPasswordTTL <= 0 {
		return errors.New("config: reset password ttl must be positive")
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("config: display timezone: %w", err)
	}
	return nil
}

// Location returns the display time zone.  Validate has already checked it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}
