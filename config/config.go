// Package config loads the turnact configuration from YAML, with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/logging"
	"github.com/nomis52/turnact/world"
)

const (
	defaultRecoveryMoves = activity.MovesPerMinute
	defaultTickInterval  = time.Second
	defaultActorSpeed    = 100
	defaultMaxStamina    = 10000
	defaultRestRate      = 20
	defaultLocale        = "en-US"
	defaultSnapshotDir   = "snapshots"
	defaultSnapshotDB    = "turnact.db"
	defaultMaxSnapshots  = 100
	defaultMetricsPrefix = "turnact"
	defaultJobName       = "turnact"
	defaultListenAddr    = ":8080"

	redactedValue = "REDACTED"
)

// Snapshot backends.
const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
	BackendSQLite = "sqlite"
)

var backends = []string{BackendMemory, BackendDisk, BackendSQLite}

// Config represents the complete application configuration
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Simulation SimulationConfig `yaml:"simulation"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Server     ServerConfig     `yaml:"server"`
	Logging    logging.Config   `yaml:"logging"`
}

// EngineConfig tunes the scheduler.
type EngineConfig struct {
	RecoveryKind  string `yaml:"recovery_kind" env:"TURNACT_RECOVERY_KIND"`
	RecoveryMoves int    `yaml:"recovery_moves"`
	RecoveryBonus int    `yaml:"recovery_bonus"`

	// ExhaustionDivisor: an actor is exhausted below max stamina / divisor.
	ExhaustionDivisor int `yaml:"exhaustion_divisor"`

	// BreathOdds shows the catch-your-breath message one time in n. Zero
	// uses the default; a negative value disables it.
	BreathOdds int `yaml:"breath_odds"`

	// Seed makes runs reproducible. Zero picks a random seed.
	Seed uint64 `yaml:"seed" env:"TURNACT_SEED"`
}

// SimulationConfig describes the world and its actors.
type SimulationConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" env:"TURNACT_TICK_INTERVAL"`
	ActorSpeed   int           `yaml:"actor_speed"`
	MaxStamina   int           `yaml:"max_stamina"`
	RestRate     int           `yaml:"rest_rate"`
	CarryLimit   int           `yaml:"carry_limit"`

	// Region is the loaded map. Nil means everything is loaded.
	Region *world.Region `yaml:"region"`
	Actors []ActorConfig `yaml:"actors"`
}

// ActorConfig is an actor spawned at startup.
type ActorConfig struct {
	Name     string         `yaml:"name"`
	NPC      bool           `yaml:"npc"`
	Position activity.Point `yaml:"position"`

	// Activity optionally starts the actor on a kind, for Moves moves.
	Activity  string          `yaml:"activity"`
	Moves     int             `yaml:"moves"`
	Placement *activity.Point `yaml:"placement"`
}

// CatalogConfig selects the activity kinds and their presentation.
type CatalogConfig struct {
	// File overrides or extends the built-in kinds.
	File string `yaml:"file" env:"TURNACT_CATALOG_FILE"`

	ScriptDir string `yaml:"script_dir" env:"TURNACT_SCRIPT_DIR"`
	Locale    string `yaml:"locale" env:"TURNACT_LOCALE"`
}

// SnapshotConfig controls where and when snapshots are stored.
type SnapshotConfig struct {
	Backend  string `yaml:"backend" env:"TURNACT_SNAPSHOT_BACKEND"`
	Dir      string `yaml:"dir" env:"TURNACT_SNAPSHOT_DIR"`
	Path     string `yaml:"path" env:"TURNACT_SNAPSHOT_DB"`
	MaxCount int    `yaml:"max_count"`

	// Schedule is a cron spec; empty disables scheduled snapshots.
	Schedule string `yaml:"schedule" env:"TURNACT_SNAPSHOT_SCHEDULE"`

	// RestoreOnStart loads the latest snapshot instead of spawning actors.
	RestoreOnStart bool `yaml:"restore_on_start"`
}

// MonitoringConfig holds metrics settings
type MonitoringConfig struct {
	VictoriaMetricsURL string `yaml:"victoriametrics_url" env:"TURNACT_VICTORIAMETRICS_URL"`
	MetricsPrefix      string `yaml:"metrics_prefix"`
	JobName            string `yaml:"jobname"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"TURNACT_LISTEN_ADDR"`

	// AutoStart begins stepping the world as soon as the server starts.
	AutoStart bool `yaml:"auto_start" env:"TURNACT_AUTO_START"`

	// Cron is a trigger spec such as "snapshot:0 * * * *;stop:0 18 * * *".
	// It takes precedence over snapshot.schedule.
	Cron string `yaml:"cron" env:"TURNACT_CRON"`

	// TLSCert and TLSKey enable HTTPS. Changed files are picked up without
	// a restart.
	TLSCert string `yaml:"tls_cert" env:"TURNACT_TLS_CERT"`
	TLSKey  string `yaml:"tls_key" env:"TURNACT_TLS_KEY"`
}

// TLS reports whether HTTPS is configured.
func (c ServerConfig) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.RecoveryKind == "" {
		errs = append(errs, errors.New("engine recovery kind is required"))
	}
	if c.Engine.RecoveryMoves <= 0 {
		errs = append(errs, errors.New("engine recovery moves must be positive"))
	}
	if c.Engine.ExhaustionDivisor <= 0 {
		errs = append(errs, errors.New("engine exhaustion divisor must be positive"))
	}
	if c.Simulation.TickInterval <= 0 {
		errs = append(errs, errors.New("simulation tick interval must be positive"))
	}
	if c.Simulation.ActorSpeed <= 0 {
		errs = append(errs, errors.New("simulation actor speed must be positive"))
	}
	if c.Simulation.MaxStamina <= 0 {
		errs = append(errs, errors.New("simulation max stamina must be positive"))
	}
	if r := c.Simulation.Region; r != nil && (r.MinX > r.MaxX || r.MinY > r.MaxY || r.MinZ > r.MaxZ) {
		errs = append(errs, errors.New("simulation region minimum exceeds maximum"))
	}
	for i, a := range c.Simulation.Actors {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("simulation actor %d: name is required", i))
		}
		if a.Activity != "" && a.Moves <= 0 {
			errs = append(errs, fmt.Errorf("simulation actor %q: activity moves must be positive", a.Name))
		}
	}
	if !slices.Contains(backends, c.Snapshot.Backend) {
		errs = append(errs, fmt.Errorf("snapshot backend must be one of %v, got %q", backends, c.Snapshot.Backend))
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		errs = append(errs, errors.New("server tls_cert and tls_key must be set together"))
	}
	if c.Snapshot.MaxCount <= 0 {
		errs = append(errs, errors.New("snapshot max count must be positive"))
	}
	return errors.Join(errs...)
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.Engine.RecoveryKind == "" {
		c.Engine.RecoveryKind = activity.DefaultRecoveryKind
	}
	if c.Engine.RecoveryMoves == 0 {
		c.Engine.RecoveryMoves = defaultRecoveryMoves
	}
	if c.Engine.RecoveryBonus == 0 {
		c.Engine.RecoveryBonus = activity.DefaultRecoveryBonus
	}
	if c.Engine.ExhaustionDivisor == 0 {
		c.Engine.ExhaustionDivisor = activity.DefaultExhaustionDivisor
	}
	if c.Engine.BreathOdds == 0 {
		c.Engine.BreathOdds = activity.DefaultBreathOdds
	}
	if c.Simulation.TickInterval == 0 {
		c.Simulation.TickInterval = defaultTickInterval
	}
	if c.Simulation.ActorSpeed == 0 {
		c.Simulation.ActorSpeed = defaultActorSpeed
	}
	if c.Simulation.MaxStamina == 0 {
		c.Simulation.MaxStamina = defaultMaxStamina
	}
	if c.Simulation.RestRate == 0 {
		c.Simulation.RestRate = defaultRestRate
	}
	if c.Catalog.Locale == "" {
		c.Catalog.Locale = defaultLocale
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendMemory
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = defaultSnapshotDir
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = defaultSnapshotDB
	}
	if c.Snapshot.MaxCount == 0 {
		c.Snapshot.MaxCount = defaultMaxSnapshots
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultListenAddr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Redacted returns a copy safe to show to clients. Credentials embedded in
// the metrics URL are masked.
func (c Config) Redacted() Config {
	out := c
	if u, err := url.Parse(c.Monitoring.VictoriaMetricsURL); err == nil && u.User != nil {
		u.User = url.User(redactedValue)
		out.Monitoring.VictoriaMetricsURL = u.String()
	}
	out.Simulation.Actors = slices.Clone(c.Simulation.Actors)
	return out
}

// ApplyEnv overrides fields from environment variables. A nil environ
// reads the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse decodes a YAML document, applies environ overrides and defaults,
// and validates the result.
func Parse(data []byte, environ map[string]string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode YAML config: %w", err)
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return cfg, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads the YAML config file at path. An empty path yields the
// defaults. Environment variables override file values.
func LoadConfig(path string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return Parse(data, nil)
}
