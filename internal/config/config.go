package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/session"
	"codeberg.org/mutker/droidmon/internal/store"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultBridge   = "adb"
	DefaultLogLevel = LogLevelWarning
	MaxWorkers      = 256
)

type Config struct {
	Bridge             string
	Timeout            time.Duration
	Workers            int
	ShutdownGrace      time.Duration
	ConnectionInterval time.Duration
	Intervals          map[string]time.Duration
	BatteryPaths       []string

	LogLevel string
	Debug    bool
	Verbose  bool

	Store store.Config

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

// flag name -> config key
var flagKeys = map[string]string{
	"bridge":              "bridge",
	"timeout":             "timeout",
	"workers":             "workers",
	"shutdown-grace":      "shutdown_grace",
	"connection-interval": "connection_interval",
	"log-level":           "log_level",
	"debug":               "debug",
	"verbose":             "verbose",
	"store":               "store.enabled",
	"store-path":          "store.path",
}

// RegisterFlags defines every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	defaults := session.DefaultConfig()
	storeDefaults := store.DefaultConfig()

	fs.String("config", "", "Path to a TOML configuration file")
	fs.String("bridge", DefaultBridge, "Bridge executable")
	fs.Duration("timeout", defaults.Timeout, "Timeout for each bridge command")
	fs.Int("workers", defaults.Workers, "Number of concurrent bridge commands")
	fs.Duration("shutdown-grace", defaults.ShutdownGrace, "How long shutdown waits for running commands")
	fs.Duration("connection-interval", defaults.ConnectionInterval, "Interval between connection checks")
	fs.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.Bool("store", storeDefaults.Enabled, "Persist the latest value of every metric")
	fs.String("store-path", storeDefaults.DBPath, "Path to the latest-value database")
}

func setDefaults(v *viper.Viper) {
	defaults := session.DefaultConfig()
	storeDefaults := store.DefaultConfig()

	v.SetDefault("bridge", DefaultBridge)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("shutdown_grace", defaults.ShutdownGrace)
	v.SetDefault("connection_interval", defaults.ConnectionInterval)
	v.SetDefault("battery_paths", defaults.BatteryPaths)
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	for key, d := range session.DefaultIntervals() {
		v.SetDefault("intervals."+key, d)
	}

	v.SetDefault("store.enabled", storeDefaults.Enabled)
	v.SetDefault("store.path", storeDefaults.DBPath)
	v.SetDefault("store.batch_size", storeDefaults.BatchSize)
	v.SetDefault("store.flush_interval", storeDefaults.FlushInterval)
	v.SetDefault("store.backup_on_migrate", storeDefaults.BackupOnMigrate)
}

// Load reads defaults, then the configuration file, then the environment,
// then explicitly set flags, and validates the result.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.flags != nil {
		if f := o.flags.Lookup("config"); f != nil && f.Changed {
			o.configPath = f.Value.String()
		}
		for name, key := range flagKeys {
			f := o.flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err).WithData(name)
			}
		}
	}

	if o.configPath == "" {
		o.configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName("droidmon")
		v.SetConfigType("toml")
		v.AddConfigPath("$HOME/.config/droidmon")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.configPath != "" || !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{
		Bridge:             v.GetString("bridge"),
		Timeout:            v.GetDuration("timeout"),
		Workers:            v.GetInt("workers"),
		ShutdownGrace:      v.GetDuration("shutdown_grace"),
		ConnectionInterval: v.GetDuration("connection_interval"),
		Intervals:          make(map[string]time.Duration),
		BatteryPaths:       v.GetStringSlice("battery_paths"),
		LogLevel:           strings.ToLower(v.GetString("log_level")),
		Debug:              v.GetBool("debug"),
		Verbose:            v.GetBool("verbose"),
		Store: store.Config{
			Enabled:         v.GetBool("store.enabled"),
			DBPath:          v.GetString("store.path"),
			BatchSize:       v.GetInt("store.batch_size"),
			FlushInterval:   v.GetDuration("store.flush_interval"),
			BackupOnMigrate: v.GetBool("store.backup_on_migrate"),
		},
		ConfigFile: v.ConfigFileUsed(),
	}
	for key := range session.DefaultIntervals() {
		cfg.Intervals[key] = v.GetDuration("intervals." + key)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if strings.TrimSpace(c.Bridge) == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "bridge executable must be set")
	}
	if !LogLevel(c.LogLevel).IsValid() && c.LogLevel != "warn" {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Timeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidTimeout, c.Timeout.String())
	}
	if c.ShutdownGrace <= 0 {
		return errFactory.WithData(errors.ErrInvalidTimeout, "shutdown_grace "+c.ShutdownGrace.String())
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return errFactory.WithData(errors.ErrInvalidWorkers, c.Workers)
	}
	if c.ConnectionInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "connection_interval")
	}
	for key, d := range c.Intervals {
		if d <= 0 {
			return errFactory.WithData(errors.ErrInvalidInterval, "intervals."+key)
		}
	}
	if len(c.BatteryPaths) == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "battery_paths must not be empty")
	}
	if err := c.Store.Validate(); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	return nil
}

// Session returns the session tunables.
func (c *Config) Session() session.Config {
	intervals := make(map[string]time.Duration, len(c.Intervals))
	for k, d := range c.Intervals {
		intervals[k] = d
	}
	return session.Config{
		Timeout:            c.Timeout,
		Workers:            c.Workers,
		ShutdownGrace:      c.ShutdownGrace,
		ConnectionInterval: c.ConnectionInterval,
		Intervals:          intervals,
		BatteryPaths:       append([]string(nil), c.BatteryPaths...),
	}
}

// Executor builds the bridge executor for this configuration.
func (c *Config) Executor(opts ...bridge.Option) *bridge.Executor {
	return bridge.NewExecutor(c.Bridge, opts...)
}
