package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/hostwatch/internal/errors"
	"codeberg.org/mutker/hostwatch/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultCPUThreshold    = 10.0
	DefaultRAMThreshold    = 5000.0
	DefaultDiskThreshold   = 10.0
	DefaultThreadThreshold = 1000.0
	DefaultLogFilePath     = "log.txt"
	DefaultRefreshInterval = 1
	DefaultLogLevel        = "info"
	DefaultHistoryDBPath   = "hostwatch.db"

	DefaultHistoryBatchSize    = 1
	DefaultHistoryBatchTimeout = 5

	configName      = "hostwatch"
	envPrefix       = "HOSTWATCH"
	configEnvSuffix = "CONFIG"
	pidFileName     = "hostwatch.pid"
)

// Keys as they appear in the configuration file
const (
	keyCPUThreshold    = "CpuThreshold"
	keyRAMThreshold    = "RamThreshold"
	keyDiskThreshold   = "DiskThreshold"
	keyThreadThreshold = "ThreadThreshold"
	keyLogFilePath     = "LogFilePath"
	keyRefreshInterval = "RefreshInterval"
	keyLogLevel        = "LogLevel"
	keyPidFile         = "PidFile"
	keyEventLog        = "EventLog"
	keyHistoryEnabled  = "History.Enabled"
	keyHistoryDBPath   = "History.DBPath"

	keyHistoryBatchSize    = "History.BatchSize"
	keyHistoryBatchTimeout = "History.BatchTimeout"
)

type HistoryConfig struct {
	Enabled bool   `mapstructure:"Enabled"`
	DBPath  string `mapstructure:"DBPath"`

	// BatchSize is the number of alerts buffered before they are written;
	// 1 writes every alert as it happens
	BatchSize int `mapstructure:"BatchSize"`

	// BatchTimeout bounds how long a buffered alert waits, in seconds
	BatchTimeout int `mapstructure:"BatchTimeout"`
}

// Config is the fully resolved configuration. Every field holds a value after
// Load returns; absent keys take their defaults.
type Config struct {
	CPUThreshold    float64       `mapstructure:"CpuThreshold"`
	RAMThreshold    float64       `mapstructure:"RamThreshold"`
	DiskThreshold   float64       `mapstructure:"DiskThreshold"`
	ThreadThreshold float64       `mapstructure:"ThreadThreshold"`
	LogFilePath     string        `mapstructure:"LogFilePath"`
	RefreshInterval int           `mapstructure:"RefreshInterval"`
	LogLevel        string        `mapstructure:"LogLevel"`
	PidFile         string        `mapstructure:"PidFile"`
	EventLog        bool          `mapstructure:"EventLog"`
	History         HistoryConfig `mapstructure:"History"`

	// Source is the configuration file in effect, empty when running on defaults
	Source string `mapstructure:"-"`
}

// Default returns the built-in configuration used when no file is present
func Default() *Config {
	return &Config{
		CPUThreshold:    DefaultCPUThreshold,
		RAMThreshold:    DefaultRAMThreshold,
		DiskThreshold:   DefaultDiskThreshold,
		ThreadThreshold: DefaultThreadThreshold,
		LogFilePath:     DefaultLogFilePath,
		RefreshInterval: DefaultRefreshInterval,
		LogLevel:        DefaultLogLevel,
		PidFile:         filepath.Join(os.TempDir(), pidFileName),
		EventLog:        true,
		History: HistoryConfig{
			Enabled:      false,
			DBPath:       DefaultHistoryDBPath,
			BatchSize:    DefaultHistoryBatchSize,
			BatchTimeout: DefaultHistoryBatchTimeout,
		},
	}
}

// Load resolves the configuration from defaults, the configuration file,
// HOSTWATCH_* environment variables and command line flags, in increasing
// order of precedence. When no file is named, a missing hostwatch file in
// the search paths means defaults. A file named through --config,
// WithConfigFile or HOSTWATCH_CONFIG must exist, and a malformed file is
// always an error.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		searchPaths: []string{"."},
	}
	for _, opt := range opts {
		opt(o)
	}

	defaults := Default()
	v := viper.New()
	setDefaults(v, defaults)

	// Define flags
	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	configFlag := flags.String("config", "", "Path to the configuration file")
	debugFlag := flags.Bool("debug", false, "Enable debug logging")
	noEventLog := flags.Bool("no-eventlog", false, "Do not write alerts to the system event log")
	flags.Int("interval", defaults.RefreshInterval, "Refresh interval in seconds")
	flags.Float64("cpu-max", defaults.CPUThreshold, "Maximum CPU usage in percent")
	flags.Float64("ram-min", defaults.RAMThreshold, "Minimum available RAM in MB")
	flags.Float64("disk-max", defaults.DiskThreshold, "Maximum disk usage in percent")
	flags.Float64("thread-max", defaults.ThreadThreshold, "Maximum total thread count")
	flags.String("log-file", defaults.LogFilePath, "Alert log file path")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warning, error)")
	flags.String("pid-file", defaults.PidFile, "PID file path")
	flags.Bool("history", defaults.History.Enabled, "Record alerts in the history database")
	flags.String("history-db", defaults.History.DBPath, "History database path")
	flags.Int("history-batch-size", defaults.History.BatchSize, "Alerts buffered before a history write")
	flags.Int("history-batch-timeout", defaults.History.BatchTimeout, "Seconds a buffered alert may wait")

	// Parse flags
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		keyRefreshInterval: "interval",
		keyCPUThreshold:    "cpu-max",
		keyRAMThreshold:    "ram-min",
		keyDiskThreshold:   "disk-max",
		keyThreadThreshold: "thread-max",
		keyLogFilePath:     "log-file",
		keyLogLevel:        "log-level",
		keyPidFile:         "pid-file",
		keyHistoryEnabled:  "history",
		keyHistoryDBPath:   "history-db",

		keyHistoryBatchSize:    "history-batch-size",
		keyHistoryBatchTimeout: "history-batch-timeout",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	// Environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load configuration from file
	path := *configFlag
	if path == "" {
		path = o.configPath
	}
	if path == "" {
		path = os.Getenv(envPrefix + "_" + configEnvSuffix)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		for _, dir := range o.searchPaths {
			v.AddConfigPath(dir)
		}
	}

	source := ""
	if err := v.ReadInConfig(); err != nil {
		if path != "" || !isNotFound(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		source = v.ConfigFileUsed()
	}

	if err := wholeSeconds(v.Get(keyRefreshInterval)); err != nil {
		return nil, err
	}

	// Flags that do not map one-to-one onto a key
	if *debugFlag {
		v.Set(keyLogLevel, "debug")
	}
	if *noEventLog {
		v.Set(keyEventLog, false)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault(keyCPUThreshold, d.CPUThreshold)
	v.SetDefault(keyRAMThreshold, d.RAMThreshold)
	v.SetDefault(keyDiskThreshold, d.DiskThreshold)
	v.SetDefault(keyThreadThreshold, d.ThreadThreshold)
	v.SetDefault(keyLogFilePath, d.LogFilePath)
	v.SetDefault(keyRefreshInterval, d.RefreshInterval)
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyPidFile, d.PidFile)
	v.SetDefault(keyEventLog, d.EventLog)
	v.SetDefault(keyHistoryEnabled, d.History.Enabled)
	v.SetDefault(keyHistoryDBPath, d.History.DBPath)
	v.SetDefault(keyHistoryBatchSize, d.History.BatchSize)
	v.SetDefault(keyHistoryBatchTimeout, d.History.BatchTimeout)
}

// wholeSeconds rejects a fractional RefreshInterval, which decoding into an
// int would otherwise truncate
func wholeSeconds(value any) error {
	f, ok := value.(float64)
	if !ok || f == math.Trunc(f) {
		return nil
	}

	return errors.New().WithData(errors.ErrInvalidInterval, f)
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.RefreshInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.RefreshInterval)
	}

	thresholds := []struct {
		key   string
		value float64
	}{
		{keyCPUThreshold, c.CPUThreshold},
		{keyRAMThreshold, c.RAMThreshold},
		{keyDiskThreshold, c.DiskThreshold},
		{keyThreadThreshold, c.ThreadThreshold},
	}
	for _, t := range thresholds {
		if t.value < 0 || math.IsNaN(t.value) || math.IsInf(t.value, 0) {
			return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("%s=%v", t.key, t.value))
		}
	}

	if c.LogFilePath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, keyLogFilePath+" is empty")
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, keyHistoryDBPath+" is empty")
	}

	if c.History.BatchSize < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("%s=%d", keyHistoryBatchSize, c.History.BatchSize))
	}
	if c.History.BatchSize > 1 && c.History.BatchTimeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("%s=%d", keyHistoryBatchTimeout, c.History.BatchTimeout))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// Thresholds returns the bounds used by the evaluator
func (c *Config) Thresholds() Thresholds {
	return Thresholds{
		CPUMax:    c.CPUThreshold,
		RAMMin:    c.RAMThreshold,
		DiskMax:   c.DiskThreshold,
		ThreadMax: c.ThreadThreshold,
	}
}

// Interval returns the refresh interval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// Log writes a diagnostic line describing the configuration in effect
func (c *Config) Log(log logger.Logger) {
	if c.Source == "" {
		log.Info().Msg("Configuration file not found. Using default configuration.")
	}

	source := c.Source
	if source == "" {
		source = "default"
	}

	log.Info().
		Str("source", source).
		Float64("cpu_threshold", c.CPUThreshold).
		Float64("ram_threshold", c.RAMThreshold).
		Float64("disk_threshold", c.DiskThreshold).
		Float64("thread_threshold", c.ThreadThreshold).
		Str("log_file_path", c.LogFilePath).
		Int("refresh_interval", c.RefreshInterval).
		Bool("event_log", c.EventLog).
		Bool("history", c.History.Enabled).
		Int("history_batch_size", c.History.BatchSize).
		Msg("Loaded configuration parameters")
}
