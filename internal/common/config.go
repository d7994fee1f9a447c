package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Storage     StorageConfig  `toml:"storage"`
	JQuants     JQuantsConfig  `toml:"jquants"`
	Sync        SyncConfig     `toml:"sync"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Logging     LoggingConfig  `toml:"logging"`
}

type StorageConfig struct {
	Type      string       `toml:"type" validate:"oneof=file badger"` // Record store backend: "file" (default) or "badger"
	StateFile string       `toml:"state_file"`                        // Freshness state file (default: <file.dir>/update_info.toml)
	File      FileConfig   `toml:"file"`
	Badger    BadgerConfig `toml:"badger"`
}

// FileConfig represents the one-JSON-file-per-symbol record store
type FileConfig struct {
	Dir string `toml:"dir" validate:"required"` // Directory holding <SYMBOL>.json files
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// JQuantsConfig configures the remote financial-data API client
type JQuantsConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	IDToken   string `toml:"id_token"`                   // Bearer ID token, obtained out of band
	Timeout   string `toml:"timeout"`                    // HTTP timeout, e.g. "30s"
	RateLimit int    `toml:"rate_limit" validate:"gt=0"` // Requests per second
}

// SyncConfig controls the batch synchronization loop
type SyncConfig struct {
	Markets              []string `toml:"markets" validate:"min=1"`               // Market segment names included in a full resync
	Timezone             string   `toml:"timezone"`                               // Zone used to determine "today" (default: Asia/Tokyo)
	RequestDelay         string   `toml:"request_delay"`                          // Fixed pause between remote calls, e.g. "500ms"
	RequestJitter        string   `toml:"request_jitter"`                         // Random extra pause up to this duration
	RetryAttempts        int      `toml:"retry_attempts" validate:"gte=0,lte=10"` // Retries on remote unavailability
	RetryDelay           string   `toml:"retry_delay"`                            // Pause between retries
	MaxConsecutiveErrors int      `toml:"max_consecutive_errors" validate:"gt=0"` // Abandon the batch after this many consecutive failures
	ScheduleEnabled      bool     `toml:"schedule_enabled"`                       // Run sync on a schedule in serve mode
	Schedule             string   `toml:"schedule"`                               // Cron schedule format (5 fields)
}

// AnalysisConfig controls derived-metric computation
type AnalysisConfig struct {
	AnnualPolicy             string `toml:"annual_policy" validate:"oneof=strict lenient"`    // Profit metric selection for the multi-year average
	QuarterlyPolicy          string `toml:"quarterly_policy" validate:"oneof=strict lenient"` // Profit metric selection for quarterly growth
	ReconstructionWindowDays int    `toml:"reconstruction_window_days" validate:"gt=0"`       // Trailing window used to rebuild standalone periods
	OutputWindowDays         int    `toml:"output_window_days" validate:"gt=0"`               // Trailing window of reported periods
	AnnualYears              int    `toml:"annual_years" validate:"gt=1"`                     // Max fiscal years in the multi-year average
	RecentPeriods            int    `toml:"recent_periods" validate:"gt=0"`                   // Growth records reported per symbol
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                             // "stdout", "file"
	Dir    string   `toml:"dir"`                                                // Log file directory (default: ./logs)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Type: "file",
			File: FileConfig{
				Dir: "./data/financials",
			},
			Badger: BadgerConfig{
				Path: "./data/finsync.db",
			},
		},
		JQuants: JQuantsConfig{
			BaseURL:   "https://api.jquants.com",
			Timeout:   "30s",
			RateLimit: 5,
		},
		Sync: SyncConfig{
			Markets:              []string{"プライム", "スタンダード", "グロース"},
			Timezone:             "Asia/Tokyo",
			RequestDelay:         "500ms",
			RequestJitter:        "0s",
			RetryAttempts:        3,
			RetryDelay:           "2s",
			MaxConsecutiveErrors: 10,
			ScheduleEnabled:      true,
			Schedule:             "30 18 * * 1-5",
		},
		Analysis: AnalysisConfig{
			AnnualPolicy:             "strict",
			QuarterlyPolicy:          "lenient",
			ReconstructionWindowDays: 1095,
			OutputWindowDays:         730,
			AnnualYears:              10,
			RecentPeriods:            4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
			Dir:    "./logs",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINSYNC_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if storageType := os.Getenv("FINSYNC_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if dataDir := os.Getenv("FINSYNC_DATA_DIR"); dataDir != "" {
		config.Storage.File.Dir = dataDir
	}
	if stateFile := os.Getenv("FINSYNC_STATE_FILE"); stateFile != "" {
		config.Storage.StateFile = stateFile
	}
	if badgerPath := os.Getenv("FINSYNC_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// J-Quants configuration
	if baseURL := os.Getenv("FINSYNC_JQUANTS_BASE_URL"); baseURL != "" {
		config.JQuants.BaseURL = baseURL
	}
	if token := os.Getenv("FINSYNC_JQUANTS_ID_TOKEN"); token != "" {
		config.JQuants.IDToken = token
	} else if token := os.Getenv("JQUANTS_ID_TOKEN"); token != "" {
		config.JQuants.IDToken = token
	}
	if rateLimit := os.Getenv("FINSYNC_JQUANTS_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.Atoi(rateLimit); err == nil {
			config.JQuants.RateLimit = r
		}
	}

	// Sync configuration
	if delay := os.Getenv("FINSYNC_SYNC_REQUEST_DELAY"); delay != "" {
		config.Sync.RequestDelay = delay
	}
	if maxErrors := os.Getenv("FINSYNC_SYNC_MAX_CONSECUTIVE_ERRORS"); maxErrors != "" {
		if m, err := strconv.Atoi(maxErrors); err == nil {
			config.Sync.MaxConsecutiveErrors = m
		}
	}
	if schedule := os.Getenv("FINSYNC_SYNC_SCHEDULE"); schedule != "" {
		config.Sync.Schedule = schedule
	}
	if markets := os.Getenv("FINSYNC_SYNC_MARKETS"); markets != "" {
		if list := splitList(markets); len(list) > 0 {
			config.Sync.Markets = list
		}
	}

	// Logging configuration
	if level := os.Getenv("FINSYNC_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("FINSYNC_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, dataDir, logLevel string) {
	if dataDir != "" {
		config.Storage.File.Dir = dataDir
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

// Validate checks struct tags and the values that need parsing
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"jquants.timeout":     c.JQuants.Timeout,
		"sync.request_delay":  c.Sync.RequestDelay,
		"sync.request_jitter": c.Sync.RequestJitter,
		"sync.retry_delay":    c.Sync.RetryDelay,
	}
	for name, value := range durations {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("invalid sync.timezone %q: %w", c.Sync.Timezone, err)
	}

	if c.Sync.ScheduleEnabled {
		if err := ValidateSchedule(c.Sync.Schedule); err != nil {
			return fmt.Errorf("invalid sync.schedule: %w", err)
		}
	}

	return nil
}

// ValidateSchedule validates a cron schedule expression and ensures minimum 5-minute interval
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	minuteField := strings.Fields(schedule)[0]
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}
	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// StateFilePath returns the freshness state location
func (c *Config) StateFilePath() string {
	if c.Storage.StateFile != "" {
		return c.Storage.StateFile
	}
	return filepath.Join(c.Storage.File.Dir, "update_info.toml")
}

// Location returns the zone used to compute the current calendar date
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Duration helpers. Validate has already rejected malformed values.

func (c JQuantsConfig) TimeoutDuration() time.Duration {
	d, _ := parseDuration(c.Timeout)
	return d
}

func (c SyncConfig) RequestDelayDuration() time.Duration {
	d, _ := parseDuration(c.RequestDelay)
	return d
}

func (c SyncConfig) RequestJitterDuration() time.Duration {
	d, _ := parseDuration(c.RequestJitter)
	return d
}

func (c SyncConfig) RetryDelayDuration() time.Duration {
	d, _ := parseDuration(c.RetryDelay)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration")
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
