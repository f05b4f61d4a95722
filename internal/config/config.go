package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Settings limits and defaults.
const (
	DefaultMaxItems             = 500
	DefaultMaxBytes             = int64(2 * 1024 * 1024 * 1024)
	MinMaxItems                 = 10
	MaxMaxItems                 = 2000
	DefaultMonitoringIntervalMs = 250
	MinMonitoringIntervalMs     = 50
	DefaultLogMaxBytes          = int64(10 * 1024 * 1024)
	DefaultLogMaxFiles          = 3
	DefaultToastCapacity        = 64
)

// HomeEnv overrides the base directory (default ~/.pastedock).
const HomeEnv = "PASTEDOCK_HOME"

// Config holds application configuration as read from config.json.
// Boolean settings that default to true are pointers so an explicit false survives Merge.
type Config struct {
	// MaxItems bounds the number of retained history items (clamped to 10..2000)
	MaxItems int `json:"max_items,omitempty"`

	// MaxBytes bounds the total payload bytes of retained items
	MaxBytes int64 `json:"max_bytes,omitempty"`

	// PrivacyFilterEnabled skips text that matches the sensitive-content rules
	PrivacyFilterEnabled *bool `json:"privacy_filter_enabled,omitempty"`

	// ExcludedBundleIDs lists source applications that are never captured
	ExcludedBundleIDs []string `json:"excluded_bundle_ids,omitempty"`

	ShowOperationToasts       *bool `json:"show_operation_toasts,omitempty"`
	AutoPasteEnabled          *bool `json:"auto_paste_enabled,omitempty"`
	PermissionReminderEnabled *bool `json:"permission_reminder_enabled,omitempty"`

	// MonitoringIntervalMs is the pasteboard poll interval (floor 50ms)
	MonitoringIntervalMs int `json:"monitoring_interval_ms,omitempty"`

	// QuickPickerResultLimit caps picker/list results. 0 means "same as MaxItems".
	QuickPickerResultLimit int `json:"quick_picker_result_limit,omitempty"`

	// LogLevel is the diagnostic log level: debug, info, warn, error
	LogLevel string `json:"log_level,omitempty"`

	// LogMaxBytes and LogMaxFiles bound the rotated event log
	LogMaxBytes int64 `json:"log_max_bytes,omitempty"`
	LogMaxFiles int   `json:"log_max_files,omitempty"`

	// ToastCapacity bounds the pending toast queue; the oldest toast is dropped when full
	ToastCapacity int `json:"toast_capacity,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// Settings is the immutable per-call snapshot consumed by the capture pipeline
// and the paste engine.
type Settings struct {
	MaxItems                  int      `json:"max_items"`
	MaxBytes                  int64    `json:"max_bytes"`
	PrivacyFilterEnabled      bool     `json:"privacy_filter_enabled"`
	ExcludedBundleIDs         []string `json:"excluded_bundle_ids"`
	ShowOperationToasts       bool     `json:"show_operation_toasts"`
	AutoPasteEnabled          bool     `json:"auto_paste_enabled"`
	PermissionReminderEnabled bool     `json:"permission_reminder_enabled"`
	MonitoringIntervalMs      int      `json:"monitoring_interval_ms"`
	QuickPickerResultLimit    int      `json:"quick_picker_result_limit"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return DefaultConfig().Settings()
}

// MonitoringInterval returns the poll interval with the 50ms floor applied.
func (s Settings) MonitoringInterval() time.Duration {
	ms := s.MonitoringIntervalMs
	if ms < MinMonitoringIntervalMs {
		ms = MinMonitoringIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxItems:                  DefaultMaxItems,
		MaxBytes:                  DefaultMaxBytes,
		PrivacyFilterEnabled:      boolPtr(true),
		ShowOperationToasts:       boolPtr(true),
		AutoPasteEnabled:          boolPtr(true),
		PermissionReminderEnabled: boolPtr(true),
		MonitoringIntervalMs:      DefaultMonitoringIntervalMs,
		LogLevel:                  "info",
		LogMaxBytes:               DefaultLogMaxBytes,
		LogMaxFiles:               DefaultLogMaxFiles,
		ToastCapacity:             DefaultToastCapacity,
	}
}

// Settings resolves the config into a normalized snapshot.
func (c *Config) Settings() Settings {
	s := Settings{
		MaxItems:                  ClampMaxItems(c.MaxItems),
		MaxBytes:                  c.MaxBytes,
		PrivacyFilterEnabled:      boolOr(c.PrivacyFilterEnabled, true),
		ExcludedBundleIDs:         append([]string(nil), c.ExcludedBundleIDs...),
		ShowOperationToasts:       boolOr(c.ShowOperationToasts, true),
		AutoPasteEnabled:          boolOr(c.AutoPasteEnabled, true),
		PermissionReminderEnabled: boolOr(c.PermissionReminderEnabled, true),
		MonitoringIntervalMs:      c.MonitoringIntervalMs,
	}
	if s.MaxBytes <= 0 {
		s.MaxBytes = DefaultMaxBytes
	}
	if s.MonitoringIntervalMs == 0 {
		s.MonitoringIntervalMs = DefaultMonitoringIntervalMs
	}
	if s.MonitoringIntervalMs < MinMonitoringIntervalMs {
		s.MonitoringIntervalMs = MinMonitoringIntervalMs
	}

	// Picker results never exceed what retention keeps
	s.QuickPickerResultLimit = c.QuickPickerResultLimit
	if s.QuickPickerResultLimit <= 0 || s.QuickPickerResultLimit > s.MaxItems {
		s.QuickPickerResultLimit = s.MaxItems
	}
	return s
}

// ClampMaxItems clamps n into MinMaxItems..MaxMaxItems. Zero means the default.
func ClampMaxItems(n int) int {
	if n == 0 {
		return DefaultMaxItems
	}
	if n < MinMaxItems {
		return MinMaxItems
	}
	if n > MaxMaxItems {
		return MaxMaxItems
	}
	return n
}

// BaseDir returns $PASTEDOCK_HOME, or ~/.pastedock.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".pastedock"), nil
}

// Path returns the config file path inside baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, "config.json")
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.pastedock.
func Load(baseDir string) (*Config, error) {
	return loadFile(Path(baseDir))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars and non-nil booleans; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.MaxItems = firstNonZero(overlay.MaxItems, base.MaxItems)
	result.MaxBytes = overlay.MaxBytes
	if result.MaxBytes == 0 {
		result.MaxBytes = base.MaxBytes
	}
	result.MonitoringIntervalMs = firstNonZero(overlay.MonitoringIntervalMs, base.MonitoringIntervalMs)
	result.QuickPickerResultLimit = firstNonZero(overlay.QuickPickerResultLimit, base.QuickPickerResultLimit)
	result.LogMaxBytes = overlay.LogMaxBytes
	if result.LogMaxBytes == 0 {
		result.LogMaxBytes = base.LogMaxBytes
	}
	result.LogMaxFiles = firstNonZero(overlay.LogMaxFiles, base.LogMaxFiles)
	result.ToastCapacity = firstNonZero(overlay.ToastCapacity, base.ToastCapacity)
	result.DBMaxOpenConns = firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.LogLevel = strings.TrimSpace(overlay.LogLevel)
	if result.LogLevel == "" {
		result.LogLevel = base.LogLevel
	}

	// Booleans: overlay wins if set
	result.PrivacyFilterEnabled = pickBool(overlay.PrivacyFilterEnabled, base.PrivacyFilterEnabled)
	result.ShowOperationToasts = pickBool(overlay.ShowOperationToasts, base.ShowOperationToasts)
	result.AutoPasteEnabled = pickBool(overlay.AutoPasteEnabled, base.AutoPasteEnabled)
	result.PermissionReminderEnabled = pickBool(overlay.PermissionReminderEnabled, base.PermissionReminderEnabled)

	// Arrays: merge and deduplicate
	result.ExcludedBundleIDs = mergeStringSlice(base.ExcludedBundleIDs, overlay.ExcludedBundleIDs)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func pickBool(overlay, base *bool) *bool {
	if overlay != nil {
		v := *overlay
		return &v
	}
	if base != nil {
		v := *base
		return &v
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
