// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// ErrConfiguration marks fatal configuration problems. Errors wrapping it are
// surfaced immediately at startup and abort the program; nothing else does.
var ErrConfiguration = errors.New("configuration error")

// PageLoadStrategy values accepted for browser.page_load_strategy.
const (
	PageLoadNormal = "normal"
	PageLoadEager  = "eager"
	PageLoadNone   = "none"
)

// Config holds the full application configuration. It is mutated exactly once
// at load time (placeholder expansion, path normalization) and treated as
// immutable for the life of the session.
type Config struct {
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// BrowserConfig carries driver options plus the facade's own settings.
type BrowserConfig struct {
	Headless             bool   `mapstructure:"headless" yaml:"headless"`
	DisableSandbox       bool   `mapstructure:"disable_sandbox" yaml:"disable_sandbox"`
	StartMaximized       bool   `mapstructure:"start_maximized" yaml:"start_maximized"`
	UserAgent            string `mapstructure:"user_agent" yaml:"user_agent"`
	ProfilePath          string `mapstructure:"profile_path" yaml:"profile_path"`
	DownloadPath         string `mapstructure:"download_path" yaml:"download_path"`
	WindowSize           string `mapstructure:"window_size" yaml:"window_size"`
	PageLoadStrategy     string `mapstructure:"page_load_strategy" yaml:"page_load_strategy"`
	DisableDriverLogging bool   `mapstructure:"disable_driver_logging" yaml:"disable_driver_logging"`
	ExecutablePath       string `mapstructure:"executable_path" yaml:"executable_path"`

	KillOrphansBeforeStart bool `mapstructure:"kill_orphans_before_start" yaml:"kill_orphans_before_start"`
	KillBrowserBeforeStart bool `mapstructure:"kill_browser_before_start" yaml:"kill_browser_before_start"`
	QuitWhenDone           bool `mapstructure:"quit_when_done" yaml:"quit_when_done"`

	SessionPath     string        `mapstructure:"session_path" yaml:"session_path"`
	ScreenshotsPath string        `mapstructure:"screenshots_path" yaml:"screenshots_path"`
	GlobalTimeout   time.Duration `mapstructure:"global_timeout" yaml:"global_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	DebugOnException      bool `mapstructure:"debug_on_exception" yaml:"debug_on_exception"`
	ScreenshotOnException bool `mapstructure:"screenshot_on_exception" yaml:"screenshot_on_exception"`
}

// LoggingConfig configures the zap logger setup in internal/observability.
type LoggingConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	LogExceptions bool   `mapstructure:"log_exceptions" yaml:"log_exceptions"`
	DisplayStdout bool   `mapstructure:"display_stdout" yaml:"display_stdout"`
	Mode          string `mapstructure:"mode" yaml:"mode"`
}

// SetDefaults initializes default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_sandbox", false)
	v.SetDefault("browser.start_maximized", false)
	v.SetDefault("browser.quit_when_done", true)
	v.SetDefault("browser.kill_orphans_before_start", false)
	v.SetDefault("browser.kill_browser_before_start", false)
	v.SetDefault("browser.global_timeout", 5*time.Second)
	v.SetDefault("browser.poll_interval", 500*time.Millisecond)
	v.SetDefault("browser.debug_on_exception", false)
	v.SetDefault("browser.screenshot_on_exception", false)

	// -- Logging --
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_exceptions", true)
	v.SetDefault("logging.display_stdout", true)
	v.SetDefault("logging.mode", "append")
}

// Load expands placeholders on the viper instance, unmarshals the result and
// validates it. The returned Config is ready for the life of the session.
func Load(v *viper.Viper) (*Config, error) {
	if err := expandPlaceholders(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling config: %v", ErrConfiguration, err)
	}

	cfg.Browser.PageLoadStrategy = strings.ToLower(cfg.Browser.PageLoadStrategy)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Mode = strings.ToLower(cfg.Logging.Mode)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var placeholderRE = regexp.MustCompile(`{{\s*([A-Za-z_][A-Za-z0-9_]*)\s*}}`)

// expandPlaceholders substitutes {{ENV_VAR}} markers in every string setting
// against the process environment. Keys whose name contains "path" are
// filesystem-normalized after substitution.
func expandPlaceholders(v *viper.Viper) error {
	for _, key := range v.AllKeys() {
		raw, ok := v.Get(key).(string)
		if !ok {
			continue
		}

		expanded := placeholderRE.ReplaceAllStringFunc(raw, func(m string) string {
			name := placeholderRE.FindStringSubmatch(m)[1]
			if val, found := os.LookupEnv(name); found {
				return val
			}
			// Undefined variables are left in place, matching the substitution
			// being best-effort at load time.
			return m
		})

		if strings.Contains(key, "path") && expanded != "" {
			normalized, err := NormalizePath(expanded)
			if err != nil {
				return fmt.Errorf("%w: normalizing %s: %v", ErrConfiguration, key, err)
			}
			expanded = normalized
		}

		if expanded != raw {
			v.Set(key, expanded)
		}
	}
	return nil
}

// NormalizePath expands a leading "~" and resolves the path to absolute.
func NormalizePath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

var validLogLevels = map[string]bool{
	"debug":    true,
	"info":     true,
	"warning":  true,
	"warn":     true,
	"error":    true,
	"critical": true,
	"fatal":    true,
}

// Validate checks enumerated options and sane values. Any failure here is a
// ConfigurationError and must abort startup, before any navigation happens.
func (c *Config) Validate() error {
	switch c.Browser.PageLoadStrategy {
	case "", PageLoadNormal, PageLoadEager, PageLoadNone:
	default:
		return fmt.Errorf("%w: browser.page_load_strategy must be one of normal, eager, none; got %q",
			ErrConfiguration, c.Browser.PageLoadStrategy)
	}

	if c.Browser.GlobalTimeout <= 0 {
		return fmt.Errorf("%w: browser.global_timeout must be a positive duration", ErrConfiguration)
	}
	if c.Browser.PollInterval <= 0 {
		return fmt.Errorf("%w: browser.poll_interval must be a positive duration", ErrConfiguration)
	}
	if ws := c.Browser.WindowSize; ws != "" {
		if _, _, err := ParseWindowSize(ws); err != nil {
			return err
		}
	}

	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("%w: logging.level must be one of debug, info, warning, error, critical; got %q",
			ErrConfiguration, c.Logging.Level)
	}
	switch c.Logging.Mode {
	case "append", "write":
	default:
		return fmt.Errorf("%w: logging.mode must be append or write; got %q", ErrConfiguration, c.Logging.Mode)
	}
	return nil
}

// ParseWindowSize parses a "WIDTHxHEIGHT" spec like "1280x800".
func ParseWindowSize(spec string) (width, height int, err error) {
	if _, scanErr := fmt.Sscanf(spec, "%dx%d", &width, &height); scanErr != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: browser.window_size must look like 1280x800; got %q", ErrConfiguration, spec)
	}
	return width, height, nil
}

// NewDefaultConfig returns a Config populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		// Defaults are static; this cannot fail unless the defaults themselves
		// are broken.
		panic(fmt.Sprintf("failed to load default config: %v", err))
	}
	return cfg
}
