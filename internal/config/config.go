// Package config resolves taskview settings from defaults, a config file,
// the environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	// AppName is the directory name under the user config dir.
	AppName = "taskview"

	// DefaultAPIURL is used when nothing else sets the API base.
	DefaultAPIURL = "http://localhost:15000"

	// EnvAPIURL is the only setting read from the environment.
	EnvAPIURL = "TADA_API_URL"
)

// Config holds resolved settings.
type Config struct {
	APIURL       string
	Token        string
	Timeout      time.Duration
	StrictStatus bool
	Theme        string
	LogLevel     string
	LogFormat    string
	LogFile      string

	// Group lists one-shot output grouped by pending/done.
	Group bool

	// File is the config file that was loaded, if any.
	File string
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		APIURL:       DefaultAPIURL,
		StrictStatus: true,
		Theme:        "classic",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Flags are the command-line overrides. Only flags the user actually
// passed override lower layers.
type Flags struct {
	fs *pflag.FlagSet

	ConfigFile string
	APIURL     string
	Token      string
	Timeout    time.Duration
	Theme      string
	LogLevel   string
	LogFormat  string
	LogFile    string
	Group      bool
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "config file (toml, yaml or json)")
	fs.StringVar(&f.APIURL, "api-url", "", "task API base URL (default "+DefaultAPIURL+")")
	fs.StringVar(&f.Token, "token", "", "bearer token sent to the task API")
	fs.DurationVar(&f.Timeout, "timeout", 0, "per-request timeout (0 waits forever)")
	fs.StringVar(&f.Theme, "theme", "", "color theme: classic, neon or mono")
	fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&f.LogFormat, "log-format", "", "log format: text, json or logfmt")
	fs.StringVar(&f.LogFile, "log-file", "", "append logs to this file")
	fs.BoolVar(&f.Group, "group", false, "group listed tasks by pending/done")
	return f
}

// Load resolves the configuration. flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := Defaults()

	explicit := ""
	if flags != nil {
		explicit = flags.ConfigFile
	}
	path, err := findConfigFile(explicit)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg.File = path
	}

	loadFromEnv(&cfg)

	if flags != nil {
		flags.apply(&cfg)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
}

func (f *Flags) apply(cfg *Config) {
	changed := func(name string) bool {
		return f.fs != nil && f.fs.Changed(name)
	}
	if changed("api-url") {
		cfg.APIURL = f.APIURL
	}
	if changed("token") {
		cfg.Token = f.Token
	}
	if changed("timeout") {
		cfg.Timeout = f.Timeout
	}
	if changed("theme") {
		cfg.Theme = f.Theme
	}
	if changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.LogFormat
	}
	if changed("log-file") {
		cfg.LogFile = f.LogFile
	}
	if changed("group") {
		cfg.Group = f.Group
	}
}

// finalize normalizes and validates the merged settings.
func (c *Config) finalize() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.LogFile = expandPath(c.LogFile)

	var errs []error
	u, err := url.Parse(c.APIURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("api_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("api_url %q: scheme must be http or https", c.APIURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("api_url %q: missing host", c.APIURL))
	}
	if !oneOf(c.Theme, "classic", "neon", "mono") {
		errs = append(errs, fmt.Errorf("theme %q: want classic, neon or mono", c.Theme))
	}
	if !oneOf(c.LogLevel, "debug", "info", "warn", "error") {
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	if !oneOf(c.LogFormat, "text", "json", "logfmt") {
		errs = append(errs, fmt.Errorf("log_format %q: want text, json or logfmt", c.LogFormat))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s: must not be negative", c.Timeout))
	}
	return errors.Join(errs...)
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

// DefaultDir returns the config directory: $XDG_CONFIG_HOME/taskview or
// ~/.config/taskview.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
