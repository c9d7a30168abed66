package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// candidateNames are tried in order inside DefaultDir.
var candidateNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// fileConfig mirrors Config with the timeout as text ("5s").
type fileConfig struct {
	APIURL       *string `toml:"api_url" yaml:"api_url" json:"api_url"`
	Token        *string `toml:"token" yaml:"token" json:"token"`
	Timeout      *string `toml:"timeout" yaml:"timeout" json:"timeout"`
	StrictStatus *bool   `toml:"strict_status" yaml:"strict_status" json:"strict_status"`
	Theme        *string `toml:"theme" yaml:"theme" json:"theme"`
	LogLevel     *string `toml:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat    *string `toml:"log_format" yaml:"log_format" json:"log_format"`
	LogFile      *string `toml:"log_file" yaml:"log_file" json:"log_file"`
	Group        *bool   `toml:"group" yaml:"group" json:"group"`
}

// findConfigFile returns the file to load. An explicit path must exist;
// the default locations are optional.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		p := expandPath(explicit)
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return p, nil
	}
	dir := DefaultDir()
	for _, name := range candidateNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// loadFile decodes path by extension and merges set keys into cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &fc)
		if err != nil {
			return err
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return fmt.Errorf("unknown key %q", undec[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}

	return fc.merge(cfg)
}

func (fc fileConfig) merge(cfg *Config) error {
	if fc.APIURL != nil {
		cfg.APIURL = *fc.APIURL
	}
	if fc.Token != nil {
		cfg.Token = *fc.Token
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.Timeout))
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.StrictStatus != nil {
		cfg.StrictStatus = *fc.StrictStatus
	}
	if fc.Theme != nil {
		cfg.Theme = *fc.Theme
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Group != nil {
		cfg.Group = *fc.Group
	}
	return nil
}
