// Package config loads ~/.shegen.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the home directory.
const FileName = ".shegen.yaml"

type Config struct {
	SaveDirectory string  `yaml:"save_directory"`
	Confirmations bool    `yaml:"confirmations"`
	GridSize      float64 `yaml:"grid_size" validate:"gt=0,lte=500"`
	CanvasWidth   float64 `yaml:"canvas_width" validate:"gte=100"`
	CanvasHeight  float64 `yaml:"canvas_height" validate:"gte=100"`
	Magnet        bool    `yaml:"magnet"`
	Layer         bool    `yaml:"layer"`
	HistoryLimit  int     `yaml:"history_limit" validate:"gte=1,lte=10000"`
	LogFile       string  `yaml:"log_file"`
	LogLevel      string  `yaml:"log_level" validate:"oneof=debug info warn error"`
	Environment   string  `yaml:"environment" validate:"oneof=development production"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Confirmations: true,
		GridSize:      25,
		CanvasWidth:   2000,
		CanvasHeight:  2000,
		HistoryLimit:  200,
		LogLevel:      "info",
		Environment:   "production",
	}
}

// DefaultPath returns ~/.shegen.yaml, or "" when there is no home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load reads the config at path over the defaults. A missing file is not
// an error. An empty path means DefaultPath. SHEGEN_LOG_LEVEL and
// SHEGEN_SAVE_DIR override the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("SHEGEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("SHEGEN_SAVE_DIR"); v != "" {
		cfg.SaveDirectory = v
	}
	cfg.SaveDirectory = expandPath(cfg.SaveDirectory)
	cfg.LogFile = expandPath(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p
}

var validate = validator.New()

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := yamlName(e.StructField())
	switch e.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// yamlName maps a struct field to its key in the file.
func yamlName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GetSavePath places filename in the save directory, creating it if
// needed. Without a save directory the name is returned unchanged.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	_ = os.MkdirAll(c.SaveDirectory, 0o755)
	return filepath.Join(c.SaveDirectory, filename)
}
