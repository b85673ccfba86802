/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration for pagebuilder from a YAML file
// in the user scope and applies PB_* environment overrides on top.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CanvasConfig describes the editing surface.
type CanvasConfig struct {
	GridSize int `yaml:"grid_size"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
}

// EditorConfig bounds the in-memory edit history.
type EditorConfig struct {
	HistoryMaxBytes   int  `yaml:"history_max_bytes"`
	HistoryMaxDepth   int  `yaml:"history_max_depth"`
	HistoryCoalesceMs int  `yaml:"history_coalesce_ms"`
	SampleContent     bool `yaml:"sample_content"` // seed new pages with the welcome elements
}

// TemplatesConfig points at extra YAML templates shipped by the user.
type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Canvas        CanvasConfig    `yaml:"canvas"`
	Editor        EditorConfig    `yaml:"editor"`
	Templates     TemplatesConfig `yaml:"templates"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{GridSize: 20, Width: 1200, Height: 800},
		Editor:        EditorConfig{HistoryMaxBytes: 8 * 1024 * 1024, HistoryMaxDepth: 100, HistoryCoalesceMs: 250},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile   = "PB_CONFIG"
	EnvGridSize     = "PB_GRID_SIZE"
	EnvTemplatesDir = "PB_TEMPLATES_DIR"
	EnvLogLevel     = "PB_LOG_LEVEL"
	EnvLogFormat    = "PB_LOG_FORMAT"
	EnvLogSource    = "PB_LOG_SOURCE"
	EnvLogFile      = "PB_LOG_FILE"
)

// ConfigPath returns the per-user config file path. PB_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageBuilder")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageBuilder")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "pagebuilder")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "pagebuilder")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges environment overrides.
// A malformed file is reported but defaults plus env overrides are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			parseErr = err
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Canvas.GridSize > 0 {
		dst.Canvas.GridSize = src.Canvas.GridSize
	}
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if src.Editor.HistoryMaxBytes > 0 {
		dst.Editor.HistoryMaxBytes = src.Editor.HistoryMaxBytes
	}
	if src.Editor.HistoryMaxDepth > 0 {
		dst.Editor.HistoryMaxDepth = src.Editor.HistoryMaxDepth
	}
	if src.Editor.HistoryCoalesceMs > 0 {
		dst.Editor.HistoryCoalesceMs = src.Editor.HistoryCoalesceMs
	}
	dst.Editor.SampleContent = src.Editor.SampleContent
	if strings.TrimSpace(src.Templates.Dir) != "" {
		dst.Templates.Dir = strings.TrimSpace(src.Templates.Dir)
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.GridSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTemplatesDir)); v != "" {
		cfg.Templates.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "canvas.grid_size":
		env = EnvGridSize
	case "templates.dir":
		env = EnvTemplatesDir
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// CoalesceWindow returns the history coalescing interval.
func (e EditorConfig) CoalesceWindow() time.Duration {
	if e.HistoryCoalesceMs <= 0 {
		return time.Duration(Defaults().Editor.HistoryCoalesceMs) * time.Millisecond
	}
	return time.Duration(e.HistoryCoalesceMs) * time.Millisecond
}
