/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

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

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Year           int    `yaml:"year"`
	Country        string `yaml:"country"` // holiday labels; "NONE" disables
}

// EditorConfig tunes the placement and extraction tools.
type EditorConfig struct {
	JitterPercent        float64 `yaml:"jitter_percent"`
	JitterDegrees        float64 `yaml:"jitter_degrees"`
	MinExtractPx         float64 `yaml:"min_extract_px"`
	MinScale             float64 `yaml:"min_scale"`
	ResizePerPx          float64 `yaml:"resize_per_px"`
	HistoryMaxEntries    int     `yaml:"history_max_entries"`
	SkipIdenticalCommits bool    `yaml:"skip_identical_commits"`
}

type AIConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	ImageModel string `yaml:"image_model"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	// The API key is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Editor        EditorConfig  `yaml:"editor"`
	AI            AIConfig      `yaml:"ai"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Year: 2026, Country: "NONE"},
		Editor: EditorConfig{
			JitterPercent:        10,
			JitterDegrees:        10,
			MinExtractPx:         20,
			MinScale:             0.2,
			ResizePerPx:          0.01,
			HistoryMaxEntries:    500,
			SkipIdenticalCommits: true,
		},
		AI: AIConfig{
			BaseURL:    "https://generativelanguage.googleapis.com",
			Model:      "gemini-2.5-flash",
			ImageModel: "gemini-2.5-flash-image",
			TimeoutMs:  30000,
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvAIBaseURL      = "GSP_AI_BASE_URL"
	EnvAIModel        = "GSP_AI_MODEL"
	EnvAITimeoutMs    = "GSP_AI_TIMEOUT_MS"
	EnvAIAPIKey       = "GSP_AI_API_KEY"
	EnvTelemetryOptIn = "GSP_TELEMETRY_OPT_IN"
	EnvYear           = "GSP_YEAR"
	EnvCountry        = "GSP_COUNTRY"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GSP_LOG_LEVEL"
	EnvLogFormat = "GSP_LOG_FORMAT"
	EnvLogSource = "GSP_LOG_SOURCE"
	EnvLogFile   = "GSP_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoStickerPlanner")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoStickerPlanner")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "gostickerplanner")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gostickerplanner")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the AI API key from keyring (not kept inside the struct; returned separately).
// GSP_AI_API_KEY wins over the keyring value.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if k := strings.TrimSpace(os.Getenv(EnvAIAPIKey)); k != "" {
		return cfg, k, nil
	}
	key, _ := tokenStore.Get(keyringService, keyringAPIKey)
	return cfg, key, nil
}

// Save writes the user config YAML and persists the API key into OS keyring (if non-empty).
func Save(cfg AppConfig, apiKey string) error {
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
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if apiKey != "" {
		if err := tokenStore.Set(keyringService, keyringAPIKey, apiKey); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.General.Year != 0 {
		dst.General.Year = src.General.Year
	}
	if c := strings.TrimSpace(src.General.Country); c != "" {
		dst.General.Country = strings.ToUpper(c)
	}
	// editor: zero means "not set" for every numeric knob
	if src.Editor.JitterPercent > 0 {
		dst.Editor.JitterPercent = src.Editor.JitterPercent
	}
	if src.Editor.JitterDegrees > 0 {
		dst.Editor.JitterDegrees = src.Editor.JitterDegrees
	}
	if src.Editor.MinExtractPx > 0 {
		dst.Editor.MinExtractPx = src.Editor.MinExtractPx
	}
	if src.Editor.MinScale > 0 {
		dst.Editor.MinScale = src.Editor.MinScale
	}
	if src.Editor.ResizePerPx > 0 {
		dst.Editor.ResizePerPx = src.Editor.ResizePerPx
	}
	if src.Editor.HistoryMaxEntries != 0 {
		dst.Editor.HistoryMaxEntries = src.Editor.HistoryMaxEntries
	}
	dst.Editor.SkipIdenticalCommits = src.Editor.SkipIdenticalCommits
	if strings.TrimSpace(src.AI.BaseURL) != "" {
		dst.AI.BaseURL = strings.TrimSpace(src.AI.BaseURL)
	}
	if strings.TrimSpace(src.AI.Model) != "" {
		dst.AI.Model = strings.TrimSpace(src.AI.Model)
	}
	if strings.TrimSpace(src.AI.ImageModel) != "" {
		dst.AI.ImageModel = strings.TrimSpace(src.AI.ImageModel)
	}
	if src.AI.TimeoutMs != 0 {
		dst.AI.TimeoutMs = src.AI.TimeoutMs
	}
	// logging
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

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAIBaseURL)); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAIModel)); v != "" {
		cfg.AI.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAITimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AI.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvYear)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.General.Year = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCountry)); v != "" {
		cfg.General.Country = strings.ToUpper(v)
	}
	// logging overrides
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

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	envs := map[string]string{
		"ai.base_url":              EnvAIBaseURL,
		"ai.model":                 EnvAIModel,
		"ai.timeout_ms":            EnvAITimeoutMs,
		"general.telemetry_opt_in": EnvTelemetryOptIn,
		"general.year":             EnvYear,
		"general.country":          EnvCountry,
		"logging.level":            EnvLogLevel,
		"logging.format":           EnvLogFormat,
		"logging.source":           EnvLogSource,
		"logging.file":             EnvLogFile,
	}
	name, ok := envs[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Timeout returns the AI request timeout, falling back to the default when unset.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutMs <= 0 {
		return time.Duration(Defaults().AI.TimeoutMs) * time.Millisecond
	}
	return time.Duration(a.TimeoutMs) * time.Millisecond
}
