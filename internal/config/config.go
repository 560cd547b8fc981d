/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration of geoproof: a YAML file in the
// per-user config directory, overridden by GEOPROOF_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	applog "geoproof/internal/log"
	"geoproof/internal/render"
	"geoproof/internal/storage"
	"geoproof/internal/vector"
)

// AppConfig is the user-editable configuration persisted as YAML.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Render        RenderConfig  `yaml:"render"`
	Picking       PickingConfig `yaml:"picking"`
	Library       LibraryConfig `yaml:"library"`
	Logging       LoggingConfig `yaml:"logging"`
	Export        ExportConfig  `yaml:"export"`
	Server        ServerConfig  `yaml:"server"`
}

type GeneralConfig struct {
	Theme string `yaml:"theme"` // "dark" | "light"
	Touch bool   `yaml:"touch"`
}

// RenderConfig sizes are in NDC units.
type RenderConfig struct {
	LineWidth        float64 `yaml:"line_width"`
	TouchLineWidth   float64 `yaml:"touch_line_width"`
	PointRadius      float64 `yaml:"point_radius"`
	TouchPointRadius float64 `yaml:"touch_point_radius"`
	CircleStep       float64 `yaml:"circle_step"`
	InitialBuffer    int     `yaml:"initial_buffer"`
}

type PickingConfig struct {
	PointThreshold        float64 `yaml:"point_threshold"`
	SegmentThreshold      float64 `yaml:"segment_threshold"`
	TouchPointThreshold   float64 `yaml:"touch_point_threshold"`
	TouchSegmentThreshold float64 `yaml:"touch_segment_threshold"`
	SpritePx              float64 `yaml:"sprite_px"`
}

// LibraryConfig selects the proof library. An empty DSN with the sqlite
// driver means library.sqlite next to the config file.
type LibraryConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type ExportConfig struct {
	SizePx   int  `yaml:"size_px"`
	Captions bool `yaml:"captions"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: string(render.Dark), Touch: false},
		Render: RenderConfig{
			LineWidth:        0.01,
			TouchLineWidth:   0.025,
			PointRadius:      0.013,
			TouchPointRadius: 0.025,
			CircleStep:       vector.DefaultCircleStep,
			InitialBuffer:    1024,
		},
		Picking: PickingConfig{
			PointThreshold:        0.05,
			SegmentThreshold:      0.03,
			TouchPointThreshold:   0.08,
			TouchSegmentThreshold: 0.1,
			SpritePx:              5,
		},
		Library: LibraryConfig{Driver: storage.DriverSQLite},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Export:  ExportConfig{SizePx: 800},
		Server:  ServerConfig{Addr: "localhost:8080"},
	}
}

// EnvPrefix is prepended to every override variable.
const EnvPrefix = "GEOPROOF"

// Env var names used as overrides.
const (
	EnvConfigPath    = "GEOPROOF_CONFIG"
	EnvTheme         = "GEOPROOF_THEME"
	EnvTouch         = "GEOPROOF_TOUCH"
	EnvLibraryDriver = "GEOPROOF_LIBRARY_DRIVER"
	EnvLibraryDSN    = "GEOPROOF_LIBRARY_DSN"
	EnvExportSize    = "GEOPROOF_EXPORT_SIZE"
	EnvServerAddr    = "GEOPROOF_SERVER_ADDR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

// envOverrides is filled by envconfig. Nil fields were not set.
type envOverrides struct {
	Theme         *string `envconfig:"THEME"`
	Touch         *bool   `envconfig:"TOUCH"`
	LibraryDriver *string `envconfig:"LIBRARY_DRIVER"`
	LibraryDSN    *string `envconfig:"LIBRARY_DSN"`
	ExportSize    *int    `envconfig:"EXPORT_SIZE"`
	ServerAddr    *string `envconfig:"SERVER_ADDR"`
	LogLevel      *string `envconfig:"LOG_LEVEL"`
	LogFormat     *string `envconfig:"LOG_FORMAT"`
	LogSource     *bool   `envconfig:"LOG_SOURCE"`
	LogFile       *string `envconfig:"LOG_FILE"`
}

// Dir returns the per-user config directory.
func Dir() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return filepath.Dir(p), nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GeoProof")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GeoProof")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "geoproof")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "geoproof")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path. GEOPROOF_CONFIG replaces it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. A malformed file is reported but the defaults are
// still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, fileErr
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
	if t := strings.ToLower(strings.TrimSpace(src.General.Theme)); t != "" {
		dst.General.Theme = t
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.Touch = src.General.Touch
	mergeFloat(&dst.Render.LineWidth, src.Render.LineWidth)
	mergeFloat(&dst.Render.TouchLineWidth, src.Render.TouchLineWidth)
	mergeFloat(&dst.Render.PointRadius, src.Render.PointRadius)
	mergeFloat(&dst.Render.TouchPointRadius, src.Render.TouchPointRadius)
	mergeFloat(&dst.Render.CircleStep, src.Render.CircleStep)
	if src.Render.InitialBuffer > 0 {
		dst.Render.InitialBuffer = src.Render.InitialBuffer
	}
	mergeFloat(&dst.Picking.PointThreshold, src.Picking.PointThreshold)
	mergeFloat(&dst.Picking.SegmentThreshold, src.Picking.SegmentThreshold)
	mergeFloat(&dst.Picking.TouchPointThreshold, src.Picking.TouchPointThreshold)
	mergeFloat(&dst.Picking.TouchSegmentThreshold, src.Picking.TouchSegmentThreshold)
	mergeFloat(&dst.Picking.SpritePx, src.Picking.SpritePx)
	if d := strings.ToLower(strings.TrimSpace(src.Library.Driver)); d != "" {
		dst.Library.Driver = d
	}
	if s := strings.TrimSpace(src.Library.DSN); s != "" {
		dst.Library.DSN = s
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
	if src.Export.SizePx > 0 {
		dst.Export.SizePx = src.Export.SizePx
	}
	dst.Export.Captions = src.Export.Captions
	if a := strings.TrimSpace(src.Server.Addr); a != "" {
		dst.Server.Addr = a
	}
}

func mergeFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func applyEnvOverrides(cfg *AppConfig) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	if env.Theme != nil && *env.Theme != "" {
		cfg.General.Theme = strings.ToLower(strings.TrimSpace(*env.Theme))
	}
	if env.Touch != nil {
		cfg.General.Touch = *env.Touch
	}
	if env.LibraryDriver != nil && *env.LibraryDriver != "" {
		cfg.Library.Driver = strings.ToLower(strings.TrimSpace(*env.LibraryDriver))
	}
	if env.LibraryDSN != nil && *env.LibraryDSN != "" {
		cfg.Library.DSN = *env.LibraryDSN
	}
	if env.ExportSize != nil && *env.ExportSize > 0 {
		cfg.Export.SizePx = *env.ExportSize
	}
	if env.ServerAddr != nil && *env.ServerAddr != "" {
		cfg.Server.Addr = *env.ServerAddr
	}
	// logging overrides
	if env.LogLevel != nil && *env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(*env.LogLevel)
	}
	if env.LogFormat != nil && *env.LogFormat != "" {
		cfg.Logging.Format = strings.ToLower(*env.LogFormat)
	}
	if env.LogSource != nil {
		cfg.Logging.Source = *env.LogSource
	}
	if env.LogFile != nil && *env.LogFile != "" {
		cfg.Logging.File = *env.LogFile
	}
	return nil
}

var envKeys = map[string]string{
	"general.theme":  EnvTheme,
	"general.touch":  EnvTouch,
	"library.driver": EnvLibraryDriver,
	"library.dsn":    EnvLibraryDSN,
	"export.size_px": EnvExportSize,
	"server.addr":    EnvServerAddr,
	"logging.level":  EnvLogLevel,
	"logging.format": EnvLogFormat,
	"logging.source": EnvLogSource,
	"logging.file":   EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// RenderOptions converts the render section, honoring the touch setting.
func (c AppConfig) RenderOptions() render.Options {
	o := render.DefaultOptions(c.General.Touch)
	o.Theme = render.Theme(c.General.Theme)
	if c.General.Touch {
		o.LineWidth, o.PointRadius = c.Render.TouchLineWidth, c.Render.TouchPointRadius
	} else {
		o.LineWidth, o.PointRadius = c.Render.LineWidth, c.Render.PointRadius
	}
	o.CircleStep = c.Render.CircleStep
	o.InitialBuffer = c.Render.InitialBuffer
	return o
}

// Tolerance returns the hit radii for a canvas of canvasPx pixels.
func (c AppConfig) Tolerance(canvasPx float64) vector.Tolerance {
	t := vector.Tolerance{
		Point:    c.Picking.PointThreshold,
		Segment:  c.Picking.SegmentThreshold,
		SpritePx: c.Picking.SpritePx,
		CanvasPx: canvasPx,
	}
	if c.General.Touch {
		t.Point, t.Segment = c.Picking.TouchPointThreshold, c.Picking.TouchSegmentThreshold
	}
	return t
}

// LogOptions converts the logging section.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// LibraryDSN resolves the library connection string, defaulting the sqlite
// file into the config directory.
func (c AppConfig) LibraryDSN() (string, error) {
	if c.Library.DSN != "" {
		return c.Library.DSN, nil
	}
	if c.Library.Driver != "" && c.Library.Driver != storage.DriverSQLite {
		return "", fmt.Errorf("library.dsn is required for driver %q", c.Library.Driver)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, storage.LibraryFileName), nil
}
