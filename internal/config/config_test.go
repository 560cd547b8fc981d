/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"geoproof/internal/render"
	"geoproof/internal/storage"
)

// isolate points the config file into a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)
	for _, name := range envKeys {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("Load() = %#v, want defaults", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := isolate(t)
	cfg := Defaults()
	cfg.General.Theme = "light"
	cfg.General.Touch = true
	cfg.Render.LineWidth = 0.02
	cfg.Export.Captions = true
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip = %#v, want %#v", got, cfg)
	}
}

func TestLoadReportsMalformedFile(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("general: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Render.PointRadius != Defaults().Render.PointRadius {
		t.Fatalf("defaults not returned with parse error")
	}
}

func TestMergeKeepsDefaultsForZeroValues(t *testing.T) {
	dst := Defaults()
	src := AppConfig{General: GeneralConfig{Theme: " Light "}, Picking: PickingConfig{PointThreshold: 0.07}}
	mergeInto(&dst, &src)
	if dst.General.Theme != "light" {
		t.Fatalf("theme = %q", dst.General.Theme)
	}
	if dst.Picking.PointThreshold != 0.07 || dst.Picking.SegmentThreshold != 0.03 {
		t.Fatalf("picking merged incorrectly: %#v", dst.Picking)
	}
	if dst.Render.InitialBuffer != 1024 || dst.Export.SizePx != 800 {
		t.Fatalf("zero values overwrote defaults: %#v %#v", dst.Render, dst.Export)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/geoproof.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/geoproof.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTheme, "LIGHT")
	t.Setenv(EnvTouch, "true")
	t.Setenv(EnvLibraryDriver, "postgres")
	t.Setenv(EnvLibraryDSN, "postgres://localhost/geoproof")
	t.Setenv(EnvExportSize, "1200")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogSource, "1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.General.Theme != "light" || !cfg.General.Touch {
		t.Fatalf("general overrides not applied: %#v", cfg.General)
	}
	if cfg.Library.Driver != "postgres" || cfg.Library.DSN != "postgres://localhost/geoproof" {
		t.Fatalf("library overrides not applied: %#v", cfg.Library)
	}
	if cfg.Export.SizePx != 1200 || cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Fatalf("overrides not applied: %#v %#v", cfg.Export, cfg.Logging)
	}
}

func TestEnvOverrideRejectsBadValue(t *testing.T) {
	isolate(t)
	t.Setenv(EnvExportSize, "big")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric %s", EnvExportSize)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	isolate(t)
	if _, ok := EnvOverrideFor("logging.level"); ok {
		t.Fatalf("logging.level reported as overridden")
	}
	t.Setenv(EnvLogLevel, "debug")
	if name, ok := EnvOverrideFor("logging.level"); !ok || name != EnvLogLevel {
		t.Fatalf("EnvOverrideFor = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("render.line_width"); ok {
		t.Fatalf("render.line_width has no env override")
	}
}

func TestRenderOptionsAndTolerance(t *testing.T) {
	cfg := Defaults()
	o := cfg.RenderOptions()
	if o.Theme != render.Dark || o.LineWidth != 0.01 || o.PointRadius != 0.013 {
		t.Fatalf("desktop options = %#v", o)
	}
	tol := cfg.Tolerance(400)
	if tol.Point != 0.05 || tol.Segment != 0.03 || tol.CanvasPx != 400 {
		t.Fatalf("desktop tolerance = %#v", tol)
	}

	cfg.General.Touch = true
	o = cfg.RenderOptions()
	if o.LineWidth != 0.025 || o.PointRadius != 0.025 {
		t.Fatalf("touch options = %#v", o)
	}
	tol = cfg.Tolerance(0)
	if tol.Point != 0.08 || tol.Segment != 0.1 {
		t.Fatalf("touch tolerance = %#v", tol)
	}
}

func TestLibraryDSN(t *testing.T) {
	path := isolate(t)
	cfg := Defaults()
	dsn, err := cfg.LibraryDSN()
	if err != nil {
		t.Fatalf("LibraryDSN() error: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), storage.LibraryFileName); dsn != want {
		t.Fatalf("LibraryDSN() = %q, want %q", dsn, want)
	}
	cfg.Library.Driver = storage.DriverPostgres
	if _, err := cfg.LibraryDSN(); err == nil {
		t.Fatalf("postgres without dsn should fail")
	}
}
