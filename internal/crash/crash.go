/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics in the CLI and viewer into crash reports.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "geoproof/internal/log"
	"geoproof/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session describes what was open when the panic happened. Any field may be
// empty; a nil *Session is allowed.
type Session struct {
	// Dir receives the report; empty means os.TempDir().
	Dir string
	// Source names the proof being viewed (file path or library name).
	Source string
	// Snapshot returns the proof document so it survives the crash.
	Snapshot func() ([]byte, error)
}

// Recover captures a panic, logs it with its stack, writes a crash report
// and a snapshot of the open proof, then exits with status 2.
//
// Usage: defer crash.Recover(s)
func Recover(s *Session) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(s, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if path, err := writeSnapshot(s, reportPath); err != nil {
		l.Error("crash snapshot failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("crash snapshot written", slog.String("path", path))
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func reportDir(s *Session) string {
	if s != nil && s.Dir != "" {
		_ = os.MkdirAll(s.Dir, 0o755)
		return s.Dir
	}
	return os.TempDir()
}

func writeReport(s *Session, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(s), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "GeoProof Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if s != nil && s.Source != "" {
		_, _ = fmt.Fprintf(&buf, "Proof: %s\n", s.Source)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

// writeSnapshot stores the session document next to the report as
// crash-<stamp>.json.
func writeSnapshot(s *Session, reportPath string) (string, error) {
	if s == nil || s.Snapshot == nil {
		return "", nil
	}
	data, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	path := reportPath[:len(reportPath)-len(filepath.Ext(reportPath))] + ".json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
