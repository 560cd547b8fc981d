/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// silenceStderr swaps os.Stderr for a pipe for the duration of the test.
func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() { _, _ = io.Copy(io.Discard, r); close(done) }()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	})
}

func stubExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func findReports(t *testing.T, dir, ext string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	silenceStderr(t)
	code := stubExit(t)
	dir := filepath.Join(t.TempDir(), "crashes")
	s := &Session{Dir: dir, Source: "isosceles.yc", Snapshot: func() ([]byte, error) { return []byte(`{"geometry":{}}`), nil }}

	func() {
		defer Recover(s)
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	logs := findReports(t, dir, ".log")
	if len(logs) != 1 {
		t.Fatalf("expected one crash report, got %v", logs)
	}
	b, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"GeoProof Crash Report", "Proof: isosceles.yc", "Panic: boom", "Stack:"} {
		if !bytes.Contains(b, []byte(want)) {
			t.Fatalf("report lacks %q:\n%s", want, b)
		}
	}
	snaps := findReports(t, dir, ".json")
	if len(snaps) != 1 {
		t.Fatalf("expected one snapshot, got %v", snaps)
	}
	if b, _ := os.ReadFile(snaps[0]); string(b) != `{"geometry":{}}` {
		t.Fatalf("snapshot = %s", b)
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	code := stubExit(t)
	func() {
		defer Recover(nil)
	}()
	if *code != -1 {
		t.Fatalf("exit called with %d", *code)
	}
}

func TestRecoverSurvivesSnapshotError(t *testing.T) {
	silenceStderr(t)
	code := stubExit(t)
	dir := t.TempDir()
	s := &Session{Dir: dir, Snapshot: func() ([]byte, error) { return nil, errors.New("no document") }}

	func() {
		defer Recover(s)
		panic(errors.New("render failed"))
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	if len(findReports(t, dir, ".log")) != 1 {
		t.Fatalf("report missing")
	}
	if len(findReports(t, dir, ".json")) != 0 {
		t.Fatalf("unexpected snapshot")
	}
}

func TestWriteReportDefaultsToTempDir(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	path, err := writeReport(nil, "x", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	if filepath.Dir(path) != os.TempDir() {
		t.Fatalf("report at %s, want under %s", path, os.TempDir())
	}
}
