/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m), "line %q", line)
		out = append(out, m)
	}
	return out
}

func TestConsoleLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l, c := New(Options{Level: "debug", Console: &buf})
	defer func() { _ = c.Close() }()

	l.With(slog.String("component", "render")).Debug("frame",
		slog.Int("calls", 3), slog.String("note", "two words"), slog.Any("err", errors.New("boom")))

	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3} DBG \[render\] frame `), line)
	assert.Contains(t, line, " calls=3")
	assert.Contains(t, line, ` note="two words"`)
	assert.Contains(t, line, " err=boom")
	assert.NotContains(t, line, "component=")
	assert.NotContains(t, line, "app=", "static attrs are kept out of the console line")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestConsoleGroupsAndSource(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Options{Console: &buf, AddSource: true})

	l.WithGroup("frame").With(slog.Int("step", 2)).Info("drawn", slog.Group("buf", slog.Int("floats", 1024)))

	line := buf.String()
	assert.Contains(t, line, " INF drawn")
	assert.Contains(t, line, " frame.step=2")
	assert.Contains(t, line, " frame.buf.floats=1024")
	assert.Contains(t, line, " src=logger_test.go:")
}

func TestLevelFiltering(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}

	var buf bytes.Buffer
	l, _ := New(Options{Level: "warn", Console: &buf})
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), " WRN shown")
}

func TestProofContextAddsAttribute(t *testing.T) {
	ctx := WithProof(context.Background(), "postulate1")
	name, ok := ProofFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "postulate1", name)
	_, ok = ProofFrom(context.Background())
	assert.False(t, ok)
	_, ok = ProofFrom(WithProof(context.Background(), ""))
	assert.False(t, ok)

	var js bytes.Buffer
	l, _ := New(Options{Format: "json", Console: &js})
	l.With(slog.String("component", "server")).InfoContext(ctx, "proof saved")
	l.Info("no proof")
	recs := decodeLines(t, js.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, "postulate1", recs[0]["proof"])
	assert.Equal(t, "server", recs[0]["component"])
	assert.Equal(t, "geoproof", recs[0]["app"])
	assert.NotContains(t, recs[1], "proof")

	var text bytes.Buffer
	l, _ = New(Options{Console: &text})
	l.WarnContext(ctx, "unresolved")
	assert.Contains(t, text.String(), " WRN unresolved proof=postulate1")
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geoproof.log")
	var console bytes.Buffer
	l, c := New(Options{Console: &console, File: path})

	WithOperation(l.With(slog.String("component", "storage")), "open").
		InfoContext(WithProof(context.Background(), "thales"), "library ready", slog.Duration("took", 1500*time.Millisecond))
	require.NoError(t, c.Close())

	assert.Contains(t, console.String(), "[storage] library ready op=open took=1.5s proof=thales")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	recs := decodeLines(t, data)
	require.Len(t, recs, 1)
	assert.Equal(t, "library ready", recs[0]["msg"])
	assert.Equal(t, "storage", recs[0]["component"])
	assert.Equal(t, "open", recs[0]["op"])
	assert.Equal(t, "thales", recs[0]["proof"])
	assert.Equal(t, "geoproof", recs[0]["app"])
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "1")
	t.Setenv(EnvFile, "")
	assert.Equal(t, Options{Level: "debug", Format: "json", AddSource: true}, FromEnv())

	t.Setenv(EnvSource, "maybe")
	assert.False(t, FromEnv().AddSource)
}

func TestInitInstallsDefault(t *testing.T) {
	t.Cleanup(func() {
		Init(Options{Console: io.Discard})
		_ = Close()
	})
	var buf bytes.Buffer
	Init(Options{Format: "json", Console: &buf})

	slog.Info("via slog")
	WithComponent("cli").Info("via package")
	recs := decodeLines(t, buf.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, "via slog", recs[0]["msg"])
	assert.Equal(t, "cli", recs[1]["component"])
	assert.NoError(t, Close())
	assert.NoError(t, Close())
}
