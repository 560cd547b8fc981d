/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures geoproof's slog logging.
//
// Console output is either a compact line per record
//
//	15:04:05.000 INF [render] frame calls=12 proof=postulate1
//
// or JSON. An optional file sink always writes JSON and rotates through
// lumberjack. Records logged with a context from WithProof carry the proof
// name as proof=<name>.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"geoproof/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, format and sinks.
type Options struct {
	Level     string // debug, info, warn or error
	Format    string // "console" or "json"
	AddSource bool
	File      string    // rotated JSON log file; empty disables it
	Console   io.Writer // nil means os.Stderr
}

// Environment variables read by FromEnv.
const (
	EnvLevel  = "GEOPROOF_LOG_LEVEL"
	EnvFormat = "GEOPROOF_LOG_FORMAT"
	EnvSource = "GEOPROOF_LOG_SOURCE"
	EnvFile   = "GEOPROOF_LOG_FILE"
)

// Rotation limits of the file sink.
const (
	fileMaxMB      = 10
	fileMaxBackups = 3
	fileMaxDays    = 28
)

var (
	mu      sync.RWMutex
	current *slog.Logger
	sink    io.Closer
)

// FromEnv reads Options from the GEOPROOF_LOG_* variables.
func FromEnv() Options {
	src, _ := strconv.ParseBool(os.Getenv(EnvSource))
	return Options{
		Level:     os.Getenv(EnvLevel),
		Format:    os.Getenv(EnvFormat),
		AddSource: src,
		File:      os.Getenv(EnvFile),
	}
}

// New builds a logger from opts without installing it. The returned closer
// releases the file sink and is never nil.
func New(opts Options) (*slog.Logger, io.Closer) {
	level := ParseLevel(opts.Level)
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	static := []slog.Attr{slog.String("app", "geoproof"), slog.String("ver", version.Version)}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}).WithAttrs(static)
	} else {
		console = &consoleHandler{out: out, mu: &sync.Mutex{}, level: level, source: opts.AddSource}
	}

	var closer io.Closer = nopCloser{}
	h := console
	if path := strings.TrimSpace(opts.File); path != "" {
		f := &lj.Logger{Filename: path, MaxSize: fileMaxMB, MaxBackups: fileMaxBackups, MaxAge: fileMaxDays, Compress: true}
		closer = f
		file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}).WithAttrs(static)
		h = fanout{console, file}
	}
	return slog.New(proofHandler{next: h}), closer
}

// Init installs a logger built from opts as the package and slog default.
// The previous file sink, if any, is closed.
func Init(opts Options) {
	l, c := New(opts)
	mu.Lock()
	prev := sink
	current, sink = l, c
	mu.Unlock()
	slog.SetDefault(l)
	if prev != nil {
		_ = prev.Close()
	}
}

// Close releases the file sink of the installed logger.
func Close() error {
	mu.Lock()
	c := sink
	sink = nil
	mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

// L returns the installed logger, configuring it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithComponent returns the installed logger tagged with component=name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags l with op.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type proofKey struct{}

// WithProof returns a context whose log records carry proof=<name>.
func WithProof(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, proofKey{}, name)
}

// ProofFrom returns the proof name stored by WithProof, if any.
func ProofFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(proofKey{}).(string)
	return v, ok && v != ""
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return slog.LevelWarn
	}
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lv
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// proofHandler copies the context's proof name onto each record.
type proofHandler struct{ next slog.Handler }

func (h proofHandler) Enabled(ctx context.Context, l slog.Level) bool { return h.next.Enabled(ctx, l) }

func (h proofHandler) Handle(ctx context.Context, r slog.Record) error {
	if name, ok := ProofFrom(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String("proof", name))
	}
	return h.next.Handle(ctx, r)
}

func (h proofHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return proofHandler{next: h.next.WithAttrs(as)}
}

func (h proofHandler) WithGroup(name string) slog.Handler {
	return proofHandler{next: h.next.WithGroup(name)}
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// consoleHandler writes one compact line per record. The component attribute
// is lifted into a [component] prefix.
type consoleHandler struct {
	out       io.Writer
	mu        *sync.Mutex
	level     slog.Level
	source    bool
	component string
	prefix    string // open groups, dot-terminated
	attrs     []byte // preformatted " k=v" pairs
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	b := make([]byte, 0, 160)
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	b = t.AppendFormat(b, "15:04:05.000")
	b = append(b, ' ')
	b = append(b, levelTag(r.Level)...)
	if h.component != "" {
		b = append(b, " ["...)
		b = append(b, h.component...)
		b = append(b, ']')
	}
	if r.Message != "" {
		b = append(b, ' ')
		b = append(b, r.Message...)
	}
	b = append(b, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		b = appendAttr(b, h.prefix, a)
		return true
	})
	if h.source && r.PC != 0 {
		fr, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b = append(b, " src="...)
		b = append(b, filepath.Base(fr.File)...)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(fr.Line), 10)
	}
	b = append(b, '\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(b)
	return err
}

func (h *consoleHandler) WithAttrs(as []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]byte(nil), h.attrs...)
	for _, a := range as {
		if a.Key == "component" && h.prefix == "" {
			c.component = a.Value.String()
			continue
		}
		c.attrs = appendAttr(c.attrs, h.prefix, a)
	}
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

func appendAttr(b []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return b
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range a.Value.Group() {
			b = appendAttr(b, p, g)
		}
		return b
	}
	b = append(b, ' ')
	b = append(b, prefix...)
	b = append(b, a.Key...)
	b = append(b, '=')
	return appendValue(b, a.Value)
}

func appendValue(b []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return strconv.AppendInt(b, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(b, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(b, v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.AppendBool(b, v.Bool())
	case slog.KindDuration:
		return append(b, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(b, time.RFC3339)
	}
	s := v.String()
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.AppendQuote(b, s)
	}
	return append(b, s...)
}
