/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes the markup compiler and the proof library over
// HTTP. It is the network counterpart of the CLI: POST markup, get the
// geometry description back, and browse stored proofs as JSON or images.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"geoproof/internal/export"
	applog "geoproof/internal/log"
	"geoproof/internal/model"
	"geoproof/internal/render"
	"geoproof/internal/script"
	"geoproof/internal/storage"
	"geoproof/internal/version"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Options configures image endpoints and logging.
type Options struct {
	PNG export.PNGOptions
	SVG export.SVGOptions
	// Logger defaults to the application logger tagged component=server.
	Logger *slog.Logger
}

// Server serves the HTTP API. A nil library disables the /api/proofs routes.
type Server struct {
	lib  *storage.Library
	opts Options
	mux  *http.ServeMux
	log  *slog.Logger
}

// New builds the route table.
func New(lib *storage.Library, opts Options) *Server {
	s := &Server{lib: lib, opts: opts, mux: http.NewServeMux(), log: opts.Logger}
	if s.log == nil {
		s.log = applog.WithComponent("server")
	}

	// Health endpoints
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("GET /readyz", s.ready)
	s.mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(version.String()))
	})

	s.mux.HandleFunc("POST /api/compile", s.compile)
	s.mux.HandleFunc("GET /api/proofs", s.withLibrary(s.listProofs))
	s.mux.HandleFunc("POST /api/proofs", s.withLibrary(s.saveProof))
	s.mux.HandleFunc("GET /api/proofs/{ref}", s.withLibrary(s.getProof))
	s.mux.HandleFunc("DELETE /api/proofs/{ref}", s.withLibrary(s.deleteProof))
	s.mux.HandleFunc("GET /api/proofs/{ref}/steps/{file}", s.withLibrary(s.stepImage))
	return s
}

// Handler returns the request handler with access logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", slog.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.lib != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.lib.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("library not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// ScriptError is the JSON form of a markup problem.
type ScriptError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error  string        `json:"error"`
	Script []ScriptError `json:"script,omitempty"`
}

// compile takes .yc markup as the raw request body and answers with the
// geometry description.
func (s *Server) compile(w http.ResponseWriter, r *http.Request) {
	src, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	_ = r.Body.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, errs := script.Compile(string(src))
	if len(errs) > 0 {
		writeScriptErrors(w, errs)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ProofJSON is the wire form of a stored proof.
type ProofJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Source    string          `json:"source,omitempty"`
	Document  json.RawMessage `json:"document,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toJSON(p storage.Proof) ProofJSON {
	return ProofJSON{
		ID:        p.ID.String(),
		Name:      p.Name,
		Source:    p.Source,
		Document:  p.Document,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// SaveRequest stores a proof from markup or from a ready document.
type SaveRequest struct {
	Name     string          `json:"name"`
	Source   string          `json:"source,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

func (s *Server) withLibrary(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.lib == nil {
			writeError(w, http.StatusServiceUnavailable, errors.New("no proof library configured"))
			return
		}
		h(w, r)
	}
}

func (s *Server) listProofs(w http.ResponseWriter, r *http.Request) {
	list, err := s.lib.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]ProofJSON, 0, len(list))
	for _, p := range list {
		out = append(out, toJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) saveProof(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	_ = r.Body.Close()

	doc := req.Document
	if len(doc) == 0 {
		if strings.TrimSpace(req.Source) == "" {
			writeError(w, http.StatusBadRequest, errors.New("source or document is required"))
			return
		}
		compiled, errs := script.Compile(req.Source)
		if len(errs) > 0 {
			writeScriptErrors(w, errs)
			return
		}
		var err error
		if doc, err = json.Marshal(compiled); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	ctx := applog.WithProof(r.Context(), strings.TrimSpace(req.Name))
	p, err := s.lib.Save(ctx, storage.Proof{Name: req.Name, Source: req.Source, Document: doc})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidDocument) || strings.TrimSpace(req.Name) == "" {
			status = http.StatusBadRequest
		}
		s.log.WarnContext(ctx, "proof rejected", slog.Int("status", status), slog.Any("err", err))
		writeError(w, status, err)
		return
	}
	s.log.InfoContext(ctx, "proof saved", slog.String("id", p.ID.String()))
	writeJSON(w, http.StatusCreated, toJSON(p))
}

// lookup resolves the {ref} path value. The returned context tags log
// records with the proof name.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (context.Context, storage.Proof, bool) {
	ref := r.PathValue("ref")
	p, err := s.lib.Lookup(r.Context(), ref)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return r.Context(), storage.Proof{}, false
	case err != nil:
		s.log.ErrorContext(r.Context(), "lookup failed", slog.String("ref", ref), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, err)
		return r.Context(), storage.Proof{}, false
	}
	return applog.WithProof(r.Context(), p.Name), p, true
}

func (s *Server) getProof(w http.ResponseWriter, r *http.Request) {
	if _, p, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, toJSON(p))
	}
}

func (s *Server) deleteProof(w http.ResponseWriter, r *http.Request) {
	ctx, p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.lib.Delete(ctx, p.ID); err != nil {
		s.log.ErrorContext(ctx, "delete failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.log.InfoContext(ctx, "proof deleted", slog.String("id", p.ID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// stepImage renders /api/proofs/{ref}/steps/{n}.svg or .png.
func (s *Server) stepImage(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	dot := strings.LastIndexByte(file, '.')
	if dot < 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown image %q", file))
		return
	}
	step, err := strconv.Atoi(file[:dot])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid step %q", file[:dot]))
		return
	}
	format := file[dot+1:]
	if format != "svg" && format != "png" {
		writeError(w, http.StatusNotFound, fmt.Errorf("unsupported format %q", format))
		return
	}
	ctx, p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	m, err := p.Model()
	if err != nil {
		s.log.ErrorContext(ctx, "stored document does not decode", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var (
		buf     bytes.Buffer
		skipped []render.Skip
	)
	if format == "svg" {
		skipped, err = export.WriteStepSVG(&buf, m, step, s.opts.SVG)
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		var f render.Frame
		f, err = export.RenderStepPNG(m, step, s.opts.PNG, &buf)
		skipped = f.Skipped
		w.Header().Set("Content-Type", "image/png")
	}
	for _, sk := range skipped {
		s.log.WarnContext(ctx, "entity skipped", slog.Int("step", step), slog.String("entity", sk.ID), slog.Any("err", sk.Err))
	}
	if err != nil {
		w.Header().Del("Content-Type")
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrStepRange) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// --- Helpers: JSON ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorBody{Error: err.Error()})
}

func writeScriptErrors(w http.ResponseWriter, errs []script.Error) {
	body := ErrorBody{Error: script.Errors(errs).Error()}
	for _, e := range errs {
		body.Script = append(body.Script, ScriptError{Line: e.Line, Column: e.Column, Message: e.Message})
	}
	writeJSON(w, http.StatusUnprocessableEntity, body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
