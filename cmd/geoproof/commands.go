/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"geoproof/internal/config"
	"geoproof/internal/export"
	applog "geoproof/internal/log"
	"geoproof/internal/model"
	"geoproof/internal/script"
	"geoproof/internal/server"
	"geoproof/internal/storage"
	"geoproof/internal/ui"
	"geoproof/internal/version"
)

// errUsage makes run print the usage text and exit with status 2.
var errUsage = errors.New("usage")

type app struct {
	cfg    config.AppConfig
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

// run dispatches args (without the program name) and returns the exit code.
func run(a *app, args []string) int {
	if len(args) == 0 {
		usage(a.stdout)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(a.stdout, "GeoProof")
		_, _ = fmt.Fprintln(a.stdout, version.String())
	case "compile":
		err = a.compile(args[1:])
	case "render":
		err = a.render(args[1:])
	case "export":
		err = a.export(args[1:])
	case "library":
		err = a.library(args[1:])
	case "remote":
		err = a.remote(args[1:])
	case "serve":
		err = a.serve(args[1:])
	case "ui":
		err = a.ui(args[1:])
	case "help", "-h", "--help":
		usage(a.stdout)
	default:
		_, _ = fmt.Fprintf(a.stderr, "unknown command %q\n", args[0])
		usage(a.stderr)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(a.stderr, err)
		usage(a.stderr)
		return 2
	default:
		a.log.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		_, _ = fmt.Fprintln(a.stderr, "Error:", err)
		return 1
	}
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// compileFile compiles a .yc file. Markup errors are prefixed with the path.
func compileFile(path string) (model.Document, string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, "", err
	}
	doc, errs := script.Compile(string(src))
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = path + ":" + e.Error()
		}
		return model.Document{}, "", errors.New(strings.Join(msgs, "\n"))
	}
	return doc, string(src), nil
}

// loaded is a proof ready for use together with its stored form.
type loaded struct {
	name   string
	model  *model.Model
	source string
	doc    json.RawMessage
}

// load reads a .yc or .json file, or falls back to the library. The returned
// context tags log records with the proof name.
func (a *app) load(ctx context.Context, ref string) (context.Context, loaded, error) {
	stem := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".yc":
		doc, src, err := compileFile(ref)
		if err != nil {
			return ctx, loaded{}, err
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return ctx, loaded{}, err
		}
		m, err := model.FromDocument(doc)
		return a.track(ctx, ref, loaded{name: stem, model: m, source: src, doc: raw}, err)
	case ".json":
		raw, err := os.ReadFile(ref)
		if err != nil {
			return ctx, loaded{}, err
		}
		m, err := model.Decode(raw)
		return a.track(ctx, ref, loaded{name: stem, model: m, doc: raw}, err)
	}
	lib, err := a.openLibrary(ctx)
	if err != nil {
		return ctx, loaded{}, err
	}
	defer func() { _ = lib.Close() }()
	p, err := lib.Lookup(ctx, ref)
	if err != nil {
		return ctx, loaded{}, fmt.Errorf("%s: %w", ref, err)
	}
	m, err := p.Model()
	return a.track(ctx, ref, loaded{name: p.Name, model: m, source: p.Source, doc: p.Document}, err)
}

// track records the proof for crash reports and tags ctx with its name.
func (a *app) track(ctx context.Context, ref string, l loaded, err error) (context.Context, loaded, error) {
	if err != nil {
		return ctx, loaded{}, err
	}
	session.Source = l.name
	doc := l.doc
	session.Snapshot = func() ([]byte, error) { return doc, nil }
	ctx = applog.WithProof(ctx, l.name)
	a.log.DebugContext(ctx, "proof loaded", slog.String("ref", ref), slog.Int("entities", l.model.Len()), slog.Int("steps", l.model.StepCount()))
	if errs := l.model.Resolve(); len(errs) > 0 {
		a.log.WarnContext(ctx, "proof has unresolved circles", slog.Int("count", len(errs)))
	}
	return ctx, l, nil
}

func (a *app) openLibrary(ctx context.Context) (*storage.Library, error) {
	dsn, err := a.cfg.LibraryDSN()
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, a.cfg.Library.Driver, dsn)
}

func (a *app) pngOptions() export.PNGOptions {
	return export.PNGOptions{
		Size:     a.cfg.Export.SizePx,
		Render:   a.cfg.RenderOptions(),
		Touch:    a.cfg.General.Touch,
		Captions: a.cfg.Export.Captions,
	}
}

func (a *app) svgOptions() export.SVGOptions {
	return export.SVGOptions{Size: a.cfg.Export.SizePx}
}

// writeOut writes to path, or to stdout when path is empty or "-".
func (a *app) writeOut(path string, fill func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fill(a.stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) compile(args []string) error {
	if len(args) < 1 {
		return usageErr("compile requires <in.yc>")
	}
	doc, _, err := compileFile(args[0])
	if err != nil {
		return err
	}
	out := ""
	if len(args) > 1 {
		out = args[1]
	}
	a.log.Info("compiled", slog.String("in", args[0]), slog.Int("entities", len(doc.Geometry)), slog.Int("steps", len(doc.Animations)))
	return a.writeOut(out, func(w io.Writer) error { return writeIndented(w, doc) })
}

func (a *app) render(args []string) error {
	if len(args) < 3 {
		return usageErr("render requires <proof> <step> <out.png|svg>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return usageErr("step %q must be a positive number", args[1])
	}
	ctx, p, err := a.load(context.Background(), args[0])
	if err != nil {
		return err
	}
	out := args[2]
	var skipped []string
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		err = a.writeOut(out, func(w io.Writer) error {
			f, err := export.RenderStepPNG(p.model, n-1, a.pngOptions(), w)
			for _, s := range f.Skipped {
				skipped = append(skipped, s.ID)
			}
			return err
		})
	case ".svg":
		err = a.writeOut(out, func(w io.Writer) error {
			sk, err := export.WriteStepSVG(w, p.model, n-1, a.svgOptions())
			for _, s := range sk {
				skipped = append(skipped, s.ID)
			}
			return err
		})
	default:
		return usageErr("output %q must end in .png or .svg", out)
	}
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		a.log.WarnContext(ctx, "entities skipped", slog.Int("step", n), slog.String("ids", strings.Join(skipped, ",")))
		_, _ = fmt.Fprintf(a.stderr, "skipped: %s\n", strings.Join(skipped, ", "))
	}
	a.log.InfoContext(ctx, "rendered", slog.Int("step", n), slog.String("out", out))
	_, _ = fmt.Fprintln(a.stdout, "Wrote", out)
	return nil
}

func (a *app) export(args []string) error {
	if len(args) < 2 {
		return usageErr("export requires <proof> <outDir>")
	}
	preset := export.PresetWeb
	if len(args) > 2 {
		preset = export.PresetName(strings.ToLower(args[2]))
	}
	switch preset {
	case export.PresetWeb, export.PresetPrint, export.PresetArchive:
	default:
		return usageErr("unknown preset %q", preset)
	}
	ctx, p, err := a.load(context.Background(), args[0])
	if err != nil {
		return err
	}
	paths, err := export.Batch(p.model, export.BatchOptions{
		Preset: preset,
		OutDir: args[1],
		Name:   p.name,
		PNG:    a.pngOptions(),
		SVG:    a.svgOptions(),
		PDF:    export.PDFOptions{Title: p.name, StepLabels: true},
	})
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "exported", slog.String("preset", string(preset)), slog.Int("files", len(paths)))
	for _, path := range paths {
		_, _ = fmt.Fprintln(a.stdout, path)
	}
	return nil
}

func (a *app) library(args []string) error {
	if len(args) < 1 {
		return usageErr("library requires save|list|show|delete")
	}
	ctx := context.Background()
	switch args[0] {
	case "save":
		if len(args) < 3 {
			return usageErr("library save requires <name> <proof>")
		}
		ctx, p, err := a.load(ctx, args[2])
		if err != nil {
			return err
		}
		lib, err := a.openLibrary(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = lib.Close() }()
		saved, err := lib.Save(ctx, storage.Proof{Name: args[1], Source: p.source, Document: p.doc})
		if err != nil {
			return err
		}
		a.log.InfoContext(ctx, "saved to library", slog.String("as", saved.Name), slog.String("id", saved.ID.String()))
		_, _ = fmt.Fprintf(a.stdout, "Saved %s (%s)\n", saved.Name, saved.ID)
		return nil
	case "list":
		lib, err := a.openLibrary(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = lib.Close() }()
		list, err := lib.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
		for _, p := range list {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.UpdatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	case "show":
		if len(args) < 2 {
			return usageErr("library show requires <ref>")
		}
		_, p, err := a.load(ctx, args[1])
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(append(append([]byte(nil), p.doc...), '\n'))
		return err
	case "delete":
		if len(args) < 2 {
			return usageErr("library delete requires <ref>")
		}
		lib, err := a.openLibrary(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = lib.Close() }()
		p, err := lib.Lookup(ctx, args[1])
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}
		if err := lib.Delete(ctx, p.ID); err != nil {
			return err
		}
		a.log.InfoContext(applog.WithProof(ctx, p.Name), "deleted from library", slog.String("id", p.ID.String()))
		_, _ = fmt.Fprintln(a.stdout, "Deleted", p.Name)
		return nil
	}
	return usageErr("unknown library command %q", args[0])
}

func (a *app) remote(args []string) error {
	if len(args) < 2 {
		return usageErr("remote requires <url> compile|list|show")
	}
	c := server.NewClient(args[0])
	ctx := context.Background()
	switch args[1] {
	case "compile":
		if len(args) < 3 {
			return usageErr("remote compile requires <in.yc>")
		}
		src, err := os.ReadFile(args[2])
		if err != nil {
			return err
		}
		doc, err := c.Compile(ctx, string(src))
		if err != nil {
			return err
		}
		out := ""
		if len(args) > 3 {
			out = args[3]
		}
		return a.writeOut(out, func(w io.Writer) error { return writeIndented(w, doc) })
	case "list":
		list, err := c.ListProofs(ctx)
		if err != nil {
			return err
		}
		for _, p := range list {
			_, _ = fmt.Fprintf(a.stdout, "%s\t%s\n", p.ID, p.Name)
		}
		return nil
	case "show":
		if len(args) < 3 {
			return usageErr("remote show requires <ref>")
		}
		p, err := c.GetProof(ctx, args[2])
		if err != nil {
			return err
		}
		return writeIndented(a.stdout, p)
	}
	return usageErr("unknown remote command %q", args[1])
}

func (a *app) serve(args []string) error {
	addr := a.cfg.Server.Addr
	if len(args) > 0 {
		addr = args[0]
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	lib, err := a.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()
	srv := server.New(lib, server.Options{PNG: a.pngOptions(), SVG: a.svgOptions()})
	_, _ = fmt.Fprintf(a.stdout, "Listening on http://%s\n", addr)
	return srv.ListenAndServe(ctx, addr)
}

func (a *app) ui(args []string) error {
	if len(args) < 1 {
		return usageErr("ui requires <proof>")
	}
	ctx, p, err := a.load(context.Background(), args[0])
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "opening viewer")
	return ui.Run(p.model, a.cfg, p.name)
}
