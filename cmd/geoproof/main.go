/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"geoproof/internal/config"
	"geoproof/internal/crash"
	applog "geoproof/internal/log"
	"geoproof/internal/version"
)

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "GeoProof - interactive geometric proofs")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  geoproof version|-v|--version                  Show version")
	_, _ = fmt.Fprintln(w, "  geoproof compile <in.yc> [out.json]             Compile markup into a geometry description")
	_, _ = fmt.Fprintln(w, "  geoproof render <proof> <step> <out.png|svg>    Render one step (step is 1-based)")
	_, _ = fmt.Fprintln(w, "  geoproof export <proof> <outDir> [web|print|archive]")
	_, _ = fmt.Fprintln(w, "  geoproof library save <name> <proof>            Store a proof in the library")
	_, _ = fmt.Fprintln(w, "  geoproof library list|show <ref>|delete <ref>")
	_, _ = fmt.Fprintln(w, "  geoproof remote <url> compile <in.yc> [out.json]|list|show <ref>")
	_, _ = fmt.Fprintln(w, "  geoproof serve [addr]                           Serve the HTTP API")
	_, _ = fmt.Fprintln(w, "  geoproof ui <proof>                             Launch the viewer (build with -tags fyne)")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "<proof> is a .yc or .json file, or the name or id of a library proof.")
}

// session is filled in by commands so a crash report can name the open proof.
var session = &crash.Session{}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not fully loaded", slog.Any("err", cfgErr))
	}
	if dir, err := config.Dir(); err == nil {
		session.Dir = filepath.Join(dir, "crash")
	}
	defer crash.Recover(session)

	l.Debug("start", slog.Int("args", len(os.Args)))
	code := run(&app{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr, log: l}, os.Args[1:])
	_ = applog.Close()
	if code != 0 {
		os.Exit(code)
	}
}
