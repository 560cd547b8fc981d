/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "geoproof/internal/log"
	"geoproof/internal/model"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb     PresetName = "web"
	PresetPrint   PresetName = "print"
	PresetArchive PresetName = "archive"
)

// BatchOptions controls batch export across formats and steps.
//
// Path semantics:
//   - PNG/SVG outputs are <OutDir>/<format>/<Name>-step-<n>.<format>, n 1-based.
//   - PDF output is a single <OutDir>/pdf/<Name>.pdf with every step.
//   - ZIP output is a single <OutDir>/<Name>.zip bundle (see WriteBundle).
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: png, svg, pdf, zip; empty means preset defaults
	Steps   []int    // zero-based; empty means all steps
	OutDir  string
	Name    string // file name stem; empty means "proof"
	PNG     PNGOptions
	SVG     SVGOptions
	PDF     PDFOptions
}

// Batch runs the exports of a preset and returns the written paths.
func Batch(m *model.Model, opt BatchOptions) ([]string, error) {
	if m == nil {
		return nil, fmt.Errorf("model is nil")
	}
	if opt.OutDir == "" {
		return nil, fmt.Errorf("output directory is empty")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	name := opt.Name
	if name == "" {
		name = "proof"
	}
	steps := opt.Steps
	if len(steps) == 0 {
		steps = make([]int, m.StepCount())
		for i := range steps {
			steps[i] = i
		}
	}
	log := applog.WithOperation(applog.WithComponent("export"), "batch")

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case "pdf":
			out := filepath.Join(opt.OutDir, "pdf", name+".pdf")
			if err := writeFile(out, func(w io.Writer) error { return WritePDF(w, m, opt.PDF) }); err != nil {
				return written, err
			}
			written = append(written, out)
		case "zip":
			out := filepath.Join(opt.OutDir, name+".zip")
			if err := writeFile(out, func(w io.Writer) error { return WriteBundle(w, name, m, opt.PNG) }); err != nil {
				return written, err
			}
			written = append(written, out)
		case "png", "svg":
			for _, step := range steps {
				out := filepath.Join(opt.OutDir, f, fmt.Sprintf("%s-step-%d.%s", name, step+1, f))
				err := writeFile(out, func(w io.Writer) error {
					if f == "png" {
						_, err := RenderStepPNG(m, step, opt.PNG, w)
						return err
					}
					_, err := WriteStepSVG(w, m, step, opt.SVG)
					return err
				})
				if err != nil {
					return written, fmt.Errorf("%s step %d: %w", f, step+1, err)
				}
				written = append(written, out)
			}
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	log.Info("exported", slog.String("preset", string(opt.Preset)), slog.Int("files", len(written)), slog.String("dir", opt.OutDir))
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf"}
	case PresetArchive:
		return []string{"zip"}
	default:
		return []string{"svg"}
	}
}

// writeFile creates path and its directory and hands the file to fill.
// A partially written file is removed on error.
func writeFile(path string, fill func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}
