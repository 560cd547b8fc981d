/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui hosts the interactive proof viewer. Viewer is the toolkit
// independent core: it owns the raster surface, the label board and the
// animation controller, and maps window coordinates and keys onto them.
// The Fyne window that presents it is only built with the "fyne" tag.
package ui

import (
	"fmt"
	"image"
	"log/slog"

	"fyne.io/fyne/v2"

	"geoproof/internal/animation"
	"geoproof/internal/config"
	"geoproof/internal/export"
	"geoproof/internal/label"
	applog "geoproof/internal/log"
	"geoproof/internal/model"
	"geoproof/internal/pick"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

// DefaultCanvasPx is the initial raster edge before the window is laid out.
const DefaultCanvasPx = 600

// Viewer drives one proof. It is confined to the UI goroutine.
type Viewer struct {
	ctrl   *animation.Controller
	engine *pick.Engine
	raster *export.Raster
	board  *label.Board
	text   []label.Paragraph

	// OnFrame, when set, is called after every render.
	OnFrame func(render.Frame)

	log *slog.Logger
}

// NewViewer prepares m for display on a canvasPx square raster and renders
// the first step.
func NewViewer(m *model.Model, cfg config.AppConfig, canvasPx int) *Viewer {
	if canvasPx <= 0 {
		canvasPx = DefaultCanvasPx
	}
	v := &Viewer{
		engine: pick.NewEngine(cfg.Tolerance(float64(canvasPx)), cfg.Render.CircleStep),
		raster: export.NewRaster(canvasPx, canvasPx),
		board:  label.NewBoard(),
		log:    applog.WithComponent("ui"),
	}
	if m.Text() != "" {
		ps, err := label.ParseText(m.Text())
		if err != nil {
			v.log.Warn("proof text ignored", slog.Any("err", err))
		}
		v.text = ps
	}
	r := render.New(v.raster, v.board, v.engine, cfg.RenderOptions())
	v.ctrl = animation.New(m, r)
	v.ctrl.OnFrame = func(f render.Frame) {
		if v.OnFrame != nil {
			v.OnFrame(f)
		}
	}
	v.ctrl.RequestRender()
	return v
}

// Controller exposes the animation controller.
func (v *Viewer) Controller() *animation.Controller { return v.ctrl }

// Board exposes the label states.
func (v *Viewer) Board() *label.Board { return v.board }

// Image is the current frame. The image is reused between frames.
func (v *Viewer) Image() image.Image { return v.raster.Image() }

// Resize reallocates the raster for a canvasPx square and re-renders.
func (v *Viewer) Resize(canvasPx int) {
	if canvasPx <= 0 {
		return
	}
	if w, _ := v.raster.Size(); w == canvasPx {
		return
	}
	v.raster.Resize(canvasPx, canvasPx)
	v.engine.Tolerance.CanvasPx = float64(canvasPx)
	v.ctrl.RequestRender()
}

// Paragraphs returns the proof text revealed up to the current step.
func (v *Viewer) Paragraphs() []label.Paragraph {
	var out []label.Paragraph
	for _, p := range v.text {
		if p.Step <= v.ctrl.Step() {
			out = append(out, p)
		}
	}
	return out
}

// StepLabel reads "Step i / n", one-based.
func (v *Viewer) StepLabel() string {
	return fmt.Sprintf("Step %d / %d", v.ctrl.Step()+1, v.ctrl.Count())
}

// ToNDC maps a position inside a widget of the given size to normalized
// device coordinates, +Y up.
func ToNDC(pos fyne.Position, size fyne.Size) vector.Pt {
	if size.Width <= 0 || size.Height <= 0 {
		return vector.OffCanvas
	}
	return vector.Pt{
		X: float64(pos.X/size.Width)*2 - 1,
		Y: -float64(pos.Y/size.Height)*2 + 1,
	}
}

// PointerAt feeds a pointer position in widget coordinates.
func (v *Viewer) PointerAt(pos fyne.Position, size fyne.Size) {
	v.ctrl.PointerMoved(ToNDC(pos, size))
}

// PointerLeft parks the pointer outside the canvas.
func (v *Viewer) PointerLeft() { v.ctrl.PointerLeft() }

// Press and Release track the primary button.
func (v *Viewer) Press()   { v.ctrl.PointerPressed() }
func (v *Viewer) Release() { v.ctrl.PointerReleased() }

// HoverLabel marks the entity behind a label as hovered in the text.
func (v *Viewer) HoverLabel(ref render.LabelRef, hovered bool) {
	v.ctrl.LabelHovered(ref.ID, hovered)
}

var keyCommands = map[fyne.KeyName]animation.Command{
	fyne.KeyRight:     animation.Advance,
	fyne.KeySpace:     animation.Advance,
	fyne.KeyDown:      animation.Advance,
	fyne.KeyLeft:      animation.Retreat,
	fyne.KeyUp:        animation.Retreat,
	fyne.KeyBackspace: animation.Retreat,
}

// KeyCommand maps a key to a step command.
func KeyCommand(k fyne.KeyName) (animation.Command, bool) {
	c, ok := keyCommands[k]
	return c, ok
}

// Key applies the command bound to k and reports whether the step changed.
func (v *Viewer) Key(k fyne.KeyName) bool {
	c, ok := KeyCommand(k)
	if !ok {
		return false
	}
	return v.ctrl.Do(c)
}
