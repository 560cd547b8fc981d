//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"geoproof/internal/config"
	"geoproof/internal/label"
	applog "geoproof/internal/log"
	"geoproof/internal/model"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

// Run opens the viewer window for m and blocks until it is closed. title is
// shown in the window bar.
func Run(m *model.Model, cfg config.AppConfig, title string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("proof", title), slog.Int("steps", m.StepCount()))

	fyneApp := app.NewWithID("geoproof")
	w := fyneApp.NewWindow("GeoProof - " + title)
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1100), 640)
	winH := max(prefs.IntWithFallback("window.height", 720), 480)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	v := NewViewer(m, cfg, DefaultCanvasPx)
	pc := newProofCanvas(v, w)
	status := widget.NewLabel(v.StepLabel())
	textBox := container.NewVBox()

	shown := -1
	var chips []*labelChip
	refresh := func() {
		pc.img.Refresh()
		status.SetText(v.StepLabel())
		if step := v.Controller().Step(); step != shown {
			chips = fillText(textBox, v)
			shown = step
		}
		for _, c := range chips {
			if st, ok := v.Board().Get(c.ref.Name()); ok {
				c.apply(st)
			}
		}
	}
	v.OnFrame = func(render.Frame) { refresh() }

	prev := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { v.Controller().Retreat() })
	next := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { v.Controller().Advance() })
	bar := container.NewHBox(prev, next, status)

	split := container.NewHSplit(pc, container.NewVScroll(textBox))
	split.Offset = 0.6
	w.SetContent(container.NewBorder(nil, bar, nil, nil, split))

	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		if v.Key(e.Name) {
			l.Debug("step", slog.Int("step", v.Controller().Step()))
		}
	})
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	refresh()
	w.ShowAndRun()
	return nil
}

// proofCanvas shows the viewer raster and forwards pointer events.
type proofCanvas struct {
	widget.BaseWidget
	v   *Viewer
	win fyne.Window
	img *canvas.Image
}

var (
	_ desktop.Hoverable = (*proofCanvas)(nil)
	_ desktop.Mouseable = (*proofCanvas)(nil)
)

func newProofCanvas(v *Viewer, win fyne.Window) *proofCanvas {
	img := canvas.NewImageFromImage(v.Image())
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels
	pc := &proofCanvas{v: v, win: win, img: img}
	pc.ExtendBaseWidget(pc)
	return pc
}

func (p *proofCanvas) CreateRenderer() fyne.WidgetRenderer { return widget.NewSimpleRenderer(p.img) }

func (p *proofCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 320) }

// Resize keeps the raster at device resolution.
func (p *proofCanvas) Resize(size fyne.Size) {
	p.BaseWidget.Resize(size)
	scale := p.win.Canvas().Scale()
	p.v.Resize(int(min(size.Width, size.Height) * scale))
	p.img.Image = p.v.Image()
	p.img.Refresh()
}

func (p *proofCanvas) MouseIn(e *desktop.MouseEvent)    { p.v.PointerAt(e.Position, p.Size()) }
func (p *proofCanvas) MouseMoved(e *desktop.MouseEvent) { p.v.PointerAt(e.Position, p.Size()) }
func (p *proofCanvas) MouseOut()                        { p.v.PointerLeft() }

func (p *proofCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		p.v.Press()
	}
}

func (p *proofCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		p.v.Release()
	}
}

// labelChip is an entity label inside the proof text. Hovering it
// highlights the entity on the canvas.
type labelChip struct {
	widget.BaseWidget
	v    *Viewer
	ref  render.LabelRef
	text *canvas.Text
}

var _ desktop.Hoverable = (*labelChip)(nil)

func newLabelChip(v *Viewer, ref render.LabelRef, text string) *labelChip {
	c := &labelChip{v: v, ref: ref, text: canvas.NewText(text, theme.Color(theme.ColorNameForeground))}
	c.ExtendBaseWidget(c)
	return c
}

func (c *labelChip) CreateRenderer() fyne.WidgetRenderer { return widget.NewSimpleRenderer(c.text) }

func (c *labelChip) MouseIn(*desktop.MouseEvent)    { c.v.HoverLabel(c.ref, true) }
func (c *labelChip) MouseMoved(*desktop.MouseEvent) {}
func (c *labelChip) MouseOut()                      { c.v.HoverLabel(c.ref, false) }

// apply copies the label state onto the chip.
func (c *labelChip) apply(st label.State) {
	if !st.Visible {
		c.Hide()
		return
	}
	c.Show()
	c.text.Color = chipColor(st.Color)
	c.text.TextStyle = fyne.TextStyle{Bold: st.Shadowed}
	c.text.Refresh()
}

func chipColor(hex string) color.Color {
	col, err := vector.FromHex(hex)
	if err != nil {
		return theme.Color(theme.ColorNameForeground)
	}
	return col.RGBA()
}

// fillText rebuilds the revealed proof text, one row per paragraph, and
// returns the label chips it created.
func fillText(box *fyne.Container, v *Viewer) []*labelChip {
	box.RemoveAll()
	var chips []*labelChip
	for _, p := range v.Paragraphs() {
		row := container.NewHBox()
		for _, s := range p.Segments {
			if s.Ref == nil {
				row.Add(widget.NewLabel(s.Text))
				continue
			}
			chip := newLabelChip(v, *s.Ref, s.Text)
			chips = append(chips, chip)
			row.Add(chip)
		}
		box.Add(row)
	}
	box.Refresh()
	return chips
}
