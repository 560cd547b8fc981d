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
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoproof/internal/animation"
	"geoproof/internal/config"
	"geoproof/internal/model"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

const proofText = "<div id='step_0'>Let <span name='text_point_A' class='GeoElement'>A</span> be given.</div>" +
	"<div id='step_1'>Join <span name='text_line_AB' class='GeoElement'>AB</span>.</div>"

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	m, err := model.New([]model.Entity{
		model.Point{Base: model.Base{ID: "A", Paint: vector.White}, At: vector.P(0, 0)},
		model.Point{Base: model.Base{ID: "B", Paint: vector.White}, At: vector.P(0.5, 0.5)},
		model.Line{Base: model.Base{ID: "AB", Paint: vector.Blue}, P1: "A", P2: "B"},
	}, [][]string{{"A"}, {"A", "B", "AB"}})
	require.NoError(t, err)
	return NewViewer(m.WithText(proofText), config.Defaults(), 200)
}

func TestToNDC(t *testing.T) {
	size := fyne.NewSize(400, 200)
	assert.Equal(t, vector.P(-1, 1), ToNDC(fyne.NewPos(0, 0), size))
	assert.Equal(t, vector.P(1, -1), ToNDC(fyne.NewPos(400, 200), size))
	assert.Equal(t, vector.P(0, 0), ToNDC(fyne.NewPos(200, 100), size))
	assert.Equal(t, vector.OffCanvas, ToNDC(fyne.NewPos(1, 1), fyne.NewSize(0, 0)))
}

func TestKeyCommand(t *testing.T) {
	for _, k := range []fyne.KeyName{fyne.KeyRight, fyne.KeySpace, fyne.KeyDown} {
		c, ok := KeyCommand(k)
		assert.True(t, ok, k)
		assert.Equal(t, animation.Advance, c, k)
	}
	for _, k := range []fyne.KeyName{fyne.KeyLeft, fyne.KeyUp, fyne.KeyBackspace} {
		c, ok := KeyCommand(k)
		assert.True(t, ok, k)
		assert.Equal(t, animation.Retreat, c, k)
	}
	_, ok := KeyCommand(fyne.KeyA)
	assert.False(t, ok)
}

func TestViewerRendersFirstStep(t *testing.T) {
	v := newTestViewer(t)
	assert.Equal(t, 200, v.Image().Bounds().Dx())
	assert.Equal(t, color.RGBA{A: 255}, v.Image().At(0, 0))
	assert.Equal(t, []string{"A"}, v.Controller().LastFrame().Order)
	assert.Equal(t, "Step 1 / 2", v.StepLabel())
	assert.Len(t, v.Paragraphs(), 1)
}

func TestViewerKeysStep(t *testing.T) {
	v := newTestViewer(t)
	var frames int
	v.OnFrame = func(render.Frame) { frames++ }

	assert.True(t, v.Key(fyne.KeyRight))
	assert.Equal(t, "Step 2 / 2", v.StepLabel())
	assert.Len(t, v.Paragraphs(), 2)
	assert.False(t, v.Key(fyne.KeySpace), "already at the last step")
	assert.False(t, v.Key(fyne.KeyA))
	assert.True(t, v.Key(fyne.KeyBackspace))
	assert.Equal(t, 0, v.Controller().Step())
	assert.Equal(t, 2, frames)
}

func TestViewerPointerHighlights(t *testing.T) {
	v := newTestViewer(t)
	size := fyne.NewSize(400, 400)

	v.PointerAt(fyne.NewPos(200, 200), size)
	assert.Contains(t, v.Controller().LastFrame().Highlighted, "A")

	v.PointerLeft()
	assert.NotContains(t, v.Controller().LastFrame().Highlighted, "A")

	v.HoverLabel(render.LabelRef{Kind: "point", ID: "A"}, true)
	assert.Contains(t, v.Controller().LastFrame().Highlighted, "A")
	v.HoverLabel(render.LabelRef{Kind: "point", ID: "A"}, false)
	assert.NotContains(t, v.Controller().LastFrame().Highlighted, "A")
}

func TestViewerResize(t *testing.T) {
	v := newTestViewer(t)
	v.Resize(320)
	assert.Equal(t, 320, v.Image().Bounds().Dx())
	assert.Equal(t, 320.0, v.engine.Tolerance.CanvasPx)
	v.Resize(0)
	assert.Equal(t, 320, v.Image().Bounds().Dx())
}
