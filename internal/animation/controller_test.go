/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoproof/internal/label"
	"geoproof/internal/model"
	"geoproof/internal/pick"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

func setup(t *testing.T) (*Controller, *label.Board, *render.Recorder) {
	t.Helper()
	m, err := model.New([]model.Entity{
		model.Point{Base: model.Base{ID: "A", Paint: vector.White}, At: vector.P(0, 0)},
		model.Point{Base: model.Base{ID: "B", Paint: vector.White}, At: vector.P(0.5, 0.5)},
		model.Line{Base: model.Base{ID: "AB", Paint: vector.Blue}, P1: "A", P2: "B"},
	}, [][]string{{"A"}, {"A", "B"}, {"B", "AB"}})
	require.NoError(t, err)
	board := label.NewBoard()
	rec := &render.Recorder{}
	r := render.New(rec, board, pick.NewEngine(vector.DesktopTolerance(0), 0), render.DefaultOptions(false))
	return New(m, r), board, rec
}

func TestStepBoundaries(t *testing.T) {
	c, _, rec := setup(t)
	assert.Equal(t, 3, c.Count())
	assert.False(t, c.Retreat(), "retreat at step 0")
	assert.Equal(t, 0, c.Step())
	assert.Empty(t, rec.Calls, "no-op must not render")

	assert.True(t, c.Advance())
	assert.True(t, c.Advance())
	assert.Equal(t, 2, c.Step())
	assert.False(t, c.Advance(), "advance at the last step")
	assert.Equal(t, 2, c.Step())

	assert.True(t, c.Do(Retreat))
	assert.Equal(t, 1, c.Step())
	assert.False(t, c.Goto(7))
	assert.False(t, c.Goto(1))
}

func TestTransitionRendersNewStep(t *testing.T) {
	c, _, _ := setup(t)
	var frames []render.Frame
	c.OnFrame = func(f render.Frame) { frames = append(frames, f) }

	require.True(t, c.Advance())
	require.Len(t, frames, 1)
	assert.Equal(t, 1, frames[0].Step)
	assert.Equal(t, []string{"A", "B"}, frames[0].Order)
	assert.Equal(t, frames[0], c.LastFrame())
}

func TestTransitionResetsAndHidesLabels(t *testing.T) {
	c, board, _ := setup(t)
	c.RequestRender()
	c.LabelHovered("A", true)

	a, ok := board.Get("text_point_A")
	require.True(t, ok)
	assert.True(t, a.Shadowed)
	assert.Equal(t, vector.HotDark.Hex(), a.Color)

	require.True(t, c.Advance())
	a, _ = board.Get("text_point_A")
	assert.False(t, a.Shadowed, "label hover does not survive a step change")
	assert.Equal(t, vector.White.Hex(), a.Color)
	assert.True(t, a.Visible)
	assert.Empty(t, c.State().TextHot())

	require.True(t, c.Advance())
	a, _ = board.Get("text_point_A")
	assert.False(t, a.Visible, "A is not part of the last step")
	l, ok := board.Get("text_line_AB")
	require.True(t, ok)
	assert.True(t, l.Visible)
}

func TestPointerEventsDriveHotState(t *testing.T) {
	c, board, _ := setup(t)
	c.PointerMoved(vector.P(0.01, 0))
	assert.Equal(t, []string{"A"}, c.LastFrame().Highlighted)

	c.PointerPressed()
	id, ok := c.State().Active()
	require.True(t, ok)
	assert.Equal(t, "A", id)

	c.PointerMoved(vector.P(0.9, 0.9))
	assert.Equal(t, []string{"A"}, c.LastFrame().Highlighted, "active entity stays hot")

	c.PointerReleased()
	c.PointerLeft()
	assert.Empty(t, c.LastFrame().Highlighted)
	a, _ := board.Get("text_point_A")
	assert.False(t, a.Shadowed)
}
