/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package animation steps through the animation steps of a proof and turns
// input events into re-renders.
package animation

import (
	"log/slog"

	applog "geoproof/internal/log"
	"geoproof/internal/model"
	"geoproof/internal/pick"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

// Command is a discrete step command.
type Command uint8

const (
	Advance Command = iota
	Retreat
)

// Controller owns the current step and the interaction state. Like the
// renderer it is confined to the goroutine that owns the draw surface.
type Controller struct {
	model    *model.Model
	renderer *render.Renderer
	state    *pick.State
	step     int
	last     render.Frame

	// OnFrame, when set, receives every completed frame.
	OnFrame func(render.Frame)

	log *slog.Logger
}

// New returns a controller at step 0. It does not render until asked.
func New(m *model.Model, r *render.Renderer) *Controller {
	return &Controller{
		model:    m,
		renderer: r,
		state:    pick.NewState(),
		log:      applog.WithComponent("animation"),
	}
}

// Model returns the proof being animated.
func (c *Controller) Model() *model.Model { return c.model }

// State exposes the interaction state.
func (c *Controller) State() *pick.State { return c.state }

// Step is the current step index.
func (c *Controller) Step() int { return c.step }

// Count is the number of steps.
func (c *Controller) Count() int { return c.model.StepCount() }

// LastFrame is the report of the most recent render.
func (c *Controller) LastFrame() render.Frame { return c.last }

// Advance moves to the next step. At the last step it does nothing and
// returns false.
func (c *Controller) Advance() bool { return c.Goto(c.step + 1) }

// Retreat moves to the previous step. At step 0 it does nothing and returns false.
func (c *Controller) Retreat() bool { return c.Goto(c.step - 1) }

// Goto jumps to step i. Out-of-range targets and the current step are no-ops.
// A transition clears the label highlighting of the old step, hides labels
// that are not part of the new step, and re-renders.
func (c *Controller) Goto(i int) bool {
	if i < 0 || i >= c.Count() || i == c.step {
		return false
	}
	prev := c.model.Step(c.step)
	next := c.model.Step(i)
	c.state.ClearLabelHot()
	c.renderer.ResetLabels(c.model, prev)
	c.renderer.HideLabels(c.model, difference(prev, next))
	c.log.Debug("step", slog.Int("from", c.step), slog.Int("to", i))
	c.step = i
	c.RequestRender()
	return true
}

// Do applies a step command.
func (c *Controller) Do(cmd Command) bool {
	switch cmd {
	case Advance:
		return c.Advance()
	case Retreat:
		return c.Retreat()
	}
	return false
}

// RequestRender redraws the current step synchronously.
func (c *Controller) RequestRender() render.Frame {
	c.last = c.renderer.RenderStep(c.model, c.step, c.state)
	if c.OnFrame != nil {
		c.OnFrame(c.last)
	}
	return c.last
}

// PointerMoved handles a pointer position in NDC.
func (c *Controller) PointerMoved(p vector.Pt) {
	c.state.MovePointer(p)
	c.RequestRender()
}

// PointerLeft handles the pointer leaving the canvas.
func (c *Controller) PointerLeft() {
	c.state.LeavePointer()
	c.RequestRender()
}

// PointerPressed handles pointer-down.
func (c *Controller) PointerPressed() {
	c.state.PressPointer()
	c.RequestRender()
}

// PointerReleased handles pointer-up.
func (c *Controller) PointerReleased() {
	c.state.ReleasePointer()
	c.RequestRender()
}

// LabelHovered handles hover changes on the text label of entity id.
func (c *Controller) LabelHovered(id string, hovered bool) {
	c.state.SetLabelHot(id, hovered)
	c.RequestRender()
}

func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, id := range b {
		in[id] = true
	}
	var out []string
	for _, id := range a {
		if !in[id] {
			out = append(out, id)
		}
	}
	return out
}
