/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pick decides, per frame, which entities are under the pointer.
//
// State is the interaction state shared by the event handlers and the
// renderer. It is not synchronized: all calls must come from the goroutine
// that owns the draw surface.
package pick

import (
	"sort"

	"geoproof/internal/vector"
)

// State is the pointer and highlight state consumed by one frame.
type State struct {
	pointer vector.Pt
	down    bool

	// hot is rebuilt by every frame.
	hot map[string]bool
	// textHot is driven by label hover events and survives frames.
	textHot map[string]bool

	active     string
	claimArmed bool
}

// NewState returns a state with the pointer off canvas and nothing hot.
func NewState() *State {
	return &State{
		pointer: vector.OffCanvas,
		hot:     make(map[string]bool),
		textHot: make(map[string]bool),
	}
}

// Pointer is the current pointer position in NDC.
func (s *State) Pointer() vector.Pt { return s.pointer }

// Down reports whether the pointer is pressed.
func (s *State) Down() bool { return s.down }

// MovePointer records a pointer position in NDC.
func (s *State) MovePointer(p vector.Pt) { s.pointer = p }

// LeavePointer moves the pointer to the off-canvas sentinel.
func (s *State) LeavePointer() { s.pointer = vector.OffCanvas }

// PressPointer marks the pointer as pressed. The next evaluated frame may let
// one hot entity claim the press.
func (s *State) PressPointer() {
	if !s.down {
		s.claimArmed = true
	}
	s.down = true
}

// ReleasePointer ends a press and drops the active claim.
func (s *State) ReleasePointer() {
	s.down = false
	s.claimArmed = false
	s.active = ""
}

// Active returns the entity holding the press, if any.
func (s *State) Active() (string, bool) { return s.active, s.active != "" }

// SetLabelHot marks id as hot (or not) because its text label is hovered.
func (s *State) SetLabelHot(id string, hot bool) {
	if hot {
		s.textHot[id] = true
	} else {
		delete(s.textHot, id)
	}
}

// ClearLabelHot forgets all label-driven highlights.
func (s *State) ClearLabelHot() {
	for k := range s.textHot {
		delete(s.textHot, k)
	}
}

// IsTextHot reports whether id is highlighted through its label.
func (s *State) IsTextHot(id string) bool { return s.textHot[id] }

// IsHot reports whether id was under the pointer in the last frame.
func (s *State) IsHot(id string) bool { return s.hot[id] }

// Hot lists the geometry-hot ids of the last frame in sorted order.
func (s *State) Hot() []string { return keys(s.hot) }

// TextHot lists the label-hot ids in sorted order.
func (s *State) TextHot() []string { return keys(s.textHot) }

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
