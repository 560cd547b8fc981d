/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package label keeps the state of the text labels that accompany a proof:
// which labels are visible, their color, and whether they are highlighted.
package label

import (
	"sort"
	"sync"

	"geoproof/internal/render"
)

// State is the presentation state of one label.
type State struct {
	Ref      render.LabelRef
	Visible  bool
	Color    string // "#rrggbb"
	Shadowed bool
}

// Board implements render.Labels in memory. It is safe for concurrent use;
// OnChange, when set, is called after every mutation with the new state.
type Board struct {
	mu       sync.Mutex
	labels   map[string]*State
	OnChange func(State)
}

// NewBoard returns an empty board.
func NewBoard() *Board { return &Board{labels: make(map[string]*State)} }

var _ render.Labels = (*Board)(nil)

func (b *Board) update(ref render.LabelRef, fn func(*State)) {
	b.mu.Lock()
	st, ok := b.labels[ref.Name()]
	if !ok {
		st = &State{Ref: ref}
		b.labels[ref.Name()] = st
	}
	before := *st
	fn(st)
	after := *st
	cb := b.OnChange
	b.mu.Unlock()
	if cb != nil && before != after {
		cb(after)
	}
}

func (b *Board) ShowLabel(ref render.LabelRef) {
	b.update(ref, func(s *State) { s.Visible = true })
}

func (b *Board) HideLabel(ref render.LabelRef) {
	b.update(ref, func(s *State) { s.Visible = false; s.Shadowed = false })
}

func (b *Board) SetLabelColor(ref render.LabelRef, hex string) {
	b.update(ref, func(s *State) { s.Color = hex })
}

func (b *Board) SetLabelShadowed(ref render.LabelRef, shadowed bool) {
	b.update(ref, func(s *State) { s.Shadowed = shadowed })
}

// Get returns the state of the label with the given name.
func (b *Board) Get(name string) (State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.labels[name]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// All returns every known label sorted by name.
func (b *Board) All() []State {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]State, 0, len(b.labels))
	for _, st := range b.labels {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.Name() < out[j].Ref.Name() })
	return out
}

// Highlighted returns the names of shadowed labels, sorted.
func (b *Board) Highlighted() []string {
	var out []string
	for _, st := range b.All() {
		if st.Shadowed {
			out = append(out, st.Ref.Name())
		}
	}
	return out
}
