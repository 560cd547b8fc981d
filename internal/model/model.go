/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package model holds the geometry graph of a proof: entities keyed by id,
// the ordered animation steps, and the lazily derived circle geometry.
// Entities are read-only after construction.
package model

import (
	"fmt"
	"sort"
	"sync"

	"geoproof/internal/vector"
)

// Model is the immutable entity graph plus the resolved-circle cache.
// It is safe for concurrent reads.
type Model struct {
	entities map[string]Entity
	ids      []string
	steps    [][]string
	text     string

	mu       sync.Mutex
	resolved map[string]resolution
}

type resolution struct {
	circle ResolvedCircle
	err    error
}

// New builds a model from entities and animation steps. Ids must be unique
// and non-empty. When steps is empty the model gets a single step showing
// every entity in id order. Step entries naming unknown ids are kept; the
// renderer reports them per frame.
func New(entities []Entity, steps [][]string) (*Model, error) {
	m := &Model{
		entities: make(map[string]Entity, len(entities)),
		resolved: make(map[string]resolution),
	}
	for _, e := range entities {
		if e == nil {
			continue
		}
		id := e.EntityID()
		if id == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidDocument)
		}
		if _, dup := m.entities[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		m.entities[id] = e
		m.ids = append(m.ids, id)
	}
	sort.Strings(m.ids)
	if len(steps) == 0 {
		m.steps = [][]string{append([]string(nil), m.ids...)}
	} else {
		m.steps = make([][]string, len(steps))
		for i, s := range steps {
			m.steps[i] = append([]string(nil), s...)
		}
	}
	return m, nil
}

// WithText returns m with the annotated proof text attached.
func (m *Model) WithText(text string) *Model {
	m.text = text
	return m
}

// Text is the annotated proof text (HTML fragment), possibly empty.
func (m *Model) Text() string { return m.text }

// Get returns the entity with the given id.
func (m *Model) Get(id string) (Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return e, nil
}

// IDs lists all entity ids in sorted order.
func (m *Model) IDs() []string { return append([]string(nil), m.ids...) }

// Len is the number of entities.
func (m *Model) Len() int { return len(m.ids) }

// StepCount is the number of animation steps; always at least one.
func (m *Model) StepCount() int { return len(m.steps) }

// Step returns the entity ids visible at step i. Out of range yields nil.
func (m *Model) Step(i int) []string {
	if i < 0 || i >= len(m.steps) {
		return nil
	}
	return append([]string(nil), m.steps[i]...)
}

// Steps returns a copy of all animation steps.
func (m *Model) Steps() [][]string {
	out := make([][]string, len(m.steps))
	for i := range m.steps {
		out[i] = m.Step(i)
	}
	return out
}

// Point dereferences ref from the perspective of entity owner. Absent ids and
// ids that are not points yield a *ReferenceError.
func (m *Model) Point(owner, ref string) (vector.Pt, error) {
	e, ok := m.entities[ref]
	if !ok {
		return vector.Pt{}, &ReferenceError{Entity: owner, Ref: ref}
	}
	p, ok := e.(Point)
	if !ok {
		return vector.Pt{}, &ReferenceError{Entity: owner, Ref: ref}
	}
	return p.At, nil
}

// Points dereferences refs in order.
func (m *Model) Points(owner string, refs []string) ([]vector.Pt, error) {
	out := make([]vector.Pt, 0, len(refs))
	for _, r := range refs {
		p, err := m.Point(owner, r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
