/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import (
	"fmt"

	"geoproof/internal/model"
	"geoproof/internal/vector"
)

// Result is the per-entity outcome of one evaluation.
type Result struct {
	// Hot is true when the pointer is over the entity or the entity holds the press.
	Hot bool
	// Active is true when the entity holds the current press.
	Active bool
	// TextHot is true when the entity's label is hovered.
	TextHot bool
}

// Highlighted reports whether the entity should render in the hot color.
func (r Result) Highlighted() bool { return r.Hot || r.TextHot }

// Engine applies the cursor predicates to entity shapes.
type Engine struct {
	Tolerance  vector.Tolerance
	CircleStep float64
}

// NewEngine returns an engine with the given hit radii and circle resolution.
func NewEngine(tol vector.Tolerance, circleStep float64) *Engine {
	if circleStep <= 0 {
		circleStep = vector.DefaultCircleStep
	}
	return &Engine{Tolerance: tol, CircleStep: circleStep}
}

// BeginFrame clears the geometry-hot set so the frame can rebuild it.
func (e *Engine) BeginFrame(s *State) {
	for k := range s.hot {
		delete(s.hot, k)
	}
}

// Evaluate decides whether entity id, with the given shape, is hot. Hot is
// not exclusive: every entity under the pointer is hot. On the first
// evaluated frame after a press, the first hot entity claims the press when
// no other entity holds it; the claim persists until release regardless of
// pointer movement.
func (e *Engine) Evaluate(s *State, id string, shape vector.Shape) Result {
	hit := shape != nil && shape.Hit(s.pointer, e.Tolerance)
	if hit && s.down && s.claimArmed && s.active == "" {
		s.active = id
	}
	active := s.active != "" && s.active == id
	r := Result{Hot: hit || active, Active: active, TextHot: s.textHot[id]}
	if r.Hot {
		s.hot[id] = true
	}
	return r
}

// EndFrame closes the claim window opened by PressPointer.
func (e *Engine) EndFrame(s *State) { s.claimArmed = false }

// Shape resolves ent into pickable geometry, dereferencing points and
// deriving circles through m. Unknown kinds yield model.ErrUnknownKind.
func (e *Engine) Shape(m *model.Model, ent model.Entity) (vector.Shape, error) {
	id := ent.EntityID()
	switch v := ent.(type) {
	case model.Point:
		return vector.PointShape{At: v.At}, nil
	case model.Line:
		p1, err := m.Point(id, v.P1)
		if err != nil {
			return nil, err
		}
		p2, err := m.Point(id, v.P2)
		if err != nil {
			return nil, err
		}
		if p1 == p2 {
			return nil, &model.GeometryError{Entity: id, Err: fmt.Errorf("line endpoints coincide: %w", vector.ErrDegenerate)}
		}
		return vector.SegmentShape{P0: p1, P1: p2}, nil
	case model.Circle:
		rc, err := m.Circle(id)
		if err != nil {
			return nil, err
		}
		return vector.NewCircleShape(rc.Center, rc.Radius, e.CircleStep), nil
	case model.Polygon:
		if len(v.Points) < 2 {
			return nil, &model.GeometryError{Entity: id, Err: fmt.Errorf("polygon needs at least 2 points, has %d: %w", len(v.Points), vector.ErrDegenerate)}
		}
		pts, err := m.Points(id, v.Points)
		if err != nil {
			return nil, err
		}
		return vector.PolygonShape{Points: pts}, nil
	}
	return nil, fmt.Errorf("%w: %q has type %q", model.ErrUnknownKind, id, ent.Kind())
}
