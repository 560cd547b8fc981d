/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Shape is resolved, pickable geometry in NDC.
// Each shape knows its bounds and which cursor predicate applies to it.
type Shape interface {
	Bounds() Rect
	Hit(cursor Pt, tol Tolerance) bool
}

// PointShape is a single point.
type PointShape struct{ At Pt }

func (s PointShape) Bounds() Rect { return Rect{X: s.At.X, Y: s.At.Y} }
func (s PointShape) Hit(cursor Pt, tol Tolerance) bool {
	return PointUnderCursor(s.At, cursor, tol)
}

// SegmentShape is a straight segment between two points.
type SegmentShape struct{ P0, P1 Pt }

func (s SegmentShape) Bounds() Rect { return BoundsOf([]Pt{s.P0, s.P1}) }
func (s SegmentShape) Hit(cursor Pt, tol Tolerance) bool {
	return SegmentUnderCursor(s.P0, s.P1, cursor, tol)
}

// PolygonShape is a closed cycle of points; only its edges are pickable.
type PolygonShape struct{ Points []Pt }

func (s PolygonShape) Bounds() Rect { return BoundsOf(s.Points) }
func (s PolygonShape) Hit(cursor Pt, tol Tolerance) bool {
	return PolygonUnderCursor(s.Points, cursor, tol)
}

// CircleShape is picked through its tessellated outline.
type CircleShape struct {
	Center Pt
	Radius float64
	// Outline is the tessellated boundary; NewCircleShape fills it.
	Outline []Pt
}

// NewCircleShape tessellates the outline with the given angular step.
func NewCircleShape(center Pt, radius, step float64) CircleShape {
	return CircleShape{Center: center, Radius: radius, Outline: TessellateCircle(center, radius, step)}
}

func (s CircleShape) Bounds() Rect {
	return Rect{X: s.Center.X - s.Radius, Y: s.Center.Y - s.Radius, W: 2 * s.Radius, H: 2 * s.Radius}
}

func (s CircleShape) Hit(cursor Pt, tol Tolerance) bool {
	outline := s.Outline
	if outline == nil {
		outline = TessellateCircle(s.Center, s.Radius, DefaultCircleStep)
	}
	return PolygonUnderCursor(outline, cursor, tol)
}
