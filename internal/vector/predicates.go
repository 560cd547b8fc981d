/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Geometric predicates used for hit-testing and derived geometry.
// All functions are pure and operate in NDC.

import (
	"errors"
	"math"
)

// ErrDegenerate reports input for which a construction has no unique answer:
// collinear or coincident circumcircle points, or a zero-length segment.
var ErrDegenerate = errors.New("degenerate geometry")

// Distance is the 2D Euclidean distance between a and b.
func Distance(a, b Pt) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// Vec3 is an explicit three-dimensional point. The scene pipeline is 2D; Vec3
// exists for callers that genuinely need depth.
type Vec3 struct{ X, Y, Z float64 }

// Distance3 is the 3D Euclidean distance. Z is always taken into account,
// including Z == 0.
func Distance3(a, b Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Circumcenter returns the point equidistant from p1, p2 and p3.
// The perpendicular bisectors are intersected in determinant form, so chords
// parallel to either axis are handled. Collinear or coincident input yields
// ErrDegenerate.
func Circumcenter(p1, p2, p3 Pt) (Pt, error) {
	// translate to p1 to keep the determinant well conditioned
	b := p2.Sub(p1)
	c := p3.Sub(p1)
	d := 2 * (b.X*c.Y - b.Y*c.X)
	scale := math.Max(b.NormSq(), c.NormSq())
	if scale == 0 || math.Abs(d) <= 1e-12*scale {
		return Pt{}, ErrDegenerate
	}
	bb := b.NormSq()
	cc := c.NormSq()
	ux := (c.Y*bb - b.Y*cc) / d
	uy := (b.X*cc - c.X*bb) / d
	center := Pt{X: p1.X + ux, Y: p1.Y + uy}
	if !center.IsFinite() {
		return Pt{}, ErrDegenerate
	}
	return center, nil
}

// Circumcircle returns center and radius of the circle through p1, p2, p3.
func Circumcircle(p1, p2, p3 Pt) (Pt, float64, error) {
	c, err := Circumcenter(p1, p2, p3)
	if err != nil {
		return Pt{}, 0, err
	}
	return c, Distance(c, p1), nil
}

// Tolerance holds the hit radii used by the cursor predicates.
type Tolerance struct {
	// Point is the maximum cursor distance for a point hit.
	Point float64
	// Segment is the maximum perpendicular cursor distance for a segment hit.
	Segment float64
	// SpritePx is the on-screen size of a point sprite in pixels. Together with
	// CanvasPx it yields the half-sprite offset applied to point centers.
	SpritePx float64
	// CanvasPx is the canvas edge length in pixels; zero disables the offset.
	CanvasPx float64
}

// DesktopTolerance returns the pointer-input hit radii.
func DesktopTolerance(canvasPx float64) Tolerance {
	return Tolerance{Point: 0.05, Segment: 0.03, SpritePx: 5, CanvasPx: canvasPx}
}

// TouchTolerance returns the wider hit radii used on touch form factors.
func TouchTolerance(canvasPx float64) Tolerance {
	return Tolerance{Point: 0.08, Segment: 0.1, SpritePx: 5, CanvasPx: canvasPx}
}

// spriteOffset is half of the sprite size expressed in NDC.
func (t Tolerance) spriteOffset() float64 {
	if t.CanvasPx <= 0 || t.SpritePx <= 0 {
		return 0
	}
	sz := t.SpritePx / (2 * t.CanvasPx)
	return sz / 2
}

// PointUnderCursor reports whether cursor lies within tol.Point of point.
// The point center is shifted by half a sprite so the hit region matches what
// is drawn.
func PointUnderCursor(point, cursor Pt, tol Tolerance) bool {
	off := tol.spriteOffset()
	center := Pt{X: point.X + off, Y: point.Y + off}
	return Distance(cursor, center) < tol.Point
}

// SegmentProjection projects cursor onto the line through p0,p1 and returns
// the projection coefficient along p0->p1 and the perpendicular distance.
// A zero-length segment yields ErrDegenerate.
func SegmentProjection(p0, p1, cursor Pt) (coeff, dist float64, err error) {
	n := p1.Sub(p0)
	ns := n.NormSq()
	if ns == 0 {
		return 0, 0, ErrDegenerate
	}
	am := cursor.Sub(p0)
	coeff = n.Dot(am) / ns
	dist = Distance(am, n.Scale(coeff))
	return coeff, dist, nil
}

// SegmentUnderCursor reports whether cursor is within tol.Segment of the
// segment p0-p1. Projections outside [0,1] never hit, even when the cursor
// is on the infinite extension. Zero-length segments never hit.
func SegmentUnderCursor(p0, p1, cursor Pt, tol Tolerance) bool {
	coeff, d, err := SegmentProjection(p0, p1, cursor)
	if err != nil {
		return false
	}
	if coeff < 0 || coeff > 1 {
		return false
	}
	return d < tol.Segment
}

// PolygonUnderCursor reports whether any edge of the closed polygon, including
// the edge from the last point back to the first, is under the cursor.
// Fewer than two points never hit.
func PolygonUnderCursor(points []Pt, cursor Pt, tol Tolerance) bool {
	if len(points) < 2 {
		return false
	}
	for i := range points {
		next := (i + 1) % len(points)
		if SegmentUnderCursor(points[i], points[next], cursor, tol) {
			return true
		}
	}
	return false
}

// PointInDisc reports whether p lies inside or on the disc.
func PointInDisc(p, center Pt, radius float64) bool {
	return Distance(p, center) <= radius
}
