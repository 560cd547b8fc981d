/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry in normalized device coordinates (NDC).
// Scene coordinates live in [-1,1]x[-1,1] with +Y pointing up; pixel space
// is reached through an Affine2D built by NDCToPixel.

import "math"

// Pt is a 2D point or vector.
type Pt struct{ X, Y float64 }

// P is a short constructor for Pt.
func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func (p Pt) Add(q Pt) Pt        { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt        { return Pt{p.X - q.X, p.Y - q.Y} }
func (p Pt) Scale(c float64) Pt { return Pt{p.X * c, p.Y * c} }
func (p Pt) Dot(q Pt) float64   { return p.X*q.X + p.Y*q.Y }
func (p Pt) NormSq() float64    { return p.Dot(p) }
func (p Pt) Norm() float64      { return math.Sqrt(p.NormSq()) }
func (p Pt) IsFinite() bool     { return isFinite(p.X) && isFinite(p.Y) }
func (p Pt) Midpoint(q Pt) Pt   { return Pt{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

// Lerp interpolates linearly from p (t=0) to q (t=1).
func (p Pt) Lerp(q Pt, t float64) Pt { return p.Add(q.Sub(p).Scale(t)) }

// Normal returns the unit vector perpendicular to p (rotated clockwise).
// The zero vector yields the zero vector.
func (p Pt) Normal() Pt {
	n := p.Norm()
	if n == 0 {
		return Pt{}
	}
	u := p.Scale(1 / n)
	return Pt{u.Y, -u.X}
}

// OffCanvas is the pointer sentinel used when the pointer is not over the
// drawing area. It is far enough outside [-1,1] that no predicate can match.
var OffCanvas = Pt{X: -1e7, Y: -1e7}

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// BoundsOf returns the bounding rect of pts; empty input yields the zero Rect.
func BoundsOf(pts []Pt) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Invert computes the inverse transform. A singular matrix yields Identity.
func (m Affine2D) Invert() Affine2D {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity
	}
	invDet := 1 / det
	return Affine2D{
		A: m.D * invDet,
		B: -m.B * invDet,
		C: -m.C * invDet,
		D: m.A * invDet,
		E: (m.C*m.F - m.D*m.E) * invDet,
		F: (m.B*m.E - m.A*m.F) * invDet,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// NDCToPixel maps NDC onto a w x h pixel raster with the origin at the top-left
// corner: x = (ndc.x+1)*w/2, y = (1-ndc.y)*h/2.
func NDCToPixel(w, h float64) Affine2D {
	return Translate(w/2, h/2).Mul(Scale(w/2, -h/2))
}

// PixelToNDC is the inverse of NDCToPixel.
func PixelToNDC(w, h float64) Affine2D { return NDCToPixel(w, h).Invert() }

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
