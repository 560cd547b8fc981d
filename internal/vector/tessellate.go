/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// DefaultCircleStep is the angular increment (radians) used to approximate circles.
const DefaultCircleStep = 0.05

// TessellateCircle approximates a circle by a closed polyline. Samples start
// at angle 0 and advance by step while theta <= 2π; the first sample is
// appended again so the polyline is explicitly closed. A non-positive step
// falls back to DefaultCircleStep.
//
// Circle picking runs PolygonUnderCursor over this polyline; there is no
// analytic circle test.
func TessellateCircle(center Pt, radius, step float64) []Pt {
	if step <= 0 || math.IsNaN(step) {
		step = DefaultCircleStep
	}
	tau := 2 * math.Pi
	n := int(tau/step) + 2
	pts := make([]Pt, 0, n)
	for i := 0; ; i++ {
		theta := float64(i) * step
		if theta > tau {
			break
		}
		pts = append(pts, Pt{X: center.X + radius*math.Cos(theta), Y: center.Y + radius*math.Sin(theta)})
	}
	pts = append(pts, Pt{X: center.X + radius, Y: center.Y})
	return pts
}

// StrokeStrip thickens a polyline into a triangle strip: each input point
// contributes two vertices offset by width/2 along the segment normal, one
// on each side. The last point reuses the normal of the final segment.
// Fewer than two points yield nil.
func StrokeStrip(points []Pt, width float64) []Pt {
	if len(points) < 2 {
		return nil
	}
	half := width / 2
	out := make([]Pt, 0, 2*len(points))
	for i, p := range points {
		var n Pt
		if i < len(points)-1 {
			n = p.Sub(points[i+1]).Normal()
		} else {
			n = points[i-1].Sub(p).Normal()
		}
		off := n.Scale(half)
		out = append(out, p.Add(off), p.Sub(off))
	}
	return out
}

// ClosePolyline returns pts with the first point appended, unless already closed.
func ClosePolyline(pts []Pt) []Pt {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Pt, len(pts), len(pts)+1)
	copy(out, pts)
	if pts[0] != pts[len(pts)-1] {
		out = append(out, pts[0])
	}
	return out
}
