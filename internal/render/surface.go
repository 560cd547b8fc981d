/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"

	"geoproof/internal/vector"
)

// PrimitiveKind selects how a vertex run is assembled by the draw surface.
type PrimitiveKind uint8

const (
	Points PrimitiveKind = iota
	Lines
	TriangleFan
	TriangleStrip
	LineStrip
)

func (k PrimitiveKind) String() string {
	switch k {
	case Points:
		return "points"
	case Lines:
		return "lines"
	case TriangleFan:
		return "triangle-fan"
	case TriangleStrip:
		return "triangle-strip"
	case LineStrip:
		return "line-strip"
	}
	return fmt.Sprintf("primitive(%d)", uint8(k))
}

// FloatsPerVertex is the vertex stride: x, y, z, w, r, g, b, a.
const FloatsPerVertex = 8

// Surface is the draw backend. Vertices are in NDC. Submit receives exactly
// count*FloatsPerVertex floats; the slice is only valid during the call.
type Surface interface {
	Clear(background vector.Color)
	Submit(kind PrimitiveKind, vertices []float32, count int)
}

// LabelRef identifies the text label of an entity.
type LabelRef struct {
	Kind string // lowercase entity kind: point, line, circle, polygon
	ID   string
}

// Name is the label element name, "text_<kind>_<id>".
func (r LabelRef) Name() string { return "text_" + r.Kind + "_" + r.ID }

// Labels is the text-label collaborator notified of hot-state changes.
type Labels interface {
	ShowLabel(ref LabelRef)
	HideLabel(ref LabelRef)
	SetLabelColor(ref LabelRef, hex string)
	SetLabelShadowed(ref LabelRef, shadowed bool)
}

// Call is one recorded Submit.
type Call struct {
	Kind     PrimitiveKind
	Vertices []float32
	Count    int
}

// Vertex returns the position and color of vertex i.
func (c Call) Vertex(i int) (vector.Pt, vector.Color) {
	v := c.Vertices[i*FloatsPerVertex : (i+1)*FloatsPerVertex]
	return vector.Pt{X: float64(v[0]), Y: float64(v[1])},
		vector.Color{R: float64(v[4]), G: float64(v[5]), B: float64(v[6]), A: float64(v[7])}
}

// Recorder is a Surface that keeps every call of the last frame.
type Recorder struct {
	Background vector.Color
	Calls      []Call
	Clears     int
}

func (r *Recorder) Clear(bg vector.Color) {
	r.Background = bg
	r.Calls = r.Calls[:0]
	r.Clears++
}

func (r *Recorder) Submit(kind PrimitiveKind, vertices []float32, count int) {
	r.Calls = append(r.Calls, Call{Kind: kind, Vertices: append([]float32(nil), vertices...), Count: count})
}
