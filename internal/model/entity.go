/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package model

// This file defines the geometric entities of a proof scene.
// Entities form a closed set: every consumer switches over the concrete
// types below, and anything the decoder does not recognise becomes Unknown.

import (
	"encoding/json"
	"strings"

	"geoproof/internal/vector"
)

// Kind names an entity variant as it appears in the input description.
type Kind string

const (
	KindPoint   Kind = "Point"
	KindLine    Kind = "Line"
	KindCircle  Kind = "Circle"
	KindPolygon Kind = "Polygon"
)

// Label returns the lowercase kind used in label names ("point", "line", ...).
func (k Kind) Label() string { return strings.ToLower(string(k)) }

// Entity is one of Point, Line, Circle, Polygon or Unknown.
type Entity interface {
	EntityID() string
	Kind() Kind
	Color() vector.Color
	entity()
}

// Base carries the fields every entity shares.
type Base struct {
	ID    string
	Paint vector.Color
}

func (b Base) EntityID() string    { return b.ID }
func (b Base) Color() vector.Color { return b.Paint }
func (Base) entity()               {}

// Point is a leaf entity with NDC coordinates.
type Point struct {
	Base
	At vector.Pt
}

func (Point) Kind() Kind { return KindPoint }

// Line joins two points by reference.
type Line struct {
	Base
	P1, P2 string
}

func (Line) Kind() Kind { return KindLine }

// CenterRef is a circle center given either as a point id or as coordinates.
// The zero value means "no center".
type CenterRef struct {
	Ref string
	At  *vector.Pt
}

// IsZero reports whether no center was given.
func (c CenterRef) IsZero() bool { return c.Ref == "" && c.At == nil }

// Circle is described by any of: center and radius, three boundary points,
// or a center plus one boundary point. Model.Circle derives the concrete form.
type Circle struct {
	Base
	Center     CenterRef
	Radius     *float64
	P1, P2, P3 string
}

func (Circle) Kind() Kind { return KindCircle }

// Polygon is an implicitly closed cycle of point references.
type Polygon struct {
	Base
	Points []string
}

func (Polygon) Kind() Kind { return KindPolygon }

// Unknown holds an entity whose type is not supported. It is kept so that
// renderers can report and skip it; Data is written back unchanged.
type Unknown struct {
	Base
	Type string
	Data json.RawMessage
}

func (u Unknown) Kind() Kind { return Kind(u.Type) }

// ResolvedCircle is the concrete form of a Circle.
type ResolvedCircle struct {
	Center vector.Pt
	Radius float64
}
