/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package model

// Wire format of the geometry description:
//
//	{ "text": "...",
//	  "geometry": { "<id>": {"id": "<id>", "type": "Point", "color": [r,g,b,a], "data": {...}} },
//	  "animations": [["A","B"], ...] }

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"geoproof/internal/vector"
)

// Document is the JSON shape of a geometry description.
type Document struct {
	Text       string                `json:"text,omitempty"`
	Geometry   map[string]WireEntity `json:"geometry"`
	Animations [][]string            `json:"animations"`
}

// WireEntity is one entry of Document.Geometry.
type WireEntity struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Color *vector.Color   `json:"color,omitempty"`
	Data  json.RawMessage `json:"data"`
}

type pointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type lineData struct {
	P1 string `json:"p1"`
	P2 string `json:"p2"`
}

type polygonData struct {
	Points []string `json:"points"`
}

type circleData struct {
	P1     *string         `json:"p1"`
	P2     *string         `json:"p2"`
	P3     *string         `json:"p3"`
	Center json.RawMessage `json:"center"`
	Radius *float64        `json:"radius"`
}

// Decode validates data against the document schema and builds a Model.
func Decode(data []byte) (*Model, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return FromDocument(doc)
}

// FromDocument converts a decoded Document into a Model. Entities of an
// unsupported type become Unknown. Missing colors get the per-kind default:
// white points, purple circles, and the solarized palette in id order for
// everything else.
func FromDocument(doc Document) (*Model, error) {
	keys := make([]string, 0, len(doc.Geometry))
	for k := range doc.Geometry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	palette := 0
	entities := make([]Entity, 0, len(keys))
	for _, k := range keys {
		w := doc.Geometry[k]
		id := w.ID
		if id == "" {
			id = k
		}
		if id != k {
			return nil, fmt.Errorf("%w: entity key %q carries id %q", ErrInvalidDocument, k, w.ID)
		}
		e, err := decodeEntity(id, w)
		if err != nil {
			return nil, err
		}
		if w.Color == nil {
			e = withColor(e, defaultColor(e, &palette))
		}
		entities = append(entities, e)
	}
	m, err := New(entities, doc.Animations)
	if err != nil {
		return nil, err
	}
	return m.WithText(doc.Text), nil
}

func decodeEntity(id string, w WireEntity) (Entity, error) {
	base := Base{ID: id}
	if w.Color != nil {
		base.Paint = *w.Color
	}
	switch Kind(w.Type) {
	case KindPoint:
		var d pointData
		if err := unmarshalData(id, w.Data, &d); err != nil {
			return nil, err
		}
		return Point{Base: base, At: vector.Pt{X: d.X, Y: d.Y}}, nil
	case KindLine:
		var d lineData
		if err := unmarshalData(id, w.Data, &d); err != nil {
			return nil, err
		}
		return Line{Base: base, P1: d.P1, P2: d.P2}, nil
	case KindPolygon:
		var d polygonData
		if err := unmarshalData(id, w.Data, &d); err != nil {
			return nil, err
		}
		return Polygon{Base: base, Points: d.Points}, nil
	case KindCircle:
		var d circleData
		if err := unmarshalData(id, w.Data, &d); err != nil {
			return nil, err
		}
		center, err := decodeCenter(id, d.Center)
		if err != nil {
			return nil, err
		}
		return Circle{Base: base, Center: center, Radius: d.Radius, P1: deref(d.P1), P2: deref(d.P2), P3: deref(d.P3)}, nil
	}
	return Unknown{Base: base, Type: w.Type, Data: append(json.RawMessage(nil), w.Data...)}, nil
}

func unmarshalData(id string, raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: entity %q data: %v", ErrInvalidDocument, id, err)
	}
	return nil
}

// decodeCenter accepts a point id, an {x,y} object, or null.
func decodeCenter(id string, raw json.RawMessage) (CenterRef, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return CenterRef{}, nil
	}
	switch raw[0] {
	case '"':
		var ref string
		if err := json.Unmarshal(raw, &ref); err != nil {
			return CenterRef{}, fmt.Errorf("%w: entity %q center: %v", ErrInvalidDocument, id, err)
		}
		return CenterRef{Ref: ref}, nil
	case '{':
		var p pointData
		if err := json.Unmarshal(raw, &p); err != nil {
			return CenterRef{}, fmt.Errorf("%w: entity %q center: %v", ErrInvalidDocument, id, err)
		}
		return CenterRef{At: &vector.Pt{X: p.X, Y: p.Y}}, nil
	}
	return CenterRef{}, fmt.Errorf("%w: entity %q center must be a point id or {x,y}", ErrInvalidDocument, id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func defaultColor(e Entity, palette *int) vector.Color {
	switch e.(type) {
	case Point:
		return vector.White
	case Circle:
		return vector.Purple
	}
	c := vector.Solarized[*palette%len(vector.Solarized)]
	*palette++
	return c
}

func withColor(e Entity, c vector.Color) Entity {
	switch v := e.(type) {
	case Point:
		v.Paint = c
		return v
	case Line:
		v.Paint = c
		return v
	case Circle:
		v.Paint = c
		return v
	case Polygon:
		v.Paint = c
		return v
	case Unknown:
		v.Paint = c
		return v
	}
	return e
}

// Document converts the model back into its wire form.
func (m *Model) Document() (Document, error) {
	doc := Document{Text: m.text, Geometry: make(map[string]WireEntity, len(m.ids)), Animations: m.Steps()}
	for _, id := range m.ids {
		e := m.entities[id]
		col := e.Color()
		w := WireEntity{ID: id, Type: string(e.Kind()), Color: &col}
		var data any
		switch v := e.(type) {
		case Point:
			data = pointData{X: v.At.X, Y: v.At.Y}
		case Line:
			data = lineData{P1: v.P1, P2: v.P2}
		case Polygon:
			data = polygonData{Points: v.Points}
		case Circle:
			data = encodeCircle(v)
		case Unknown:
			data = json.RawMessage(`{}`)
			if len(v.Data) > 0 {
				data = v.Data
			}
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return Document{}, fmt.Errorf("encode %q: %w", id, err)
		}
		w.Data = raw
		doc.Geometry[id] = w
	}
	return doc, nil
}

// Encode renders the model as indented JSON.
func (m *Model) Encode() ([]byte, error) {
	doc, err := m.Document()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func encodeCircle(c Circle) map[string]any {
	out := map[string]any{"p1": optional(c.P1), "p2": optional(c.P2), "p3": optional(c.P3), "radius": nil, "center": nil}
	if c.Radius != nil {
		out["radius"] = *c.Radius
	}
	switch {
	case c.Center.At != nil:
		out["center"] = pointData{X: c.Center.At.X, Y: c.Center.At.Y}
	case c.Center.Ref != "":
		out["center"] = c.Center.Ref
	}
	return out
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
