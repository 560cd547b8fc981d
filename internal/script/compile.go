/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	applog "geoproof/internal/log"
	"geoproof/internal/model"
	"geoproof/internal/vector"
)

// object is an entity under construction.
type object struct {
	id    string
	kind  model.Kind
	color *vector.Color

	x, y  *float64
	decl  Tag // first tag that created the object
	p     [3]string
	ctr   string
	r     *float64
	verts []string
}

type compiler struct {
	objects map[string]*object
	order   []string

	steps   [][]string
	current []string
	inStep  map[string]bool

	errs []Error
}

// Compile turns .yc markup into a geometry description. Entities are
// created by the tags that mention them; [loc] gives points coordinates;
// [step] closes an animation step holding every entity touched since the
// last [clear]. A final step is always appended. The returned errors list
// every markup problem found; the document is only meaningful when there
// are none.
func Compile(text string) (model.Document, []Error) {
	tags, errs := Extract(text)
	c := &compiler{objects: map[string]*object{}, inStep: map[string]bool{}, errs: errs}
	for _, t := range tags {
		c.apply(t)
	}
	c.closeStep()
	c.checkPlaced()

	doc := c.document()
	doc.Text = FormatText(text)
	applog.WithComponent("script").Debug("compiled",
		slog.Int("tags", len(tags)),
		slog.Int("entities", len(doc.Geometry)),
		slog.Int("steps", len(doc.Animations)),
		slog.Int("errors", len(c.errs)))
	return doc, c.errs
}

// CompileModel compiles text and decodes the result.
func CompileModel(text string) (*model.Model, error) {
	doc, errs := Compile(text)
	if err := Errors(errs); err != nil {
		return nil, err
	}
	return model.FromDocument(doc)
}

func (c *compiler) errorf(t Tag, format string, args ...any) {
	c.errs = append(c.errs, Error{Line: t.Line, Column: t.Column, Message: fmt.Sprintf(format, args...)})
}

func (c *compiler) apply(t Tag) {
	var touched []string
	var err error
	switch t.Type {
	case "point":
		touched, err = c.point(t)
	case "line":
		touched, err = c.line(t)
	case "circle":
		touched, err = c.circle(t)
	case "center":
		touched, err = c.center(t)
	case "polygon":
		touched, err = c.polygon(t)
	case "loc":
		if err := c.loc(t); err != nil {
			c.errorf(t, "%v", err)
		}
		return
	case "step":
		c.closeStep()
		return
	case "clear":
		c.current, c.inStep = nil, map[string]bool{}
		return
	case "definitions":
		return
	default:
		c.errorf(t, "unknown tag %q", t.Keyword)
		return
	}
	if err != nil {
		c.errorf(t, "%s: %v", t.Type, err)
		return
	}
	if hex, ok := t.Option("color"); ok && len(touched) > 0 {
		col, err := vector.FromHex(hex)
		if err != nil {
			c.errorf(t, "color %q: %v", hex, err)
		} else {
			c.objects[touched[0]].color = &col
		}
	}
	for _, id := range touched {
		if !c.inStep[id] {
			c.inStep[id] = true
			c.current = append(c.current, id)
		}
	}
}

func (c *compiler) closeStep() {
	c.steps = append(c.steps, append([]string{}, c.current...))
}

// obtain returns the object id of the given kind, creating it when absent.
func (c *compiler) obtain(id string, kind model.Kind, t Tag) (*object, error) {
	if id == "" {
		return nil, fmt.Errorf("missing name")
	}
	if o, ok := c.objects[id]; ok {
		if o.kind != kind {
			return nil, fmt.Errorf("%q is already a %s", id, o.kind.Label())
		}
		return o, nil
	}
	o := &object{id: id, kind: kind, decl: t}
	c.objects[id] = o
	c.order = append(c.order, id)
	return o, nil
}

// vertices obtains one point per character of name.
func (c *compiler) vertices(name string, t Tag) ([]string, error) {
	var ids []string
	for _, r := range name {
		p, err := c.obtain(string(r), model.KindPoint, t)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.id)
	}
	return ids, nil
}

func (c *compiler) point(t Tag) ([]string, error) {
	p, err := c.obtain(t.Name, model.KindPoint, t)
	if err != nil {
		return nil, err
	}
	return []string{p.id}, nil
}

func (c *compiler) line(t Tag) ([]string, error) {
	id := rotateLex(t.Name)
	if len([]rune(id)) != 2 {
		return nil, fmt.Errorf("name %q must be two point names", t.Name)
	}
	pts, err := c.vertices(id, t)
	if err != nil {
		return nil, err
	}
	l, err := c.obtain(id, model.KindLine, t)
	if err != nil {
		return nil, err
	}
	l.p[0], l.p[1] = pts[0], pts[1]
	return []string{l.id, pts[0], pts[1]}, nil
}

// circle declares a circle. A three-letter name means three boundary
// points; center= and radius= add a center point and a numeric radius.
// Mentioning an existing circle only touches it and its points.
func (c *compiler) circle(t Tag) ([]string, error) {
	if o, ok := c.objects[t.Name]; ok && o.kind == model.KindCircle {
		touched := []string{o.id}
		for _, p := range o.p {
			if p != "" {
				touched = append(touched, p)
			}
		}
		return touched, nil
	}
	o, err := c.obtain(t.Name, model.KindCircle, t)
	if err != nil {
		return nil, err
	}
	touched := []string{o.id}
	if len([]rune(t.Name)) == 3 {
		pts, err := c.vertices(t.Name, t)
		if err != nil {
			return nil, err
		}
		copy(o.p[:], pts)
		touched = append(touched, pts...)
	}
	if name, ok := t.Option("center"); ok {
		p, err := c.obtain(name, model.KindPoint, t)
		if err != nil {
			return nil, err
		}
		o.ctr = p.id
		touched = append(touched, p.id)
	}
	if v, ok := t.Option("radius"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("radius %q is not a number", v)
		}
		o.r = &r
	}
	return touched, nil
}

func (c *compiler) center(t Tag) ([]string, error) {
	name, ok := t.Option("circle")
	if !ok {
		return nil, fmt.Errorf("missing circle=")
	}
	circ, ok := c.objects[name]
	if !ok || circ.kind != model.KindCircle {
		return nil, fmt.Errorf("no circle %q declared before", name)
	}
	p, err := c.obtain(t.Name, model.KindPoint, t)
	if err != nil {
		return nil, err
	}
	circ.ctr = p.id
	return []string{p.id}, nil
}

func (c *compiler) polygon(t Tag) ([]string, error) {
	id := rotateLex(t.Name)
	if len([]rune(id)) < 3 {
		return nil, fmt.Errorf("name %q needs at least three points", t.Name)
	}
	pts, err := c.vertices(id, t)
	if err != nil {
		return nil, err
	}
	o, err := c.obtain(id, model.KindPolygon, t)
	if err != nil {
		return nil, err
	}
	o.verts = pts
	return append([]string{o.id}, pts...), nil
}

// loc places a point, creating it if needed. Coordinates come from x= and
// y= or from two bare numbers after the name.
func (c *compiler) loc(t Tag) error {
	xs, okx := t.Option("x")
	ys, oky := t.Option("y")
	if !okx && !oky && len(t.Args) >= 2 {
		xs, ys, okx, oky = t.Args[0], t.Args[1], true, true
	}
	if !okx || !oky {
		return fmt.Errorf("loc %q needs x and y", t.Name)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return fmt.Errorf("loc %q: x %q is not a number", t.Name, xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return fmt.Errorf("loc %q: y %q is not a number", t.Name, ys)
	}
	p, err := c.obtain(t.Name, model.KindPoint, t)
	if err != nil {
		return err
	}
	p.x, p.y = &x, &y
	return nil
}

// checkPlaced reports points that never received a [loc].
func (c *compiler) checkPlaced() {
	for _, id := range c.order {
		o := c.objects[id]
		if o.kind == model.KindPoint && o.x == nil {
			c.errorf(o.decl, "point %q has no location; add [loc %s x y]", id, id)
		}
	}
}

func (c *compiler) document() model.Document {
	doc := model.Document{Geometry: make(map[string]model.WireEntity, len(c.order)), Animations: c.steps}
	for _, id := range c.order {
		o := c.objects[id]
		var data any
		switch o.kind {
		case model.KindPoint:
			x, y := 0.0, 0.0
			if o.x != nil {
				x, y = *o.x, *o.y
			}
			data = map[string]float64{"x": x, "y": y}
		case model.KindLine:
			data = map[string]string{"p1": o.p[0], "p2": o.p[1]}
		case model.KindPolygon:
			data = map[string][]string{"points": o.verts}
		case model.KindCircle:
			data = map[string]any{
				"p1":     nullable(o.p[0]),
				"p2":     nullable(o.p[1]),
				"p3":     nullable(o.p[2]),
				"center": nullable(o.ctr),
				"radius": o.r,
			}
		}
		raw, _ := json.Marshal(data)
		doc.Geometry[id] = model.WireEntity{ID: id, Type: string(o.kind), Color: o.color, Data: raw}
	}
	return doc
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
