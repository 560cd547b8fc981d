/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render assembles the visible entities of one animation step into
// vertex runs and submits them to a Surface in a fixed paint order:
//
//  1. highlighted circles and polygons
//  2. other circles and polygons
//  3. other lines
//  4. highlighted lines
//  5. points
//
// Hot filled shapes go first so their strokes stay visible, and points are
// always on top.
package render

import (
	"log/slog"

	"geoproof/internal/model"
	"geoproof/internal/pick"
	"geoproof/internal/vector"

	applog "geoproof/internal/log"
)

// Skip records an entity that could not be drawn in a frame.
type Skip struct {
	ID  string
	Err error
}

// Frame reports what one RenderStep did.
type Frame struct {
	Step int
	// Order lists the drawn entity ids in paint order.
	Order []string
	// Highlighted lists the ids drawn in the hot color, in paint order.
	Highlighted []string
	Skipped     []Skip
	Calls       int
}

// Renderer owns the vertex buffer. It is not safe for concurrent use.
type Renderer struct {
	surface Surface
	labels  Labels
	engine  *pick.Engine
	opts    Options
	buf     []float32
	calls   int
	log     *slog.Logger
}

// New returns a renderer drawing to surface. labels may be nil.
func New(surface Surface, labels Labels, engine *pick.Engine, opts Options) *Renderer {
	opts = opts.withDefaults()
	if engine == nil {
		engine = pick.NewEngine(vector.DesktopTolerance(0), opts.CircleStep)
	}
	return &Renderer{
		surface: surface,
		labels:  labels,
		engine:  engine,
		opts:    opts,
		buf:     make([]float32, opts.InitialBuffer),
		log:     applog.WithComponent("render"),
	}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// SetTheme switches background and hot colors for subsequent frames.
func (r *Renderer) SetTheme(t Theme) { r.opts.Theme = t }

// BufferLen is the current vertex buffer capacity in floats.
func (r *Renderer) BufferLen() int { return len(r.buf) }

type evaluated struct {
	ent   model.Entity
	shape vector.Shape
	res   pick.Result
}

// RenderStep draws the entities of step against the interaction state s.
// All entities are evaluated before any is drawn, so the paint order never
// affects hit results. Entities that cannot be resolved are skipped and
// reported; the frame always completes.
func (r *Renderer) RenderStep(m *model.Model, step int, s *pick.State) Frame {
	f := Frame{Step: step}
	r.calls = 0
	r.surface.Clear(r.opts.Theme.Background())

	ids := dedupe(m.Step(step))
	r.engine.BeginFrame(s)
	evals := make([]evaluated, 0, len(ids))
	for _, id := range ids {
		ent, err := m.Get(id)
		if err != nil {
			f.Skipped = append(f.Skipped, r.skip(id, err))
			continue
		}
		shape, err := r.engine.Shape(m, ent)
		if err != nil {
			f.Skipped = append(f.Skipped, r.skip(id, err))
			continue
		}
		res := r.engine.Evaluate(s, id, shape)
		r.notifyLabel(ent, res)
		evals = append(evals, evaluated{ent: ent, shape: shape, res: res})
	}
	r.engine.EndFrame(s)

	for _, e := range paintOrder(evals) {
		r.draw(e)
		f.Order = append(f.Order, e.ent.EntityID())
		if e.res.Highlighted() {
			f.Highlighted = append(f.Highlighted, e.ent.EntityID())
		}
	}
	f.Calls = r.calls
	r.log.Debug("frame",
		slog.Int("step", step),
		slog.Int("drawn", len(f.Order)),
		slog.Int("skipped", len(f.Skipped)),
		slog.Int("calls", f.Calls),
		slog.Int("buffer", len(r.buf)))
	return f
}

// ResetLabels clears highlighting on the labels of ids, restoring their
// resting colors. Unknown ids are ignored.
func (r *Renderer) ResetLabels(m *model.Model, ids []string) {
	if r.labels == nil {
		return
	}
	for _, id := range ids {
		ent, err := m.Get(id)
		if err != nil {
			continue
		}
		ref := LabelRef{Kind: ent.Kind().Label(), ID: id}
		r.labels.SetLabelShadowed(ref, false)
		r.labels.SetLabelColor(ref, ent.Color().Hex())
	}
}

// HideLabels hides the labels of ids.
func (r *Renderer) HideLabels(m *model.Model, ids []string) {
	if r.labels == nil {
		return
	}
	for _, id := range ids {
		ent, err := m.Get(id)
		if err != nil {
			continue
		}
		r.labels.HideLabel(LabelRef{Kind: ent.Kind().Label(), ID: id})
	}
}

func (r *Renderer) skip(id string, err error) Skip {
	r.log.Warn("entity skipped", slog.String("id", id), slog.Any("err", err))
	return Skip{ID: id, Err: err}
}

func (r *Renderer) notifyLabel(ent model.Entity, res pick.Result) {
	if r.labels == nil {
		return
	}
	ref := LabelRef{Kind: ent.Kind().Label(), ID: ent.EntityID()}
	r.labels.ShowLabel(ref)
	col := ent.Color()
	if res.Highlighted() {
		col = r.opts.Theme.Hot()
	}
	r.labels.SetLabelColor(ref, col.Hex())
	r.labels.SetLabelShadowed(ref, res.Highlighted())
}

// paintOrder buckets evaluated entities; order within a bucket follows the step.
func paintOrder(evals []evaluated) []evaluated {
	var buckets [5][]evaluated
	for _, e := range evals {
		hot := e.res.Highlighted()
		switch e.ent.(type) {
		case model.Point:
			buckets[4] = append(buckets[4], e)
		case model.Circle, model.Polygon:
			if hot {
				buckets[0] = append(buckets[0], e)
			} else {
				buckets[1] = append(buckets[1], e)
			}
		default:
			if hot {
				buckets[3] = append(buckets[3], e)
			} else {
				buckets[2] = append(buckets[2], e)
			}
		}
	}
	out := make([]evaluated, 0, len(evals))
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

func (r *Renderer) draw(e evaluated) {
	hot := e.res.Highlighted()
	rest := e.ent.Color()
	stroke := rest
	if hot {
		stroke = r.opts.Theme.Hot()
	}
	switch sh := e.shape.(type) {
	case vector.PointShape:
		outline := vector.TessellateCircle(sh.At, r.opts.PointRadius, r.opts.CircleStep)
		r.submit(TriangleFan, outline, stroke)
		r.submit(TriangleStrip, vector.StrokeStrip(outline, r.opts.PointStrokeWidth), r.opts.PointStroke)
	case vector.SegmentShape:
		r.submit(TriangleStrip, vector.StrokeStrip([]vector.Pt{sh.P0, sh.P1}, r.opts.LineWidth), stroke)
	case vector.CircleShape:
		if hot {
			r.submit(TriangleFan, sh.Outline, rest.WithAlpha(rest.A*r.opts.HotFillAlpha))
		}
		r.submit(TriangleStrip, vector.StrokeStrip(sh.Outline, r.opts.LineWidth), stroke)
	case vector.PolygonShape:
		if hot {
			r.submit(TriangleFan, sh.Points, rest.WithAlpha(rest.A*r.opts.HotFillAlpha))
		}
		n := len(sh.Points)
		for i := range sh.Points {
			edge := []vector.Pt{sh.Points[i], sh.Points[(i+1)%n]}
			r.submit(TriangleStrip, vector.StrokeStrip(edge, r.opts.LineWidth), stroke)
		}
	}
}

// submit writes pts with a uniform color into the buffer and hands it to the
// surface. The buffer grows to exactly the required size and never shrinks.
func (r *Renderer) submit(kind PrimitiveKind, pts []vector.Pt, c vector.Color) {
	if len(pts) == 0 {
		return
	}
	n := len(pts) * FloatsPerVertex
	if len(r.buf) < n {
		r.buf = make([]float32, n)
	}
	data := r.buf[:n]
	cr, cg, cb, ca := float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	for i, p := range pts {
		v := data[i*FloatsPerVertex : (i+1)*FloatsPerVertex]
		v[0], v[1], v[2], v[3] = float32(p.X), float32(p.Y), 0, 1
		v[4], v[5], v[6], v[7] = cr, cg, cb, ca
	}
	r.surface.Submit(kind, data, len(pts))
	r.calls++
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
