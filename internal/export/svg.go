/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"geoproof/internal/model"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

// SVGOptions controls SVG export.
type SVGOptions struct {
	// Size is the square image edge in pixels; 0 means 800.
	Size int
	// Background, when enabled, paints a full-size rect first.
	Background vector.Fill
}

const (
	defaultSize     = 800
	staticStroke    = 1.0
	staticPointSize = 5.0
)

// WriteStepSVG writes one animation step as a static SVG image. Lines,
// circles and polygons are outlined with 1px strokes in their own color;
// points are 5px dots drawn last. Entities that cannot be resolved are
// skipped and returned.
func WriteStepSVG(w io.Writer, m *model.Model, step int, opt SVGOptions) ([]render.Skip, error) {
	items, skipped, err := staticItems(m, step)
	if err != nil {
		return nil, err
	}
	size := opt.Size
	if size <= 0 {
		size = defaultSize
	}
	toPx := vector.NDCToPixel(float64(size), float64(size))
	scale := float64(size) / 2

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n", size, size, size, size)
	if opt.Background.Enabled {
		wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", size, size, opt.Background.Color.Hex())
	}
	for _, it := range items {
		col := it.ent.Color()
		stroke := fmt.Sprintf("stroke=\"%s\" stroke-opacity=\"%s\" stroke-width=\"%g\"", col.Hex(), num(col.Opacity()), staticStroke)
		id := html.EscapeString(it.ent.EntityID())
		switch s := it.shape.(type) {
		case vector.PointShape:
			p := toPx.Apply(s.At)
			wf("  <circle data-id=\"%s\" cx=\"%s\" cy=\"%s\" r=\"%g\" fill=\"%s\" %s/>\n", id, num(p.X), num(p.Y), staticPointSize/2, col.Hex(), stroke)
		case vector.SegmentShape:
			a, b := toPx.Apply(s.P0), toPx.Apply(s.P1)
			wf("  <line data-id=\"%s\" x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" %s/>\n", id, num(a.X), num(a.Y), num(b.X), num(b.Y), stroke)
		case vector.CircleShape:
			c := toPx.Apply(s.Center)
			wf("  <circle data-id=\"%s\" cx=\"%s\" cy=\"%s\" r=\"%s\" fill=\"none\" %s/>\n", id, num(c.X), num(c.Y), num(s.Radius*scale), stroke)
		case vector.PolygonShape:
			pts := make([]string, len(s.Points))
			for i, p := range s.Points {
				q := toPx.Apply(p)
				pts[i] = num(q.X) + "," + num(q.Y)
			}
			wf("  <polygon data-id=\"%s\" points=\"%s\" fill=\"none\" %s/>\n", id, strings.Join(pts, " "), stroke)
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return skipped, fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return skipped, fmt.Errorf("write svg: %w", err)
	}
	return skipped, nil
}

// num formats a coordinate with at most three decimals.
func num(v float64) string {
	return fmt.Sprintf("%g", vector.FloatRound(v, 3))
}
