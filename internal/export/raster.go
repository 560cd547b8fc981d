/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders proof steps to static files: PNG through a software
// draw surface, SVG and PDF as vector output, and preset-driven batches.
package export

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"geoproof/internal/render"
	"geoproof/internal/vector"
)

// Raster is a render.Surface that rasterizes submitted primitives into an
// RGBA image. NDC map onto the whole image with +Y up. Every submission is
// drawn in the color of its first vertex.
type Raster struct {
	img  *image.RGBA
	toPx vector.Affine2D
	z    *xvector.Rasterizer
}

var _ render.Surface = (*Raster)(nil)

// NewRaster returns a w x h surface.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

// Resize reallocates the image when the size changes.
func (r *Raster) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if r.img != nil && r.img.Bounds().Dx() == w && r.img.Bounds().Dy() == h {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	r.toPx = vector.NDCToPixel(float64(w), float64(h))
	r.z = xvector.NewRasterizer(w, h)
}

// Image is the backing image. It is reused across frames.
func (r *Raster) Image() *image.RGBA { return r.img }

// Size returns the image dimensions in pixels.
func (r *Raster) Size() (w, h int) { return r.img.Bounds().Dx(), r.img.Bounds().Dy() }

func (r *Raster) Clear(bg vector.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(bg.RGBA()), image.Point{}, draw.Src)
}

func (r *Raster) Submit(kind render.PrimitiveKind, vertices []float32, count int) {
	if count <= 0 || len(vertices) < count*render.FloatsPerVertex {
		return
	}
	call := render.Call{Kind: kind, Vertices: vertices, Count: count}
	pts := make([]vector.Pt, count)
	for i := range pts {
		p, _ := call.Vertex(i)
		pts[i] = r.toPx.Apply(p)
	}
	_, col := call.Vertex(0)

	w, h := r.Size()
	r.z.Reset(w, h)
	switch kind {
	case render.TriangleFan:
		for i := 1; i+1 < count; i++ {
			r.triangle(pts[0], pts[i], pts[i+1])
		}
	case render.TriangleStrip:
		for i := 0; i+2 < count; i++ {
			r.triangle(pts[i], pts[i+1], pts[i+2])
		}
	case render.Lines:
		for i := 0; i+1 < count; i += 2 {
			r.segment(pts[i], pts[i+1])
		}
	case render.LineStrip:
		for i := 0; i+1 < count; i++ {
			r.segment(pts[i], pts[i+1])
		}
	case render.Points:
		for _, p := range pts {
			r.dot(p)
		}
	}
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(col.RGBA()), image.Point{})
}

// triangle adds a counter-clockwise triangle to the current path. Strip
// triangles alternate winding; normalizing keeps overlapping coverage from
// cancelling out.
func (r *Raster) triangle(a, b, c vector.Pt) {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if cross == 0 {
		return
	}
	if cross < 0 {
		b, c = c, b
	}
	r.z.MoveTo(float32(a.X), float32(a.Y))
	r.z.LineTo(float32(b.X), float32(b.Y))
	r.z.LineTo(float32(c.X), float32(c.Y))
	r.z.ClosePath()
}

// segment adds a one pixel wide quad along a-b.
func (r *Raster) segment(a, b vector.Pt) {
	d := b.Sub(a)
	if d.NormSq() == 0 {
		return
	}
	n := d.Scale(0.5 / d.Norm()).Normal()
	r.triangle(a.Add(n), b.Add(n), b.Sub(n))
	r.triangle(a.Add(n), b.Sub(n), a.Sub(n))
}

func (r *Raster) dot(p vector.Pt) {
	r.triangle(p.Add(vector.P(-1, -1)), p.Add(vector.P(1, -1)), p.Add(vector.P(1, 1)))
	r.triangle(p.Add(vector.P(-1, -1)), p.Add(vector.P(1, 1)), p.Add(vector.P(-1, 1)))
}

// Caption draws text just above and right of the NDC position at.
func (r *Raster) Caption(at vector.Pt, text string, col vector.Color) {
	p := r.toPx.Apply(at)
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(col.RGBA()),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(p.X)+6, int(p.Y)-6),
	}
	d.DrawString(text)
}
