/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"geoproof/internal/model"
	"geoproof/internal/vector"
	"geoproof/internal/version"
)

// PDFOptions controls PDF export. Units are points.
type PDFOptions struct {
	// PageSize is the square page edge; 0 means 595.28 (A4 width).
	PageSize float64
	Title    string
	// StepLabels prints "Step i/n" in the top-left corner of each page.
	StepLabels bool
}

// WritePDF writes the whole proof as one PDF page per animation step,
// using the same paint rules as WriteStepSVG.
func WritePDF(w io.Writer, m *model.Model, opt PDFOptions) error {
	size := opt.PageSize
	if size <= 0 {
		size = 595.28
	}
	toPx := vector.NDCToPixel(size, size)
	scale := size / 2

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: size, Ht: size},
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("geoproof "+version.String(), false)
	pdf.SetFont("Helvetica", "", 9)

	for step := 0; step < m.StepCount(); step++ {
		items, _, err := staticItems(m, step)
		if err != nil {
			return err
		}
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: size, Ht: size})
		if opt.StepLabels {
			pdf.SetAlpha(1, "Normal")
			pdf.SetTextColor(128, 128, 128)
			pdf.Text(12, 18, fmt.Sprintf("Step %d/%d", step+1, m.StepCount()))
		}
		pdf.SetLineWidth(staticStroke)
		for _, it := range items {
			col := it.ent.Color()
			r, g, b := rgb255(col)
			pdf.SetDrawColor(r, g, b)
			pdf.SetFillColor(r, g, b)
			pdf.SetAlpha(col.Opacity(), "Normal")
			switch s := it.shape.(type) {
			case vector.PointShape:
				p := toPx.Apply(s.At)
				pdf.Circle(p.X, p.Y, staticPointSize/2, "FD")
			case vector.SegmentShape:
				a, b := toPx.Apply(s.P0), toPx.Apply(s.P1)
				pdf.Line(a.X, a.Y, b.X, b.Y)
			case vector.CircleShape:
				c := toPx.Apply(s.Center)
				pdf.Circle(c.X, c.Y, s.Radius*scale, "D")
			case vector.PolygonShape:
				pts := make([]gofpdf.PointType, len(s.Points))
				for i, p := range s.Points {
					q := toPx.Apply(p)
					pts[i] = gofpdf.PointType{X: q.X, Y: q.Y}
				}
				pdf.Polygon(pts, "D")
			}
		}
		pdf.SetAlpha(1, "Normal")
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func rgb255(c vector.Color) (r, g, b int) {
	n := c.RGBA()
	return int(n.R), int(n.G), int(n.B)
}
