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
	"image"
	"image/png"
	"io"

	"geoproof/internal/model"
	"geoproof/internal/pick"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

// PNGOptions controls raster export.
type PNGOptions struct {
	// Size is the square image edge in pixels; 0 means 800.
	Size int
	// Render overrides stroke sizes and theme; the zero value means
	// render.DefaultOptions(Touch).
	Render render.Options
	Touch  bool
	// Captions writes each point's id next to it.
	Captions bool
}

func (o PNGOptions) renderOptions() render.Options {
	if o.Render == (render.Options{}) {
		return render.DefaultOptions(o.Touch)
	}
	return o.Render
}

// RenderStepImage draws one step with the interactive renderer, as seen with
// the pointer outside the canvas.
func RenderStepImage(m *model.Model, step int, opt PNGOptions) (*image.RGBA, render.Frame, error) {
	if step < 0 || step >= m.StepCount() {
		return nil, render.Frame{}, fmt.Errorf("%w: %d of %d", ErrStepRange, step, m.StepCount())
	}
	size := opt.Size
	if size <= 0 {
		size = defaultSize
	}
	ropts := opt.renderOptions()
	tol := vector.DesktopTolerance(float64(size))
	if opt.Touch {
		tol = vector.TouchTolerance(float64(size))
	}
	surface := NewRaster(size, size)
	r := render.New(surface, nil, pick.NewEngine(tol, ropts.CircleStep), ropts)
	frame := r.RenderStep(m, step, pick.NewState())

	if opt.Captions {
		fg := vector.White
		if ropts.Theme == render.Light {
			fg = vector.Black
		}
		for _, id := range frame.Order {
			if p, err := m.Get(id); err == nil {
				if pt, ok := p.(model.Point); ok {
					surface.Caption(pt.At, id, fg)
				}
			}
		}
	}
	return surface.Image(), frame, nil
}

// RenderStepPNG encodes RenderStepImage as PNG into w.
func RenderStepPNG(m *model.Model, step int, opt PNGOptions, w io.Writer) (render.Frame, error) {
	img, frame, err := RenderStepImage(m, step, opt)
	if err != nil {
		return frame, err
	}
	if err := png.Encode(w, img); err != nil {
		return frame, fmt.Errorf("encode png: %w", err)
	}
	return frame, nil
}
