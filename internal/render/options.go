/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import "geoproof/internal/vector"

// Theme selects background and hot colors.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Background is the clear color of the theme.
func (t Theme) Background() vector.Color {
	if t == Light {
		return vector.White
	}
	return vector.Black
}

// Hot is the highlight color of the theme.
func (t Theme) Hot() vector.Color {
	if t == Light {
		return vector.HotLight
	}
	return vector.HotDark
}

// Options controls stroke sizes and buffer sizing. Widths and radii are NDC.
type Options struct {
	Theme            Theme
	LineWidth        float64
	PointRadius      float64
	PointStrokeWidth float64
	PointStroke      vector.Color
	CircleStep       float64
	// HotFillAlpha is the opacity of the resting color used to fill
	// highlighted circles and polygons.
	HotFillAlpha float64
	// InitialBuffer is the initial vertex buffer size in floats.
	InitialBuffer int
}

// DefaultOptions returns desktop sizes, or the larger touch sizes.
func DefaultOptions(touch bool) Options {
	o := Options{
		Theme:            Dark,
		LineWidth:        0.01,
		PointRadius:      0.013,
		PointStrokeWidth: 0.001,
		PointStroke:      vector.Black,
		CircleStep:       vector.DefaultCircleStep,
		HotFillAlpha:     0.25,
		InitialBuffer:    1024,
	}
	if touch {
		o.LineWidth = 0.025
		o.PointRadius = 0.025
	}
	return o
}

func (o Options) withDefaults() Options {
	d := DefaultOptions(false)
	if o.Theme == "" {
		o.Theme = d.Theme
	}
	if o.LineWidth <= 0 {
		o.LineWidth = d.LineWidth
	}
	if o.PointRadius <= 0 {
		o.PointRadius = d.PointRadius
	}
	if o.PointStrokeWidth <= 0 {
		o.PointStrokeWidth = d.PointStrokeWidth
	}
	if o.PointStroke == (vector.Color{}) {
		o.PointStroke = d.PointStroke
	}
	if o.CircleStep <= 0 {
		o.CircleStep = d.CircleStep
	}
	if o.HotFillAlpha <= 0 {
		o.HotFillAlpha = d.HotFillAlpha
	}
	if o.InitialBuffer <= 0 {
		o.InitialBuffer = d.InitialBuffer
	}
	return o
}
