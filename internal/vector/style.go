/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Styles and paint definitions.

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is an RGBA tuple with components in [0,1]. A is the opacity.
type Color struct{ R, G, B, A float64 }

var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{0, 0, 0, 0}

	Navy    = Color{0.0, 0.12156862745098039, 0.24705882352941178, 1}
	Blue    = Color{0.0, 0.4549019607843137, 0.8509803921568627, 1}
	Aqua    = Color{0.4980392156862745, 0.8588235294117647, 1.0, 1}
	Teal    = Color{0.2235294117647059, 0.8, 0.8, 1}
	Olive   = Color{0.23921568627450981, 0.6, 0.4392156862745098, 1}
	Green   = Color{0.1803921568627451, 0.8, 0.25098039215686274, 1}
	Lime    = Color{0.00392156862745098, 1.0, 0.4392156862745098, 1}
	Yellow  = Color{1.0, 0.8627450980392157, 0.0, 1}
	Orange  = Color{1.0, 0.5215686274509804, 0.10588235294117647, 1}
	Red     = Color{1.0, 0.2549019607843137, 0.21176470588235294, 1}
	Maroon  = Color{0.5215686274509804, 0.0784313725490196, 0.29411764705882354, 1}
	Fuchsia = Color{0.9411764705882353, 0.07058823529411765, 0.7450980392156863, 1}
	Purple  = Color{0.6941176470588235, 0.050980392156862744, 0.788235294117647, 1}
	Gray    = Color{0.6666666666666666, 0.6666666666666666, 0.6666666666666666, 1}
	Silver  = Color{0.8666666666666667, 0.8666666666666667, 0.8666666666666667, 1}
)

// Solarized is the rotating palette assigned to entities without an explicit color.
var Solarized = []Color{
	{0.8627450980392157, 0.19607843137254902, 0.1843137254901961, 1},
	{0.5215686274509804, 0.6, 0.0, 1},
	{0.396078431372549, 0.4823529411764706, 0.5137254901960784, 1},
	{0.14901960784313725, 0.5450980392156862, 0.8235294117647058, 1},
	{0.4235294117647059, 0.44313725490196076, 0.7686274509803922, 1},
	{0.16470588235294117, 0.6313725490196078, 0.596078431372549, 1},
	{0.8274509803921568, 0.21176470588235294, 0.5098039215686274, 1},
	{0.0, 0.16862745098039217, 0.21176470588235294, 1},
}

// Hot colors per theme.
var (
	HotDark  = Color{1, 1, 0, 1}
	HotLight = Color{0.9, 0.9, 0.2, 1}
)

// WithAlpha returns c with opacity a.
func (c Color) WithAlpha(a float64) Color { c.A = a; return c }

// Opacity returns the alpha component.
func (c Color) Opacity() float64 { return c.A }

// Hex renders the RGB components as "#rrggbb"; opacity is not included.
// Each channel is floor(255*c), clamped to [0,255].
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// RGBA converts to a non-premultiplied 8-bit color.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}
}

func channel(v float64) uint8 {
	x := math.Floor(255 * v)
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// FromHex parses "rrggbb" or "rrggbbaa" (optional leading '#'). Missing
// channels default to 0, a missing alpha defaults to 1.
func FromHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 0 || len(s)%2 != 0 || len(s) > 8 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	var comps []float64
	for i := 0; i < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		comps = append(comps, float64(v)/255)
	}
	for len(comps) < 4 {
		if len(comps) == 3 {
			comps = append(comps, 1)
		} else {
			comps = append(comps, 0)
		}
	}
	return Color{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

// MarshalJSON encodes the color as [r,g,b,a].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{c.R, c.G, c.B, c.A})
}

// UnmarshalJSON accepts [r,g,b] or [r,g,b,a]; three components get opacity 1.
func (c *Color) UnmarshalJSON(b []byte) error {
	var comps []float64
	if err := json.Unmarshal(b, &comps); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	switch len(comps) {
	case 3:
		*c = Color{comps[0], comps[1], comps[2], 1}
	case 4:
		*c = Color{comps[0], comps[1], comps[2], comps[3]}
	default:
		return fmt.Errorf("color: want 3 or 4 components, got %d", len(comps))
	}
	return nil
}

// Fill describes an optional area fill.
type Fill struct {
	Color   Color
	Enabled bool
}

// Stroke describes an outline of the given NDC width.
type Stroke struct {
	Color   Color
	Width   float64
	Enabled bool
}
