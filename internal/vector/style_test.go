/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"encoding/json"
	"testing"
)

func TestColorHexDropsOpacity(t *testing.T) {
	c := Color{1, 0, 0.5, 0.25}
	if got := c.Hex(); got != "#ff007f" {
		t.Fatalf("Hex() = %q", got)
	}
	if c.Opacity() != 0.25 {
		t.Fatalf("Opacity() = %v", c.Opacity())
	}
	if got := (Color{2, -1, 0, 1}).Hex(); got != "#ff0000" {
		t.Fatalf("out of range channels should clamp, got %q", got)
	}
}

func TestFromHex(t *testing.T) {
	c, err := FromHex("#ff0080")
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if c.R != 1 || c.G != 0 || c.B != 128.0/255 || c.A != 1 {
		t.Fatalf("unexpected color %+v", c)
	}
	c, err = FromHex("00ff0080")
	if err != nil || c.A != 128.0/255 {
		t.Fatalf("alpha not parsed: %+v %v", c, err)
	}
	c, err = FromHex("ff00")
	if err != nil || c.B != 0 || c.A != 1 {
		t.Fatalf("short hex should pad blue 0 and alpha 1: %+v %v", c, err)
	}
	if _, err := FromHex("fff"); err == nil {
		t.Fatalf("odd length should fail")
	}
	if _, err := FromHex("zz0000"); err == nil {
		t.Fatalf("non-hex digits should fail")
	}
}

func TestColorJSON(t *testing.T) {
	var c Color
	if err := json.Unmarshal([]byte(`[0.5, 0.25, 0]`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c != (Color{0.5, 0.25, 0, 1}) {
		t.Fatalf("three components should default opacity: %+v", c)
	}
	b, err := json.Marshal(c)
	if err != nil || string(b) != "[0.5,0.25,0,1]" {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	if err := json.Unmarshal([]byte(`[1]`), &c); err == nil {
		t.Fatalf("one component should fail")
	}
}
