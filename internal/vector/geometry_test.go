/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestNDCToPixelCorners(t *testing.T) {
	m := NDCToPixel(800, 800)
	if p := m.Apply(Pt{-1, 1}); p.X != 0 || p.Y != 0 {
		t.Fatalf("top-left should map to origin, got %+v", p)
	}
	if p := m.Apply(Pt{1, -1}); p.X != 800 || p.Y != 800 {
		t.Fatalf("bottom-right should map to 800,800, got %+v", p)
	}
	if p := m.Apply(Pt{0, 0}); p.X != 400 || p.Y != 400 {
		t.Fatalf("center should map to 400,400, got %+v", p)
	}
}

func TestPixelToNDCRoundTrip(t *testing.T) {
	to := NDCToPixel(640, 480)
	back := PixelToNDC(640, 480)
	for _, p := range []Pt{{0.25, -0.75}, {-1, 1}, {0.5, 0.5}} {
		q := back.Apply(to.Apply(p))
		if math.Abs(q.X-p.X) > 1e-12 || math.Abs(q.Y-p.Y) > 1e-12 {
			t.Fatalf("round trip %+v -> %+v", p, q)
		}
	}
}

func TestInvertSingularIsIdentity(t *testing.T) {
	if got := Scale(0, 1).Invert(); got != Identity {
		t.Fatalf("singular invert should be identity, got %+v", got)
	}
}

func TestBoundsOfAndUnion(t *testing.T) {
	b := BoundsOf([]Pt{{1, 2}, {-1, 5}, {3, 0}})
	if b.X != -1 || b.Y != 0 || b.W != 4 || b.H != 5 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if (BoundsOf(nil) != Rect{}) {
		t.Fatalf("empty bounds should be zero rect")
	}
	u := R(0, 0, 1, 1).Union(R(2, 2, 1, 1))
	if u.X != 0 || u.Y != 0 || u.W != 3 || u.H != 3 {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestNormalIsUnitAndPerpendicular(t *testing.T) {
	n := Pt{3, 4}.Normal()
	if math.Abs(n.Norm()-1) > 1e-12 {
		t.Fatalf("normal not unit: %+v", n)
	}
	if math.Abs(n.Dot(Pt{3, 4})) > 1e-12 {
		t.Fatalf("normal not perpendicular: %+v", n)
	}
	if (Pt{}).Normal() != (Pt{}) {
		t.Fatalf("zero vector normal should be zero")
	}
}
