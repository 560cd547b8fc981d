/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircumcenterRightTriangle(t *testing.T) {
	c, r, err := Circumcircle(P(0, 0), P(1, 0), P(0, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c.X, 1e-12)
	assert.InDelta(t, 0.5, c.Y, 1e-12)
	assert.InDelta(t, math.Sqrt2/2, r, 1e-12)
}

func TestCircumcenterEquidistant(t *testing.T) {
	triples := [][3]Pt{
		{P(0.1, 0.2), P(-0.4, 0.7), P(0.9, -0.3)},
		{P(-1, -1), P(1, -1), P(0, 1)},
		{P(0.5, 0.5), P(0.5, -0.5), P(-0.25, 0.1)}, // vertical chord
		{P(0.001, 0), P(0, 0.002), P(-0.003, 0.0005)},
	}
	for _, tr := range triples {
		c, err := Circumcenter(tr[0], tr[1], tr[2])
		require.NoError(t, err, "triple %v", tr)
		d1 := Distance(c, tr[0])
		assert.InDelta(t, d1, Distance(c, tr[1]), 1e-9, "triple %v", tr)
		assert.InDelta(t, d1, Distance(c, tr[2]), 1e-9, "triple %v", tr)
	}
}

func TestCircumcenterDegenerate(t *testing.T) {
	_, err := Circumcenter(P(0, 0), P(1, 1), P(2, 2))
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("collinear points should be degenerate, got %v", err)
	}
	_, err = Circumcenter(P(0.3, 0.3), P(0.3, 0.3), P(0.3, 0.3))
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("coincident points should be degenerate, got %v", err)
	}
}

func TestDistance3UsesZeroDepth(t *testing.T) {
	assert.InDelta(t, 1.0, Distance3(Vec3{0, 0, 0}, Vec3{0, 0, 1}), 1e-12)
	assert.InDelta(t, 5.0, Distance(P(0, 0), P(3, 4)), 1e-12)
}

func TestPointUnderCursor(t *testing.T) {
	tol := Tolerance{Point: 0.05}
	if !PointUnderCursor(P(0, 0), P(0.01, 0), tol) {
		t.Fatalf("cursor at 0.01 should hit")
	}
	if PointUnderCursor(P(0, 0), P(0.1, 0), tol) {
		t.Fatalf("cursor at 0.1 should miss")
	}
	// sprite offset shifts the hit center up and right
	d := DesktopTolerance(800)
	if !PointUnderCursor(P(0, 0), P(0.01, 0), d) {
		t.Fatalf("desktop tolerance should still hit near the point")
	}
	assert.InDelta(t, 5.0/1600/2, d.spriteOffset(), 1e-15)
}

func TestSegmentUnderCursor(t *testing.T) {
	d := DesktopTolerance(0)
	if SegmentUnderCursor(P(0, 0), P(1, 0), P(2, 0), d) {
		t.Fatalf("projection beyond segment end must miss")
	}
	if SegmentUnderCursor(P(0, 0), P(1, 0), P(-0.01, 0), d) {
		t.Fatalf("projection before segment start must miss")
	}
	if !SegmentUnderCursor(P(0, 0), P(1, 0), P(0.5, 0.02), d) {
		t.Fatalf("cursor near middle should hit")
	}
	if SegmentUnderCursor(P(0, 0), P(1, 0), P(0.5, 0.05), d) {
		t.Fatalf("desktop threshold is 0.03")
	}
	if !SegmentUnderCursor(P(0, 0), P(1, 0), P(0.5, 0.05), TouchTolerance(0)) {
		t.Fatalf("touch threshold should be wider")
	}
}

func TestSegmentZeroLength(t *testing.T) {
	_, _, err := SegmentProjection(P(0.2, 0.2), P(0.2, 0.2), P(0.2, 0.2))
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
	if SegmentUnderCursor(P(0.2, 0.2), P(0.2, 0.2), P(0.2, 0.2), DesktopTolerance(0)) {
		t.Fatalf("zero-length segment must never hit")
	}
}

func TestPolygonUnderCursor(t *testing.T) {
	tri := []Pt{P(0, 0), P(1, 0), P(0, 1)}
	d := DesktopTolerance(0)
	if !PolygonUnderCursor(tri, P(-0.01, 0.5), d) {
		t.Fatalf("closing edge should be tested")
	}
	if PolygonUnderCursor(tri, P(0.3, 0.3), d) {
		t.Fatalf("interior is not an edge hit")
	}
	if PolygonUnderCursor([]Pt{P(0, 0)}, P(0, 0), d) {
		t.Fatalf("single point polygon never hits")
	}
}

func TestPointInDisc(t *testing.T) {
	if !PointInDisc(P(0.1, 0), P(0, 0), 0.5) || PointInDisc(P(1, 0), P(0, 0), 0.5) {
		t.Fatalf("unexpected disc membership")
	}
}
