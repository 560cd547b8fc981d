/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	applog "geoproof/internal/log"
	"geoproof/internal/vector"
)

var errIncompleteCircle = errors.New("circle has neither radius nor enough boundary points")

// Circle returns the concrete center and radius of circle id. The result is
// memoized per id, errors included, so repeated calls are cheap and return
// identical values. The input entity is never modified.
func (m *Model) Circle(id string) (ResolvedCircle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.resolved[id]; ok {
		return r.circle, r.err
	}
	e, ok := m.entities[id]
	if !ok {
		return ResolvedCircle{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	c, ok := e.(Circle)
	if !ok {
		return ResolvedCircle{}, fmt.Errorf("entity %q is a %s, not a circle", id, e.Kind())
	}
	rc, err := m.resolveCircle(c)
	m.resolved[id] = resolution{circle: rc, err: err}
	return rc, err
}

// Resolve derives every circle once and returns the per-entity failures in id
// order. Failures are also logged; they do not prevent other circles from
// resolving.
func (m *Model) Resolve() []error {
	l := applog.WithOperation(applog.WithComponent("model"), "resolve")
	var errs []error
	for _, id := range m.ids {
		if _, ok := m.entities[id].(Circle); !ok {
			continue
		}
		if _, err := m.Circle(id); err != nil {
			l.Warn("circle not resolvable", slog.String("id", id), slog.Any("err", err))
			errs = append(errs, err)
		}
	}
	return errs
}

// resolveCircle applies the derivation rules in order:
//  1. three boundary points and no center or radius: circumcircle
//  2. a center and p1 but no radius: radius = |center - p1|
//  3. a center given by reference: dereference it
//  4. numeric center and radius: taken as is
func (m *Model) resolveCircle(c Circle) (ResolvedCircle, error) {
	id := c.ID
	switch {
	case c.Center.IsZero() && c.Radius == nil && c.P1 != "" && c.P2 != "" && c.P3 != "":
		pts, err := m.Points(id, []string{c.P1, c.P2, c.P3})
		if err != nil {
			return ResolvedCircle{}, err
		}
		center, radius, err := vector.Circumcircle(pts[0], pts[1], pts[2])
		if err != nil {
			return ResolvedCircle{}, &GeometryError{Entity: id, Err: err}
		}
		return checked(id, ResolvedCircle{Center: center, Radius: radius})

	case !c.Center.IsZero() && c.Radius == nil && c.P1 != "":
		center, err := m.center(id, c.Center)
		if err != nil {
			return ResolvedCircle{}, err
		}
		p1, err := m.Point(id, c.P1)
		if err != nil {
			return ResolvedCircle{}, err
		}
		return checked(id, ResolvedCircle{Center: center, Radius: vector.Distance(center, p1)})

	case !c.Center.IsZero() && c.Radius != nil:
		center, err := m.center(id, c.Center)
		if err != nil {
			return ResolvedCircle{}, err
		}
		return checked(id, ResolvedCircle{Center: center, Radius: *c.Radius})
	}
	return ResolvedCircle{}, &GeometryError{Entity: id, Err: errIncompleteCircle}
}

func (m *Model) center(owner string, c CenterRef) (vector.Pt, error) {
	if c.At != nil {
		return *c.At, nil
	}
	return m.Point(owner, c.Ref)
}

// checked enforces a finite center and a finite radius > 0.
func checked(id string, rc ResolvedCircle) (ResolvedCircle, error) {
	if !rc.Center.IsFinite() || math.IsNaN(rc.Radius) || math.IsInf(rc.Radius, 0) || rc.Radius <= 0 {
		return ResolvedCircle{}, &GeometryError{Entity: id, Err: vector.ErrDegenerate}
	}
	return rc, nil
}
