/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"log/slog"

	applog "geoproof/internal/log"
	"geoproof/internal/model"
	"geoproof/internal/pick"
	"geoproof/internal/render"
	"geoproof/internal/vector"
)

// ErrStepRange reports a step index outside the proof's animation.
var ErrStepRange = errors.New("step out of range")

// item is one resolved entity of a static export.
type item struct {
	ent   model.Entity
	shape vector.Shape
}

// staticItems resolves the entities of step for vector output: everything
// that is not a point first, in step order, then the points. Entities that
// cannot be resolved are reported and left out.
func staticItems(m *model.Model, step int) ([]item, []render.Skip, error) {
	if step < 0 || step >= m.StepCount() {
		return nil, nil, fmt.Errorf("%w: %d of %d", ErrStepRange, step, m.StepCount())
	}
	eng := pick.NewEngine(vector.DesktopTolerance(0), vector.DefaultCircleStep)
	log := applog.WithComponent("export")

	var shapes, points []item
	var skipped []render.Skip
	seen := map[string]bool{}
	for _, id := range m.Step(step) {
		if seen[id] {
			continue
		}
		seen[id] = true
		ent, err := m.Get(id)
		if err == nil {
			var shape vector.Shape
			if shape, err = eng.Shape(m, ent); err == nil {
				if ent.Kind() == model.KindPoint {
					points = append(points, item{ent: ent, shape: shape})
				} else {
					shapes = append(shapes, item{ent: ent, shape: shape})
				}
				continue
			}
		}
		log.Warn("entity skipped", slog.String("id", id), slog.Int("step", step), slog.Any("err", err))
		skipped = append(skipped, render.Skip{ID: id, Err: err})
	}
	return append(shapes, points...), skipped, nil
}
