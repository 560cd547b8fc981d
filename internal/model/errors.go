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
)

var (
	ErrNotFound           = errors.New("entity not found")
	ErrMissingReference   = errors.New("missing reference")
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	ErrUnknownKind        = errors.New("unknown entity kind")
	ErrDuplicateID        = errors.New("duplicate entity id")
	ErrInvalidDocument    = errors.New("invalid geometry document")
)

// ReferenceError reports that Entity refers to Ref, which is absent or not a point.
type ReferenceError struct {
	Entity string
	Ref    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("entity %q: missing reference %q", e.Entity, e.Ref)
}

func (e *ReferenceError) Unwrap() error { return ErrMissingReference }

// GeometryError reports that Entity's derived geometry cannot be computed.
type GeometryError struct {
	Entity string
	Err    error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("entity %q: %v", e.Entity, e.Err)
}

// Unwrap exposes both ErrDegenerateGeometry and the underlying cause.
func (e *GeometryError) Unwrap() []error { return []error{ErrDegenerateGeometry, e.Err} }
