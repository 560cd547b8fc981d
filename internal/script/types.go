/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"strings"
)

// Tag is one bracketed markup element of a .yc proof, e.g.
//
//	[circle ABC center=O color=ff0000]
//
// Keyword is the tag type as written; Type is its lowercase form. Name is
// the second token when it has no '=' (or the name= option). Options holds
// key=value tokens; Args holds the remaining bare tokens in order.
type Tag struct {
	Keyword string
	Type    string
	Name    string
	Options map[string]string
	Args    []string

	Line   int // 1-based
	Column int // 1-based, of the opening bracket
}

// Has reports whether flag was given as a bare token, as in [point A hidden].
func (t Tag) Has(flag string) bool {
	for _, a := range t.Args {
		if a == flag {
			return true
		}
	}
	return false
}

// Option returns the value of key=value, if present.
func (t Tag) Option(key string) (string, bool) {
	v, ok := t.Options[key]
	return v, ok
}

// Error is a markup problem with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Errors joins a list of markup errors into one error, or nil when empty.
func Errors(errs []Error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("script: %s", strings.Join(msgs, "; "))
}
