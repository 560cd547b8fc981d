/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script compiles .yc proof markup into a geometry description.
//
// A .yc file is prose with bracketed tags. Tags declare entities, place
// points, and split the proof into animation steps:
//
//	[point A] [line AB] [circle ABC] [center O circle=ABC] [polygon ABC]
//	[loc A 0.1 0.2] or [loc A x=0.1 y=0.2]
//	[step] [clear]
//
// Brackets escaped with a backslash are literal text.
package script

import (
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// span is the byte range of one bracketed tag and its inner content.
type span struct {
	start, end   int
	content      string
	line, column int
}

// scan locates the bracketed tags of text. An opening bracket without a
// closing one is reported and ends the scan.
func scan(text string) ([]span, []Error) {
	var spans []span
	var errs []Error
	for i := 0; i < len(text); i++ {
		if text[i] != '[' || escaped(text, i) {
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] != ']' || escaped(text, j)) {
			j++
		}
		line, col := position(text, i)
		if j >= len(text) {
			errs = append(errs, Error{Line: line, Column: col, Message: "unclosed tag"})
			break
		}
		spans = append(spans, span{start: i, end: j + 1, content: text[i+1 : j], line: line, column: col})
		i = j
	}
	return spans, errs
}

func escaped(text string, i int) bool { return i > 0 && text[i-1] == '\\' }

func position(text string, offset int) (line, col int) {
	line = 1 + strings.Count(text[:offset], "\n")
	col = offset - strings.LastIndexByte(text[:offset], '\n')
	return line, col
}

// Extract parses every tag of text. Tags that cannot be tokenized are
// reported and skipped; the rest are returned in source order.
func Extract(text string) ([]Tag, []Error) {
	spans, errs := scan(text)
	tags := make([]Tag, 0, len(spans))
	for _, sp := range spans {
		t, err := parseTag(sp)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		tags = append(tags, t)
	}
	return tags, errs
}

// parseTag splits the tag content shell-style, so quoted values may contain
// spaces and backslash-escaped brackets lose their backslash.
func parseTag(sp span) (Tag, *Error) {
	fail := func(msg string) (Tag, *Error) {
		return Tag{}, &Error{Line: sp.line, Column: sp.column, Message: msg}
	}
	tokens, err := shellwords.Parse(sp.content)
	if err != nil {
		return fail("tag: " + err.Error())
	}
	if len(tokens) == 0 {
		return fail("empty tag")
	}
	t := Tag{
		Keyword: tokens[0],
		Type:    strings.ToLower(tokens[0]),
		Options: map[string]string{},
		Line:    sp.line,
		Column:  sp.column,
	}
	rest := tokens[1:]
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		t.Name = rest[0]
		rest = rest[1:]
	}
	for _, tok := range rest {
		if k, v, ok := strings.Cut(tok, "="); ok {
			t.Options[k] = v
			continue
		}
		t.Args = append(t.Args, tok)
	}
	if n, ok := t.Options["name"]; ok && t.Name == "" {
		t.Name = n
	}
	return t, nil
}

// rotateLex rotates name so that its smallest character comes first,
// giving every cyclic spelling of a line or polygon one canonical id.
func rotateLex(name string) string {
	r := []rune(name)
	if len(r) == 0 {
		return name
	}
	lo := 0
	for i := range r {
		if r[i] < r[lo] {
			lo = i
		}
	}
	out := make([]rune, 0, len(r))
	out = append(out, r[lo:]...)
	return string(append(out, r[:lo]...))
}
