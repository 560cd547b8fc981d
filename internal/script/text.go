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
	"html"
	"strings"
)

var polygonNames = map[int]string{3: "Triangle", 5: "Pentagon", 6: "Hexagon", 8: "Octagon"}

var unescaper = strings.NewReplacer(`\[`, "[", `\]`, "]")

// FormatText turns .yc markup into the annotated HTML proof text. Entity tags
// become labelled spans (name text_<kind>_<id>, class GeoElement) that a
// viewer can highlight; [step] opens the next <div id='step_N'>. Lines that
// only place points are dropped, as are [definitions] and [clear] markers
// and a trailing blank line.
func FormatText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.ReplaceAll(l, "[definitions]", "")
		l = strings.ReplaceAll(l, "[clear]", "")
		if strings.HasPrefix(l, "[loc") {
			continue
		}
		kept = append(kept, l)
	}
	if n := len(kept); n > 0 && strings.TrimSpace(kept[n-1]) == "" {
		kept = kept[:n-1]
	}
	body := strings.Join(kept, "\n")

	spans, _ := scan(body)
	var b strings.Builder
	step, last := 0, 0
	for _, sp := range spans {
		b.WriteString(unescaper.Replace(body[last:sp.start]))
		if t, err := parseTag(sp); err == nil {
			b.WriteString(annotate(t, &step))
		}
		last = sp.end
	}
	b.WriteString(unescaper.Replace(body[last:]))
	return "<div id='step_0'> " + b.String() + " </div>"
}

func annotate(t Tag, step *int) string {
	if t.Type == "step" {
		*step++
		return fmt.Sprintf("</div><div id='step_%d'>", *step)
	}
	if t.Has("hidden") {
		return ""
	}
	kind, id := t.Type, t.Name
	switch t.Type {
	case "center":
		kind = "point"
	case "line", "polygon":
		id = rotateLex(t.Name)
	case "point", "circle":
	default:
		return ""
	}
	label, ok := t.Option("text")
	if !ok {
		keyword := t.Keyword
		if t.Type == "polygon" {
			if n, ok := polygonNames[len([]rune(t.Name))]; ok {
				keyword = n
			}
		}
		label = keyword + " " + t.Name
	}
	return fmt.Sprintf(" <span name='text_%s_%s' class='GeoElement'>%s</span>", kind, id, html.EscapeString(label))
}
