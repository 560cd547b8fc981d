/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package label

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"geoproof/internal/render"
)

// Segment is a run of proof text, optionally bound to an entity label.
type Segment struct {
	Text string
	Ref  *render.LabelRef
}

// Paragraph is the text revealed at one animation step.
type Paragraph struct {
	Step     int
	Segments []Segment
}

// ParseName splits "text_<kind>_<id>" into a LabelRef.
func ParseName(name string) (render.LabelRef, bool) {
	rest, ok := strings.CutPrefix(name, "text_")
	if !ok {
		return render.LabelRef{}, false
	}
	kind, id, ok := strings.Cut(rest, "_")
	if !ok || kind == "" || id == "" {
		return render.LabelRef{}, false
	}
	return render.LabelRef{Kind: kind, ID: id}, true
}

// ParseText reads the annotated proof text: one <div id='step_N'> per step
// holding plain text and <span name=text_<kind>_<id>> labels. Text outside
// any step div belongs to step 0. Paragraphs are returned in document order.
func ParseText(text string) ([]Paragraph, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse proof text: %w", err)
	}
	p := &textParser{}
	p.walk(root)
	p.flush()
	return p.out, nil
}

type textParser struct {
	out []Paragraph
	cur *Paragraph
}

func (p *textParser) paragraph(step int) *Paragraph {
	if p.cur == nil || p.cur.Step != step {
		p.flush()
		p.cur = &Paragraph{Step: step}
	}
	return p.cur
}

func (p *textParser) flush() {
	if p.cur != nil && len(p.cur.Segments) > 0 {
		p.out = append(p.out, *p.cur)
	}
	p.cur = nil
}

func (p *textParser) walk(n *html.Node) {
	switch {
	case n.Type == html.ElementNode && n.Data == "div":
		if step, ok := stepOf(n); ok {
			p.flush()
			p.cur = &Paragraph{Step: step}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.walk(c)
			}
			p.flush()
			return
		}
	case n.Type == html.ElementNode && n.Data == "span":
		if ref, ok := ParseName(attr(n, "name")); ok {
			par := p.current()
			r := ref
			par.Segments = append(par.Segments, Segment{Text: strings.TrimSpace(innerText(n)), Ref: &r})
			return
		}
	case n.Type == html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			par := p.current()
			par.Segments = append(par.Segments, Segment{Text: n.Data})
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *textParser) current() *Paragraph {
	if p.cur == nil {
		return p.paragraph(0)
	}
	return p.cur
}

func stepOf(n *html.Node) (int, bool) {
	id, ok := strings.CutPrefix(attr(n, "id"), "step_")
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(id)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

// Refs lists the distinct label refs of the paragraphs, in order of appearance.
func Refs(ps []Paragraph) []render.LabelRef {
	seen := map[string]bool{}
	var out []render.LabelRef
	for _, p := range ps {
		for _, s := range p.Segments {
			if s.Ref == nil || seen[s.Ref.Name()] {
				continue
			}
			seen[s.Ref.Name()] = true
			out = append(out, *s.Ref)
		}
	}
	return out
}
