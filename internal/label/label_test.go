/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package label

import (
	"sync"
	"testing"

	"geoproof/internal/render"
)

func TestBoardTracksState(t *testing.T) {
	b := NewBoard()
	var changes []State
	b.OnChange = func(s State) { changes = append(changes, s) }

	a := render.LabelRef{Kind: "point", ID: "A"}
	b.ShowLabel(a)
	b.SetLabelColor(a, "#ffff00")
	b.SetLabelShadowed(a, true)
	b.SetLabelShadowed(a, true) // no change, no callback

	st, ok := b.Get("text_point_A")
	if !ok || !st.Visible || !st.Shadowed || st.Color != "#ffff00" {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(changes) != 3 {
		t.Fatalf("expected 3 change callbacks, got %d", len(changes))
	}
	if got := b.Highlighted(); len(got) != 1 || got[0] != "text_point_A" {
		t.Fatalf("unexpected highlighted %v", got)
	}

	b.HideLabel(a)
	st, _ = b.Get("text_point_A")
	if st.Visible || st.Shadowed {
		t.Fatalf("hidden label should not be shadowed: %+v", st)
	}
}

func TestBoardAllSorted(t *testing.T) {
	b := NewBoard()
	b.ShowLabel(render.LabelRef{Kind: "line", ID: "AB"})
	b.ShowLabel(render.LabelRef{Kind: "circle", ID: "ABC"})
	all := b.All()
	if len(all) != 2 || all[0].Ref.Name() != "text_circle_ABC" {
		t.Fatalf("unexpected order %+v", all)
	}
}

func TestBoardConcurrentUse(t *testing.T) {
	b := NewBoard()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.SetLabelShadowed(render.LabelRef{Kind: "point", ID: "A"}, j%2 == 0)
				_ = b.All()
			}
		}()
	}
	wg.Wait()
	if _, ok := b.Get("text_point_A"); !ok {
		t.Fatalf("label missing")
	}
}

func TestParseName(t *testing.T) {
	ref, ok := ParseName("text_polygon_ABCD")
	if !ok || ref.Kind != "polygon" || ref.ID != "ABCD" {
		t.Fatalf("unexpected ref %+v %v", ref, ok)
	}
	for _, bad := range []string{"object_point_A", "text_point", "text__A", ""} {
		if _, ok := ParseName(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestParseText(t *testing.T) {
	text := "<div id='step_0'> Let <span name=text_point_A class='GeoElement'>Point A</span> be given.\n" +
		"</div><div id='step_1'> Draw <span name=text_line_AB class='GeoElement'>Line AB</span> and " +
		"<span name=text_point_A class='GeoElement'>A</span>. </div>"
	ps, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(ps) != 2 || ps[0].Step != 0 || ps[1].Step != 1 {
		t.Fatalf("unexpected paragraphs %+v", ps)
	}
	var labelled []string
	for _, s := range ps[0].Segments {
		if s.Ref != nil {
			labelled = append(labelled, s.Text)
		}
	}
	if len(labelled) != 1 || labelled[0] != "Point A" {
		t.Fatalf("unexpected step 0 labels %v", labelled)
	}
	refs := Refs(ps)
	if len(refs) != 2 || refs[0].Name() != "text_point_A" || refs[1].Name() != "text_line_AB" {
		t.Fatalf("unexpected refs %+v", refs)
	}
}

func TestParseTextWithoutSteps(t *testing.T) {
	ps, err := ParseText("plain <span name=text_circle_c>circle</span>")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(ps) != 1 || ps[0].Step != 0 || len(ps[0].Segments) != 2 {
		t.Fatalf("unexpected paragraphs %+v", ps)
	}
}
