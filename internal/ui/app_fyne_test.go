//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne widgets. They are gated behind the "fyne"
// build tag so headless CI does not need a display. To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"geoproof/internal/label"
	"geoproof/internal/render"
)

func TestProofCanvasForwardsPointer(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newTestViewer(t)
	w := test.NewWindow(nil)
	defer w.Close()

	pc := newProofCanvas(v, w)
	pc.Resize(fyne.NewSize(400, 400))
	if got := v.Image().Bounds().Dx(); got != 400 {
		t.Fatalf("raster edge = %d, want 400", got)
	}

	pc.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(200, 200)}})
	if hl := v.Controller().LastFrame().Highlighted; len(hl) != 1 || hl[0] != "A" {
		t.Fatalf("highlighted = %v, want [A]", hl)
	}
	pc.MouseOut()
	if hl := v.Controller().LastFrame().Highlighted; len(hl) != 0 {
		t.Fatalf("highlighted after MouseOut = %v", hl)
	}
}

func TestLabelChipHoverAndState(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newTestViewer(t)
	ref := render.LabelRef{Kind: "point", ID: "A"}
	chip := newLabelChip(v, ref, "A")

	chip.MouseIn(&desktop.MouseEvent{})
	if hl := v.Controller().LastFrame().Highlighted; len(hl) != 1 || hl[0] != "A" {
		t.Fatalf("label hover did not highlight A: %v", hl)
	}
	chip.MouseOut()

	chip.apply(label.State{Ref: ref, Visible: true, Color: "#ff0000", Shadowed: true})
	if !chip.Visible() || !chip.text.TextStyle.Bold {
		t.Fatalf("chip not shown bold")
	}
	chip.apply(label.State{Ref: ref})
	if chip.Visible() {
		t.Fatalf("hidden label still visible")
	}
}
