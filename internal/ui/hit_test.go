/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"
	"testing"

	"gostickerplanner/internal/calendar"
	"gostickerplanner/internal/catalog"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/export"
	"gostickerplanner/internal/transform"
	"gostickerplanner/internal/vector"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func fixture() (domain.Document, export.Layout, *catalog.Catalog) {
	cat := catalog.New()
	cat.Add(domain.Asset{ID: "a", NaturalWidth: 10, NaturalHeight: 10})
	doc := domain.NewDocument()
	doc.SlotsByPage[0] = map[int]domain.Slot{15: {Index: 15, Placements: []domain.Placement{
		{ID: "under", AssetID: "a", Pose: domain.Pose{X: 50, Y: 50, Scale: 1}},
		{ID: "over", AssetID: "a", Pose: domain.Pose{X: 50, Y: 50, Scale: 0.5}},
		{ID: "gone", AssetID: "missing", Pose: domain.Pose{X: 50, Y: 50, Scale: 3}},
	}}}
	return doc, export.LayoutMonth(calendar.MonthOf(2026, 0), export.PageSize), cat
}

func TestFitViewRoundTrip(t *testing.T) {
	v := fitView(export.PageSize, 1000, 800)
	if !almostEqual(v.scale, 1000/export.PageSize.W, 1e-9) {
		t.Fatalf("page should fit the width, scale=%v", v.scale)
	}
	if v.originX != 0 || v.originY <= 0 {
		t.Fatalf("page should be centred vertically: %+v", v)
	}
	p := vector.Pt{X: 123, Y: 45}
	q := v.toPage(v.toScreen(p))
	if !almostEqual(p.X, q.X, 1e-9) || !almostEqual(p.Y, q.Y, 1e-9) {
		t.Fatalf("round trip %+v -> %+v", p, q)
	}
}

func TestStickersSkipDanglingAssets(t *testing.T) {
	doc, l, cat := fixture()
	all := stickers(doc, 0, l, cat)
	if len(all) != 2 || all[0].target.PlacementID != "under" || all[1].target.PlacementID != "over" {
		t.Fatalf("unexpected stickers %+v", all)
	}
	c := all[0].center()
	cell := l.Cells[15].Center()
	if !almostEqual(c.X, cell.X, 1e-9) || !almostEqual(c.Y, cell.Y, 1e-9) {
		t.Fatalf("sticker should be centred in its cell: %+v vs %+v", c, cell)
	}
}

func TestHitTestPrefersTopMostThenHandles(t *testing.T) {
	doc, l, cat := fixture()
	all := stickers(doc, 0, l, cat)
	center := all[0].center()

	h := hitTest(all, transform.Selection{}, l, center)
	if h.sticker == nil || h.sticker.target.PlacementID != "over" || h.handle != transform.HandleBody {
		t.Fatalf("expected top-most body hit, got %+v", h)
	}

	under := all[0]
	sel := transform.Selection{Focused: under.target, Has: true}
	if h := hitTest(all, sel, l, center); h.sticker == nil || h.sticker.target.PlacementID != "under" {
		t.Fatalf("focused sticker should win, got %+v", h)
	}
	if h := hitTest(all, sel, l, under.resizeHandle()); h.handle != transform.HandleResize {
		t.Fatalf("expected resize handle, got %+v", h)
	}
	if h := hitTest(all, sel, l, under.rotateHandle()); h.handle != transform.HandleRotate {
		t.Fatalf("expected rotate handle, got %+v", h)
	}
	if h := hitTest(all, transform.Selection{}, l, under.rotateHandle()); h.handle == transform.HandleRotate {
		t.Fatalf("handles only exist on the focused sticker")
	}
}

func TestHitTestFallsBackToDay(t *testing.T) {
	doc, l, cat := fixture()
	all := stickers(doc, 0, l, cat)
	if h := hitTest(all, transform.Selection{}, l, l.Cells[3].Center()); h.sticker != nil || h.day != 3 {
		t.Fatalf("expected day 3, got %+v", h)
	}
	if h := hitTest(all, transform.Selection{}, l, vector.Pt{X: 1, Y: 1}); h.day != 0 {
		t.Fatalf("margin should hit nothing, got %+v", h)
	}
}

func TestRotatedStickerContains(t *testing.T) {
	doc, l, cat := fixture()
	s := doc.SlotsByPage[0][15]
	s.Placements = []domain.Placement{{ID: "r", AssetID: "a", Pose: domain.Pose{X: 50, Y: 50, Scale: 1, Rotation: 45}}}
	doc.SlotsByPage[0][15] = s
	all := stickers(doc, 0, l, cat)
	corners := all[0].corners()
	c := all[0].center()
	// The unrotated top-left corner lies outside a 45 degree square.
	side := math.Hypot(corners[1].X-corners[0].X, corners[1].Y-corners[0].Y)
	probe := vector.Pt{X: c.X - side/2 + 0.5, Y: c.Y - side/2 + 0.5}
	if all[0].contains(probe) {
		t.Fatalf("rotated sticker should not contain its axis-aligned corner")
	}
	if !all[0].contains(c) {
		t.Fatalf("centre must be inside")
	}
}

func TestFrameForUsesScreenCell(t *testing.T) {
	doc, l, cat := fixture()
	all := stickers(doc, 0, l, cat)
	v := fitView(export.PageSize, 421, 297.5)
	f := frameFor(all[0], v)
	if !almostEqual(f.Box.W, l.Cells[15].W*v.scale, 1e-9) || !almostEqual(f.Box.H, l.Cells[15].H*v.scale, 1e-9) {
		t.Fatalf("frame box should be the on-screen cell, got %+v", f.Box)
	}
	want := v.toScreen(all[0].center())
	if !almostEqual(f.Center.X, want.X, 1e-9) || !almostEqual(f.Center.Y, want.Y, 1e-9) {
		t.Fatalf("frame centre %+v, want %+v", f.Center, want)
	}
}
