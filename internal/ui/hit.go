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
	"sort"

	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/export"
	"gostickerplanner/internal/transform"
	"gostickerplanner/internal/vector"
)

// view maps page units to widget pixels. The page is fitted into the widget and centred.
type view struct {
	originX, originY float64
	scale            float64
}

func fitView(page vector.Size, w, h float64) view {
	if w <= 0 || h <= 0 {
		return view{scale: 1}
	}
	s := math.Min(w/page.W, h/page.H)
	return view{originX: (w - page.W*s) / 2, originY: (h - page.H*s) / 2, scale: s}
}

func (v view) toScreen(p vector.Pt) vector.Pt {
	return vector.Pt{X: v.originX + p.X*v.scale, Y: v.originY + p.Y*v.scale}
}

func (v view) toPage(p vector.Pt) vector.Pt {
	return vector.Pt{X: (p.X - v.originX) / v.scale, Y: (p.Y - v.originY) / v.scale}
}

// handleRadius is the hit radius of the resize and rotate handles in page units.
const handleRadius = 7.0

// rotateStem is how far the rotate handle sits above the sticker's top edge, in page units.
const rotateStem = 16.0

// sticker is one placement resolved to page geometry.
type sticker struct {
	target    transform.Target
	m         vector.Affine2D // asset-local -> page
	w, h      float64         // asset-local extent
	cell      vector.Rect
	placement domain.Placement
}

func (s sticker) center() vector.Pt { return s.m.Apply(vector.Pt{X: s.w / 2, Y: s.h / 2}) }

// corners returns the outline clockwise from top-left.
func (s sticker) corners() [4]vector.Pt {
	return [4]vector.Pt{
		s.m.Apply(vector.Pt{}),
		s.m.Apply(vector.Pt{X: s.w}),
		s.m.Apply(vector.Pt{X: s.w, Y: s.h}),
		s.m.Apply(vector.Pt{Y: s.h}),
	}
}

func (s sticker) resizeHandle() vector.Pt { return s.m.Apply(vector.Pt{X: s.w, Y: s.h}) }

func (s sticker) rotateHandle() vector.Pt {
	top := s.m.Apply(vector.Pt{X: s.w / 2})
	c := s.center()
	dx, dy := top.X-c.X, top.Y-c.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return vector.Pt{X: top.X, Y: top.Y - rotateStem}
	}
	return vector.Pt{X: top.X + dx/d*rotateStem, Y: top.Y + dy/d*rotateStem}
}

func (s sticker) contains(p vector.Pt) bool {
	inv, ok := s.m.Invert()
	if !ok {
		return false
	}
	q := inv.Apply(p)
	return q.X >= 0 && q.X <= s.w && q.Y >= 0 && q.Y <= s.h
}

// stickers resolves every placement on page in draw order (days ascending, then z-order).
func stickers(doc domain.Document, page int, l export.Layout, assets export.AssetResolver) []sticker {
	days := make([]int, 0, len(doc.SlotsByPage[page]))
	for d := range doc.SlotsByPage[page] {
		if _, ok := l.Cells[d]; ok {
			days = append(days, d)
		}
	}
	sort.Ints(days)
	var out []sticker
	for _, d := range days {
		cell := l.Cells[d]
		for _, p := range doc.SlotsByPage[page][d].Placements {
			a, ok := assets.Resolve(p.AssetID)
			if !ok {
				continue
			}
			m := export.PlacementTransform(p.Pose, cell, a.NaturalWidth, a.NaturalHeight)
			w, h := float64(a.NaturalWidth), float64(a.NaturalHeight)
			if w <= 0 || h <= 0 {
				sz := export.StickerSize(vector.Size{W: cell.W, H: cell.H}, 0, 0)
				w, h = sz.W, sz.H
			}
			out = append(out, sticker{
				target:    transform.Target{Page: page, Slot: d, PlacementID: p.ID},
				m:         m,
				w:         w,
				h:         h,
				cell:      cell,
				placement: p,
			})
		}
	}
	return out
}

// hit describes what lies under a pointer.
type hit struct {
	sticker *sticker
	handle  transform.Handle
	day     int // 0 when outside every cell
}

// hitTest checks the focused sticker's handles first, then stickers top-most
// first, then day cells.
func hitTest(all []sticker, sel transform.Selection, l export.Layout, p vector.Pt) hit {
	if sel.Has {
		for i := range all {
			s := &all[i]
			if s.target != sel.Focused {
				continue
			}
			if near(p, s.resizeHandle()) {
				return hit{sticker: s, handle: transform.HandleResize, day: s.target.Slot}
			}
			if near(p, s.rotateHandle()) {
				return hit{sticker: s, handle: transform.HandleRotate, day: s.target.Slot}
			}
			if s.contains(p) {
				return hit{sticker: s, handle: transform.HandleBody, day: s.target.Slot}
			}
		}
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].contains(p) {
			return hit{sticker: &all[i], handle: transform.HandleBody, day: all[i].target.Slot}
		}
	}
	day, _ := l.SlotAt(p)
	return hit{day: day}
}

func near(a, b vector.Pt) bool { return math.Hypot(a.X-b.X, a.Y-b.Y) <= handleRadius }

// frameFor is the gesture frame of s in screen pixels.
func frameFor(s sticker, v view) transform.Frame {
	c := v.toScreen(s.center())
	return transform.Frame{Box: vector.Size{W: s.cell.W * v.scale, H: s.cell.H * v.scale}, Center: c}
}
