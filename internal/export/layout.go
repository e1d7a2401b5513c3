/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"gostickerplanner/internal/calendar"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/vector"
)

// A4 landscape in points.
var PageSize = vector.Size{W: 842, H: 595}

// StickerBox is the share of a day cell a placement occupies at scale 1.
const StickerBox = 0.6

// Layout positions the parts of one month page. All values are in page units
// with the origin at the top-left.
type Layout struct {
	Page     vector.Size
	Title    vector.Rect
	Quote    vector.Rect
	Weekdays [7]vector.Rect
	Cells    map[int]vector.Rect // day -> cell
	Notes    vector.Rect
}

// LayoutMonth splits a page of the given size into header, grid and notes.
func LayoutMonth(m calendar.Month, page vector.Size) Layout {
	margin := page.W * 0.033
	headerH := page.H * 0.13
	weekdayH := page.H * 0.03
	notesH := page.H * 0.12
	inner := page.W - 2*margin

	l := Layout{
		Page:  page,
		Title: vector.R(margin, margin, inner*0.45, headerH),
		Quote: vector.R(margin+inner*0.5, margin, inner*0.5, headerH),
		Cells: make(map[int]vector.Rect, m.Days),
	}
	gridTop := margin + headerH + weekdayH
	gridH := page.H - gridTop - notesH - 2*margin
	colW := inner / 7
	for i := range l.Weekdays {
		l.Weekdays[i] = vector.R(margin+float64(i)*colW, margin+headerH, colW, weekdayH)
	}
	rows := m.Rows()
	rowH := gridH / float64(rows)
	for i, day := range m.Cells() {
		if day == 0 {
			continue
		}
		l.Cells[day] = vector.R(margin+float64(i%7)*colW, gridTop+float64(i/7)*rowH, colW, rowH)
	}
	l.Notes = vector.R(margin, page.H-margin-notesH, inner, notesH)
	return l
}

// SlotAt returns the day whose cell contains p.
func (l Layout) SlotAt(p vector.Pt) (int, bool) {
	for day, r := range l.Cells {
		if r.Contains(p) {
			return day, true
		}
	}
	return 0, false
}

// StickerSize fits an asset of the given natural size into the sticker box of
// a cell, keeping its aspect ratio.
func StickerSize(cell vector.Size, natW, natH int) vector.Size {
	bw, bh := cell.W*StickerBox, cell.H*StickerBox
	if natW <= 0 || natH <= 0 {
		return vector.Size{W: bw, H: bh}
	}
	s := bw / float64(natW)
	if t := bh / float64(natH); t < s {
		s = t
	}
	return vector.Size{W: float64(natW) * s, H: float64(natH) * s}
}

// PlacementTransform maps asset pixels into page units for a placement in cell.
func PlacementTransform(p domain.Pose, cell vector.Rect, natW, natH int) vector.Affine2D {
	box := vector.Size{W: cell.W, H: cell.H}
	elem := StickerSize(box, natW, natH)
	m := vector.Translate(cell.X, cell.Y).Mul(vector.PoseTransform(p, box, elem))
	if natW > 0 && natH > 0 {
		m = m.Mul(vector.Scale(elem.W/float64(natW), elem.H/float64(natH)))
	}
	return m
}
