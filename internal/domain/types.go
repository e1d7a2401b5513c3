/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data model for the sticker planner: decorative assets,
// their placements inside day slots, and the page/slot document that the
// history manager snapshots.

// Asset is an immutable decorative image definition. Placements reference it by ID.
// Data holds the encoded image (PNG for extracted assets) and is never mutated after creation.
type Asset struct {
	ID            string `json:"id"`
	Data          []byte `json:"-"`
	MIME          string `json:"mime"`
	NaturalWidth  int    `json:"naturalWidth"`
	NaturalHeight int    `json:"naturalHeight"`
}

// Pose is the transformable part of a placement.
// X and Y are percentages of the slot's bounding box and are not clamped.
// Rotation is in degrees and is never wrapped in stored state.
type Pose struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// Placement is one positioned instance of an Asset inside a slot.
type Placement struct {
	ID      string `json:"id"`
	AssetID string `json:"assetId"`
	Pose
}

// Slot is one addressable day cell. Placement order is z-order (later is on top).
type Slot struct {
	Index      int         `json:"index"`
	Note       string      `json:"note,omitempty"`
	Placements []Placement `json:"placements"`
}

// Empty reports whether the slot carries nothing and need not be materialized.
func (s Slot) Empty() bool { return s.Note == "" && len(s.Placements) == 0 }

// Page is a collection of slots sharing a page-level note (a calendar month).
type Page struct {
	Index int    `json:"index"`
	Note  string `json:"note,omitempty"`
}

// Document is the aggregate edited by the user and snapshotted by history.
type Document struct {
	SlotsByPage map[int]map[int]Slot `json:"slotsByPage"`
	NotesByPage map[int]string       `json:"notesByPage"`
}

// NewDocument returns an empty document with initialized maps.
func NewDocument() Document {
	return Document{SlotsByPage: map[int]map[int]Slot{}, NotesByPage: map[int]string{}}
}

// Slot returns the addressed slot if it is materialized.
func (d Document) Slot(page, slot int) (Slot, bool) {
	s, ok := d.SlotsByPage[page][slot]
	return s, ok
}

// Page returns the page-level record; pages always exist logically.
func (d Document) Page(page int) Page {
	return Page{Index: page, Note: d.NotesByPage[page]}
}

// Clone returns a deep copy that shares no maps or slices with d.
func (d Document) Clone() Document {
	out := Document{
		SlotsByPage: make(map[int]map[int]Slot, len(d.SlotsByPage)),
		NotesByPage: make(map[int]string, len(d.NotesByPage)),
	}
	for p, slots := range d.SlotsByPage {
		cp := make(map[int]Slot, len(slots))
		for i, s := range slots {
			s.Placements = append([]Placement(nil), s.Placements...)
			cp[i] = s
		}
		out.SlotsByPage[p] = cp
	}
	for p, n := range d.NotesByPage {
		out.NotesByPage[p] = n
	}
	return out
}

// Equal compares documents by value. Empty slots, empty page maps and empty
// page notes are treated as absent, so materialization does not affect equality.
func (d Document) Equal(o Document) bool {
	if !slotsSubset(d.SlotsByPage, o.SlotsByPage) || !slotsSubset(o.SlotsByPage, d.SlotsByPage) {
		return false
	}
	for p, n := range d.NotesByPage {
		if o.NotesByPage[p] != n {
			return false
		}
	}
	for p, n := range o.NotesByPage {
		if d.NotesByPage[p] != n {
			return false
		}
	}
	return true
}

func slotsSubset(a, b map[int]map[int]Slot) bool {
	for p, slots := range a {
		for i, s := range slots {
			if s.Empty() {
				continue
			}
			t, ok := b[p][i]
			if !ok || !slotEqual(s, t) {
				return false
			}
		}
	}
	return true
}

func slotEqual(a, b Slot) bool {
	if a.Note != b.Note || len(a.Placements) != len(b.Placements) {
		return false
	}
	for i := range a.Placements {
		if a.Placements[i] != b.Placements[i] {
			return false
		}
	}
	return true
}

// Counts reports materialized pages, non-empty slots and total placements.
func (d Document) Counts() (pages, slots, placements int) {
	for _, ss := range d.SlotsByPage {
		n := 0
		for _, s := range ss {
			if s.Empty() {
				continue
			}
			n++
			placements += len(s.Placements)
		}
		if n > 0 {
			pages++
			slots += n
		}
	}
	return pages, slots, placements
}
