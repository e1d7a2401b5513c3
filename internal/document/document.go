/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document implements the edit operations on a domain.Document.
// Every operation is copy-on-write: the input document is never modified and
// untouched pages are shared between input and output.
package document

import (
	"math/rand"

	"github.com/google/uuid"

	"gostickerplanner/internal/domain"
)

// Placer creates placements with a fresh id and a small random fan-out so that
// repeated clicks on the same spot do not stack exactly.
type Placer struct {
	NewID         func() string
	Float         func() float64 // uniform in [0,1)
	JitterPercent float64
	JitterDegrees float64
}

// DefaultPlacer jitters ±10 percentage points and ±10 degrees.
var DefaultPlacer = Placer{NewID: uuid.NewString, Float: rand.Float64, JitterPercent: 10, JitterDegrees: 10}

// Add appends a new placement to the addressed slot, creating the slot if absent.
// at is the click pose; scale defaults to 1 when not positive.
func (pl Placer) Add(doc domain.Document, page, slot int, assetID string, at domain.Pose) (domain.Document, domain.Placement) {
	newID := pl.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	float := pl.Float
	if float == nil {
		float = rand.Float64
	}
	spread := func(r float64) float64 { return (float()*2 - 1) * r }

	pose := at
	if pose.Scale <= 0 {
		pose.Scale = 1
	}
	pose.X += spread(pl.JitterPercent)
	pose.Y += spread(pl.JitterPercent)
	pose.Rotation += spread(pl.JitterDegrees)
	p := domain.Placement{ID: newID(), AssetID: assetID, Pose: pose}

	out := withSlot(doc, page, slot, func(s *domain.Slot) {
		s.Placements = append(append([]domain.Placement(nil), s.Placements...), p)
	})
	return out, p
}

// AddPlacement uses DefaultPlacer.
func AddPlacement(doc domain.Document, page, slot int, assetID string, at domain.Pose) (domain.Document, domain.Placement) {
	return DefaultPlacer.Add(doc, page, slot, assetID, at)
}

// UpdatePlacement replaces the pose of the matching placement.
func UpdatePlacement(doc domain.Document, page, slot int, placementID string, pose domain.Pose) (domain.Document, error) {
	idx, err := find(doc, "update", page, slot, placementID)
	if err != nil {
		return doc, err
	}
	return withSlot(doc, page, slot, func(s *domain.Slot) {
		ps := append([]domain.Placement(nil), s.Placements...)
		ps[idx].Pose = pose
		s.Placements = ps
	}), nil
}

// DeletePlacement removes the matching placement. A slot left with nothing in it is dropped.
func DeletePlacement(doc domain.Document, page, slot int, placementID string) (domain.Document, error) {
	idx, err := find(doc, "delete", page, slot, placementID)
	if err != nil {
		return doc, err
	}
	return withSlot(doc, page, slot, func(s *domain.Slot) {
		ps := make([]domain.Placement, 0, len(s.Placements)-1)
		ps = append(ps, s.Placements[:idx]...)
		ps = append(ps, s.Placements[idx+1:]...)
		s.Placements = ps
	}), nil
}

// SetSlotNote replaces the slot note, creating the slot if absent.
func SetSlotNote(doc domain.Document, page, slot int, text string) domain.Document {
	return withSlot(doc, page, slot, func(s *domain.Slot) { s.Note = text })
}

// SetPageNote replaces the page-level note.
func SetPageNote(doc domain.Document, page int, text string) domain.Document {
	out := shallow(doc)
	out.NotesByPage[page] = text
	return out
}

// ClearPage empties every slot on the page and resets the page note.
func ClearPage(doc domain.Document, page int) domain.Document {
	out := shallow(doc)
	delete(out.SlotsByPage, page)
	out.NotesByPage[page] = ""
	return out
}

// RemoveAssetPlacements deletes every placement referencing assetID on every page.
func RemoveAssetPlacements(doc domain.Document, assetID string) (domain.Document, int) {
	removed := 0
	out := doc
	for page, slots := range doc.SlotsByPage {
		for idx, s := range slots {
			keep := make([]domain.Placement, 0, len(s.Placements))
			for _, p := range s.Placements {
				if p.AssetID != assetID {
					keep = append(keep, p)
				}
			}
			if n := len(s.Placements) - len(keep); n > 0 {
				removed += n
				out = withSlot(out, page, idx, func(s *domain.Slot) { s.Placements = keep })
			}
		}
	}
	return out, removed
}

func find(doc domain.Document, op string, page, slot int, placementID string) (int, error) {
	s, ok := doc.Slot(page, slot)
	if !ok {
		return -1, &EditError{Op: op, Page: page, Slot: slot, PlacementID: placementID, Err: ErrSlotNotFound}
	}
	for i, p := range s.Placements {
		if p.ID == placementID {
			return i, nil
		}
	}
	return -1, &EditError{Op: op, Page: page, Slot: slot, PlacementID: placementID, Err: ErrPlacementNotFound}
}

// shallow copies the two top-level maps; page maps are still shared.
func shallow(doc domain.Document) domain.Document {
	out := domain.Document{
		SlotsByPage: make(map[int]map[int]domain.Slot, len(doc.SlotsByPage)+1),
		NotesByPage: make(map[int]string, len(doc.NotesByPage)+1),
	}
	for k, v := range doc.SlotsByPage {
		out.SlotsByPage[k] = v
	}
	for k, v := range doc.NotesByPage {
		out.NotesByPage[k] = v
	}
	return out
}

// withSlot copies the path down to one slot, applies fn and prunes the slot
// (and its page map) if it ends up empty. fn must not alias the old placement slice.
func withSlot(doc domain.Document, page, slot int, fn func(*domain.Slot)) domain.Document {
	out := shallow(doc)
	old := out.SlotsByPage[page]
	slots := make(map[int]domain.Slot, len(old)+1)
	for k, v := range old {
		slots[k] = v
	}
	s, ok := slots[slot]
	if !ok {
		s = domain.Slot{Index: slot}
	}
	fn(&s)
	if s.Empty() {
		delete(slots, slot)
	} else {
		slots[slot] = s
	}
	if len(slots) == 0 {
		delete(out.SlotsByPage, page)
	} else {
		out.SlotsByPage[page] = slots
	}
	return out
}
