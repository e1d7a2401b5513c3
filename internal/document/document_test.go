/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"gostickerplanner/internal/domain"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("pl-%d", n)
	}
}

func testPlacer(seed uint64) Placer {
	r := rand.New(rand.NewSource(int64(seed)))
	return Placer{NewID: seqIDs(), Float: r.Float64, JitterPercent: 10, JitterDegrees: 10}
}

func TestAddCreatesSlotAndDoesNotMutateInput(t *testing.T) {
	before := domain.NewDocument()
	after, p := testPlacer(1).Add(before, 0, 12, "asset-1", domain.Pose{X: 50, Y: 50})
	if len(before.SlotsByPage) != 0 {
		t.Fatalf("input document was mutated: %+v", before)
	}
	s, ok := after.Slot(0, 12)
	if !ok || len(s.Placements) != 1 || s.Index != 12 {
		t.Fatalf("slot not created: %+v", after)
	}
	if s.Placements[0] != p || p.AssetID != "asset-1" || p.Scale != 1 {
		t.Fatalf("unexpected placement: %+v", p)
	}
}

func TestAddJitterBounds(t *testing.T) {
	pl := testPlacer(7)
	doc := domain.NewDocument()
	at := domain.Pose{X: 50, Y: 50}
	for i := 0; i < 200; i++ {
		doc, _ = pl.Add(doc, 1, 3, "a", at)
	}
	s, _ := doc.Slot(1, 3)
	ids := map[string]bool{}
	for _, p := range s.Placements {
		if p.X < 40 || p.X > 60 || p.Y < 40 || p.Y > 60 {
			t.Fatalf("position jitter out of ±10 bounds: %+v", p.Pose)
		}
		if p.Rotation < -10 || p.Rotation > 10 {
			t.Fatalf("rotation jitter out of ±10 bounds: %v", p.Rotation)
		}
		if ids[p.ID] {
			t.Fatalf("duplicate placement id %q", p.ID)
		}
		ids[p.ID] = true
	}
}

func TestTwoPlacementsAtSameClickStayClose(t *testing.T) {
	pl := testPlacer(3)
	at := domain.Pose{X: 30, Y: 70}
	doc, a := pl.Add(domain.NewDocument(), 0, 1, "a", at)
	doc, b := pl.Add(doc, 0, 1, "a", at)
	for _, p := range []domain.Placement{a, b} {
		dx, dy := p.X-at.X, p.Y-at.Y
		if dx < -10 || dx > 10 || dy < -10 || dy > 10 {
			t.Fatalf("placement drifted more than 10 points from click: %+v", p.Pose)
		}
	}
	s, _ := doc.Slot(0, 1)
	if s.Placements[0].ID != a.ID || s.Placements[1].ID != b.ID {
		t.Fatalf("insertion order is z-order: %+v", s.Placements)
	}
}

func TestAddThenDeleteRoundTrip(t *testing.T) {
	base := SetPageNote(domain.NewDocument(), 0, "month")
	base = SetSlotNote(base, 0, 4, "gym")
	for _, slot := range []int{4, 9} {
		added, p := testPlacer(11).Add(base, 0, slot, "a", domain.Pose{X: 50, Y: 50})
		got, err := DeletePlacement(added, 0, slot, p.ID)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if !got.Equal(base) {
			t.Fatalf("add+delete on slot %d did not restore document: %+v vs %+v", slot, got, base)
		}
		if _, ok := got.Slot(0, 9); ok {
			t.Fatalf("empty slot should be pruned")
		}
	}
}

func TestUpdatePlacement(t *testing.T) {
	doc, p := testPlacer(5).Add(domain.NewDocument(), 2, 8, "a", domain.Pose{X: 50, Y: 50})
	pose := domain.Pose{X: 120, Y: -5, Scale: 0.2, Rotation: 725}
	upd, err := UpdatePlacement(doc, 2, 8, p.ID, pose)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	s, _ := upd.Slot(2, 8)
	if s.Placements[0].Pose != pose || s.Placements[0].ID != p.ID || s.Placements[0].AssetID != "a" {
		t.Fatalf("pose not replaced: %+v", s.Placements[0])
	}
	old, _ := doc.Slot(2, 8)
	if old.Placements[0].Pose == pose {
		t.Fatalf("input document was mutated by update")
	}
}

func TestMissingTargetsReturnEditError(t *testing.T) {
	doc, _ := testPlacer(5).Add(domain.NewDocument(), 0, 1, "a", domain.Pose{})
	cases := []struct {
		name string
		run  func() (domain.Document, error)
		want error
	}{
		{"update missing slot", func() (domain.Document, error) {
			return UpdatePlacement(doc, 0, 2, "x", domain.Pose{})
		}, ErrSlotNotFound},
		{"update missing placement", func() (domain.Document, error) {
			return UpdatePlacement(doc, 0, 1, "x", domain.Pose{})
		}, ErrPlacementNotFound},
		{"delete missing page", func() (domain.Document, error) {
			return DeletePlacement(doc, 9, 1, "x")
		}, ErrSlotNotFound},
	}
	for _, c := range cases {
		got, err := c.run()
		if !errors.Is(err, c.want) || !IsNotFound(err) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
		var ee *EditError
		if !errors.As(err, &ee) || ee.Op == "" {
			t.Fatalf("%s: expected *EditError, got %T", c.name, err)
		}
		if !got.Equal(doc) {
			t.Fatalf("%s: document changed on error", c.name)
		}
	}
}

func TestNotesAndClearPage(t *testing.T) {
	doc := SetSlotNote(domain.NewDocument(), 4, 20, "birthday")
	doc = SetPageNote(doc, 4, "May")
	doc, _ = testPlacer(2).Add(doc, 4, 21, "a", domain.Pose{})
	doc = SetSlotNote(doc, 5, 1, "keep me")

	if s, _ := doc.Slot(4, 20); s.Note != "birthday" {
		t.Fatalf("slot note = %q", s.Note)
	}
	cleared := ClearPage(doc, 4)
	if _, ok := cleared.Slot(4, 20); ok {
		t.Fatalf("slot survived ClearPage")
	}
	if cleared.Page(4).Note != "" {
		t.Fatalf("page note survived ClearPage")
	}
	if s, _ := cleared.Slot(5, 1); s.Note != "keep me" {
		t.Fatalf("other page affected by ClearPage")
	}
	if doc.Page(4).Note != "May" {
		t.Fatalf("ClearPage mutated input")
	}
}

func TestRemoveAssetPlacementsCascades(t *testing.T) {
	pl := testPlacer(9)
	doc, _ := pl.Add(domain.NewDocument(), 0, 1, "gone", domain.Pose{})
	doc, keep := pl.Add(doc, 0, 1, "stay", domain.Pose{})
	doc, _ = pl.Add(doc, 3, 2, "gone", domain.Pose{})

	out, n := RemoveAssetPlacements(doc, "gone")
	if n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
	s, _ := out.Slot(0, 1)
	if len(s.Placements) != 1 || s.Placements[0].ID != keep.ID {
		t.Fatalf("wrong survivors: %+v", s.Placements)
	}
	if _, ok := out.Slot(3, 2); ok {
		t.Fatalf("emptied slot should be pruned")
	}
	if _, _, total := doc.Counts(); total != 3 {
		t.Fatalf("input mutated: %d placements", total)
	}
}
