/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"gostickerplanner/internal/ai"
	"gostickerplanner/internal/config"
	"gostickerplanner/internal/document"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/style"
	"gostickerplanner/internal/telemetry"
	"gostickerplanner/internal/transform"
	"gostickerplanner/internal/vector"
)

var frame = transform.Frame{Box: vector.Size{W: 100, H: 100}, Center: vector.Pt{X: 50, Y: 50}}

func newSession(t *testing.T, mutate func(*Options)) (*Session, *telemetry.Recorder) {
	t.Helper()
	n := 0
	r := rand.New(rand.NewSource(1))
	pl := document.Placer{
		NewID:         func() string { n++; return fmt.Sprintf("p%d", n) },
		Float:         r.Float64,
		JitterPercent: 10,
		JitterDegrees: 10,
	}
	rec := &telemetry.Recorder{}
	opts := Options{Editor: config.Defaults().Editor, Year: 2026, Placer: &pl, Telemetry: rec}
	if mutate != nil {
		mutate(&opts)
	}
	s := New(opts)
	s.Catalog().Add(domain.Asset{ID: "cat"}, domain.Asset{ID: "dog"})
	return s, rec
}

func place(t *testing.T, s *Session, asset string, slot int) transform.Target {
	t.Helper()
	s.UI.ArmedAssetID = asset
	p, ok := s.ClickSlot(slot)
	if !ok {
		t.Fatalf("placement on slot %d failed", slot)
	}
	return transform.Target{Page: s.UI.Page, Slot: slot, PlacementID: p.ID}
}

func TestClickSlotRequiresArmedAsset(t *testing.T) {
	s, rec := newSession(t, nil)
	if _, ok := s.ClickSlot(3); ok {
		t.Fatalf("click without armed asset must not place")
	}
	s.ArmAsset("cat")
	if _, ok := s.ClickSlot(32); ok {
		t.Fatalf("day 32 is not a slot")
	}
	p, ok := s.ClickSlot(3)
	if !ok || p.AssetID != "cat" {
		t.Fatalf("placement = %+v ok=%v", p, ok)
	}
	if n, cur := s.HistoryStats(); n != 2 || cur != 1 {
		t.Fatalf("placement should be one history entry, got n=%d cur=%d", n, cur)
	}
	if rec.Count(telemetry.EventPlacementAdded) != 1 {
		t.Fatalf("telemetry not recorded: %v", rec.Names())
	}
	s.ArmAsset("cat")
	if s.UI.ArmedAssetID != "" {
		t.Fatalf("arming the armed asset should disarm it")
	}
	s.ArmAsset("ghost")
	if s.UI.ArmedAssetID != "" {
		t.Fatalf("unknown asset must not be armed")
	}
}

func TestDragCommitsOnceOnRelease(t *testing.T) {
	s, _ := newSession(t, nil)
	tg := place(t, s, "cat", 5)
	before, _ := s.RenderPose(tg)
	n0, _ := s.HistoryStats()

	if s.PointerDown(tg, transform.HandleBody, transform.PointerEvent{}, frame) {
		t.Fatalf("first press should only focus")
	}
	if !s.PointerDown(tg, transform.HandleBody, transform.PointerEvent{}, frame) {
		t.Fatalf("second press should start a drag")
	}
	for i := 1; i <= 20; i++ {
		s.PointerMove(transform.PointerEvent{ClientX: float64(i)})
	}
	live, _ := s.RenderPose(tg)
	committed, _ := document.UpdatePlacement(s.Document(), tg.Page, tg.Slot, tg.PlacementID, before)
	if !committed.Equal(s.Document()) {
		t.Fatalf("live pose leaked into the document during the gesture")
	}
	if n, _ := s.HistoryStats(); n != n0 {
		t.Fatalf("moves must not create history entries")
	}
	if live.X-before.X < 19.999 || live.X-before.X > 20.001 {
		t.Fatalf("live pose = %+v, before = %+v", live, before)
	}
	if !s.PointerUp() {
		t.Fatalf("release should commit")
	}
	if n, _ := s.HistoryStats(); n != n0+1 {
		t.Fatalf("expected exactly one new entry")
	}
	after, _ := s.RenderPose(tg)
	if after != live {
		t.Fatalf("committed pose %+v != live %+v", after, live)
	}
	s.Undo()
	if p, _ := s.RenderPose(tg); p != before {
		t.Fatalf("undo should restore pre-drag pose, got %+v", p)
	}
}

func TestResizeToMinimumThenUndo(t *testing.T) {
	s, _ := newSession(t, nil)
	tg := place(t, s, "cat", 1)
	s.Select(tg)
	s.PointerDown(tg, transform.HandleResize, transform.PointerEvent{}, frame)
	s.PointerMove(transform.PointerEvent{ClientX: -10000})
	s.PointerUp()
	if p, _ := s.RenderPose(tg); p.Scale != 0.2 {
		t.Fatalf("scale = %v, want 0.2", p.Scale)
	}
	s.Undo()
	if p, _ := s.RenderPose(tg); p.Scale != 1 {
		t.Fatalf("undo should restore scale 1, got %v", p.Scale)
	}
}

func TestNoOpGestureSkipsCommitByDefault(t *testing.T) {
	s, _ := newSession(t, nil)
	tg := place(t, s, "cat", 1)
	s.Select(tg)
	n0, _ := s.HistoryStats()
	s.PointerDown(tg, transform.HandleBody, transform.PointerEvent{ClientX: 5}, frame)
	if s.PointerUp() {
		t.Fatalf("unchanged pose should not be committed")
	}
	if n, _ := s.HistoryStats(); n != n0 {
		t.Fatalf("history grew on a no-op gesture")
	}

	s2, _ := newSession(t, func(o *Options) { o.Editor.SkipIdenticalCommits = false })
	tg2 := place(t, s2, "cat", 1)
	s2.Select(tg2)
	n1, _ := s2.HistoryStats()
	s2.PointerDown(tg2, transform.HandleBody, transform.PointerEvent{}, frame)
	s2.PointerUp()
	if n, _ := s2.HistoryStats(); n != n1+1 {
		t.Fatalf("identical commits should be pushed when skipping is off")
	}
}

func TestNotesAreLiveUntilCommitted(t *testing.T) {
	s, _ := newSession(t, nil)
	s.EditSlotNote(4, "d")
	s.EditSlotNote(4, "de")
	s.EditSlotNote(4, "dentist")
	s.EditPageNote("goals")
	if n, _ := s.HistoryStats(); n != 1 {
		t.Fatalf("keystrokes must not create history entries")
	}
	if !s.CommitNotes() {
		t.Fatalf("blur should commit")
	}
	if s.CommitNotes() {
		t.Fatalf("second blur without changes should be skipped")
	}
	sl, _ := s.Document().Slot(0, 4)
	if sl.Note != "dentist" || s.Document().Page(0).Note != "goals" {
		t.Fatalf("notes not applied: %+v", s.Document())
	}
	s.Undo()
	if _, ok := s.Document().Slot(0, 4); ok {
		t.Fatalf("undo should remove the whole note edit")
	}

	s.UI.DailyNotesEnabled = false
	s.EditSlotNote(4, "ignored")
	if _, ok := s.Document().Slot(0, 4); ok {
		t.Fatalf("slot notes are ignored while daily notes are disabled")
	}
}

func TestClearPageAndDelete(t *testing.T) {
	s, _ := newSession(t, nil)
	a := place(t, s, "cat", 1)
	place(t, s, "dog", 2)
	s.EditPageNote("jan")
	s.CommitNotes()

	s.Select(a)
	if err := s.DeletePlacement(a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.UI.Has {
		t.Fatalf("deleting the focused placement should clear focus")
	}
	if err := s.DeletePlacement(a); !errors.Is(err, document.ErrSlotNotFound) {
		t.Fatalf("second delete should report not found, got %v", err)
	}

	s.SetPage(1)
	place(t, s, "cat", 14)
	s.SetPage(0)
	s.ClearPage()
	if _, _, n := s.Document().Counts(); n != 1 {
		t.Fatalf("only February should keep placements, got %d", n)
	}
	if s.Document().Page(0).Note != "" {
		t.Fatalf("page note should be cleared")
	}
	s.Undo()
	if s.Document().Page(0).Note != "jan" {
		t.Fatalf("undo of clear should restore the note")
	}
}

func TestUndoRedoTelemetryAndFocusReconcile(t *testing.T) {
	s, rec := newSession(t, nil)
	tg := place(t, s, "cat", 1)
	s.Select(tg)
	if !s.Undo() {
		t.Fatalf("undo should succeed")
	}
	if s.UI.Has {
		t.Fatalf("focus on a placement removed by undo should be cleared")
	}
	if s.Undo() || !s.CanRedo() {
		t.Fatalf("undo at the bottom is a no-op")
	}
	if !s.Redo() || s.Redo() {
		t.Fatalf("redo should succeed exactly once")
	}
	if rec.Count(telemetry.EventUndo) != 1 || rec.Count(telemetry.EventRedo) != 1 {
		t.Fatalf("events = %v", rec.Names())
	}
}

func TestRemoveAssetCascadesAsOneStep(t *testing.T) {
	s, _ := newSession(t, nil)
	place(t, s, "cat", 1)
	keep := place(t, s, "dog", 1)
	s.SetPage(3)
	place(t, s, "cat", 9)
	s.UI.ArmedAssetID = "cat"
	n0, _ := s.HistoryStats()

	if err := s.RemoveAsset("cat"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, n := s.Document().Counts(); n != 1 {
		t.Fatalf("expected only the dog placement left, got %d", n)
	}
	if _, ok := s.RenderPose(keep); !ok {
		t.Fatalf("unrelated placement removed")
	}
	if s.UI.ArmedAssetID != "" {
		t.Fatalf("removed asset is still armed")
	}
	if n, _ := s.HistoryStats(); n != n0+1 {
		t.Fatalf("cascade should be a single history step")
	}
	if err := s.RemoveAsset("cat"); err == nil {
		t.Fatalf("removing twice should fail")
	}
	s.Undo()
	if _, _, n := s.Document().Counts(); n != 3 {
		t.Fatalf("undo should restore the placements, got %d", n)
	}
}

func TestExtractionReplaceThenAppend(t *testing.T) {
	s, rec := newSession(t, nil)
	s.UI.ArmedAssetID = "cat"
	src := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	src.Set(0, 0, color.Black)

	ex := s.BeginExtraction(src, 100, 100, false)
	ex.Press(vector.Pt{X: 0, Y: 0})
	ex.Move(vector.Pt{X: 50, Y: 50})
	ex.Release()
	got := s.FinishExtraction()
	if len(got) != 1 || s.Catalog().Len() != 1 {
		t.Fatalf("first extraction should replace the catalog, len=%d", s.Catalog().Len())
	}
	if s.UI.ArmedAssetID != "" {
		t.Fatalf("armed asset replaced away should be disarmed")
	}

	ex = s.BeginExtraction(src, 100, 100, true)
	ex.Press(vector.Pt{X: 10, Y: 10})
	ex.Move(vector.Pt{X: 90, Y: 90})
	ex.Release()
	s.FinishExtraction()
	if s.Catalog().Len() != 2 {
		t.Fatalf("add-more extraction should append, len=%d", s.Catalog().Len())
	}
	if rec.Count(telemetry.EventExtraction) != 2 {
		t.Fatalf("events = %v", rec.Names())
	}
}

func TestReplaceExtractionDropsOrphanedPlacements(t *testing.T) {
	s, _ := newSession(t, nil)
	place(t, s, "cat", 3)
	place(t, s, "dog", 4)
	before, _ := s.HistoryStats()

	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	ex := s.BeginExtraction(src, 100, 100, false)
	ex.Press(vector.Pt{X: 0, Y: 0})
	ex.Move(vector.Pt{X: 50, Y: 50})
	if _, ok := ex.Release(); !ok {
		t.Fatalf("50x50 selection should extract")
	}
	s.FinishExtraction()

	doc := s.Document()
	for page, slots := range doc.SlotsByPage {
		for _, sl := range slots {
			for _, p := range sl.Placements {
				if _, ok := s.Catalog().Resolve(p.AssetID); !ok {
					t.Fatalf("placement %s on page %d still uses removed asset %q", p.ID, page, p.AssetID)
				}
			}
		}
	}
	if _, _, n := doc.Counts(); n != 0 {
		t.Fatalf("both placements should be gone, %d left", n)
	}
	if after, _ := s.HistoryStats(); after != before+1 {
		t.Fatalf("replace should add one history entry, %d -> %d", before, after)
	}
	s.Undo()
	if _, _, n := s.Document().Counts(); n != 2 {
		t.Fatalf("undo should bring the placements back, got %d", n)
	}
}

type fakeAI struct {
	analysis ai.Analysis
	err      error
	img      ai.Image
}

func (f fakeAI) Analyze(context.Context, []byte, string) (ai.Analysis, error) { return f.analysis, f.err }
func (f fakeAI) GenerateBackground(context.Context, string, []string) (ai.Image, error) {
	return f.img, f.err
}

func TestAnalyzeFallbackKeepsEditing(t *testing.T) {
	s, rec := newSession(t, func(o *Options) {
		f := fakeAI{err: errors.New("boom")}
		o.Analyzer, o.Background = f, f
	})
	tg := place(t, s, "cat", 2)
	a := s.Analyze(context.Background(), nil, "")
	if a.Mood != "Cozy" || s.Style().Mood != "Cozy" {
		t.Fatalf("fallback not applied: %+v", a)
	}
	if !strings.Contains(s.Status(), "failed") {
		t.Fatalf("status = %q", s.Status())
	}
	if rec.Count(telemetry.EventAnalysisFailed) != 1 {
		t.Fatalf("events = %v", rec.Names())
	}
	if err := s.GenerateBackground(context.Background()); err == nil || s.Style().Background != nil {
		t.Fatalf("failed background must leave style unchanged")
	}
	if _, ok := s.RenderPose(tg); !ok || !s.CanUndo() {
		t.Fatalf("document and history must be unaffected by AI failures")
	}
}

func TestAnalyzeSuccessAndBackground(t *testing.T) {
	want := ai.Analysis{Palette: []string{"#123456"}, Mood: "Bold", MonthlyQuotes: make([]string, 12)}
	s, _ := newSession(t, func(o *Options) {
		f := fakeAI{analysis: want, img: ai.Image{Data: []byte("x"), MIME: "image/png"}}
		o.Analyzer, o.Background = f, f
	})
	s.UpdateStyle(func(st *style.Style) { st.Font = "Caveat" })
	s.Analyze(context.Background(), []byte{1}, "image/png")
	st := s.Style()
	if st.Mood != "Bold" || st.Font != "Caveat" || len(st.AIPalette) != 1 || s.Status() != "" {
		t.Fatalf("unexpected style: %+v status=%q", st, s.Status())
	}
	if err := s.GenerateBackground(context.Background()); err != nil || s.Style().Background == nil {
		t.Fatalf("background not stored: %v", err)
	}
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	s, _ := newSession(t, nil)
	s.Analyze(context.Background(), nil, "")
	if !strings.Contains(s.Status(), "no API key") {
		t.Fatalf("status = %q", s.Status())
	}
}

func TestHolidaysAndCrashSummary(t *testing.T) {
	s, _ := newSession(t, func(o *Options) { o.Country = "SG" })
	s.SetPage(7)
	if s.Holidays()[9] != "National Day" {
		t.Fatalf("holidays = %v", s.Holidays())
	}
	place(t, s, "cat", 9)
	sum := strings.Join(s.CrashSummary(), "\n")
	if !strings.Contains(sum, "1 placements") || !strings.Contains(sum, "History: 2 entries") {
		t.Fatalf("summary = %s", sum)
	}
}

func TestLiveDocumentAndPrepareExport(t *testing.T) {
	s, _ := newSession(t, nil)
	tg := place(t, s, "cat", 9)
	before, _ := s.RenderPose(tg)
	s.Select(tg)
	s.PointerDown(tg, transform.HandleBody, transform.PointerEvent{}, frame)
	s.PointerMove(transform.PointerEvent{ClientX: 10})

	slot, _ := s.LiveDocument().Slot(tg.Page, tg.Slot)
	if got := slot.Placements[0].X; got-before.X < 9.999 || got-before.X > 10.001 {
		t.Fatalf("live document should carry the live pose, got x=%v", got)
	}
	if s.Document().Equal(s.LiveDocument()) {
		t.Fatalf("committed document must not change during the gesture")
	}

	src := s.PrepareExport()
	if s.UI.Has || s.GestureState(tg) != transform.Idle {
		t.Fatalf("export must deselect and abandon the gesture")
	}
	if !src.Doc.Equal(s.Document()) || src.Year != 2026 || !src.DailyNotes {
		t.Fatalf("unexpected export source: %+v", src)
	}
	if _, ok := src.Assets.Resolve("cat"); !ok {
		t.Fatalf("export source should resolve catalog assets")
	}
	if !s.LiveDocument().Equal(s.Document()) {
		t.Fatalf("without a gesture the live document is the committed one")
	}
}
