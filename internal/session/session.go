/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session is the editor façade a host UI drives. It owns the live
// document, its undo history, the asset catalog and the explicit UI state, and
// decides when an edit becomes a history entry.
//
// Document, history and gesture methods are meant to be called from the host's
// event loop only. Theme methods (Analyze, GenerateBackground, Style, Status)
// may run on another goroutine.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gostickerplanner/internal/ai"
	"gostickerplanner/internal/calendar"
	"gostickerplanner/internal/catalog"
	"gostickerplanner/internal/config"
	"gostickerplanner/internal/document"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/extract"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/style"
	"gostickerplanner/internal/telemetry"
	"gostickerplanner/internal/transform"
	"gostickerplanner/internal/undo"
)

// Tab is the side panel currently shown.
type Tab int

const (
	TabStickers Tab = iota
	TabStyle
)

// UIState is the non-document state that decides how input is interpreted.
// It is never part of history.
type UIState struct {
	ArmedAssetID string // asset placed by the next slot click; "" when nothing is armed
	transform.Selection
	Page              int // 0..11
	Tab               Tab
	DailyNotesEnabled bool
}

// Options wire a session. Zero values fall back to defaults.
type Options struct {
	Editor     config.EditorConfig
	Year       int
	Country    string
	Placer     *document.Placer
	Analyzer   ai.Analyzer
	Background ai.BackgroundGenerator
	Telemetry  telemetry.Sink
}

type Session struct {
	UI UIState

	doc     domain.Document
	hist    *undo.History
	ctrl    *transform.Controller
	catalog *catalog.Catalog
	placer  document.Placer
	year    int

	skipIdentical bool
	minExtractPx  float64

	extractor  *extract.Extractor
	addingMore bool

	analyzer ai.Analyzer
	bg       ai.BackgroundGenerator
	sink     telemetry.Sink
	log      *slog.Logger

	styleMu sync.Mutex
	style   style.Style
	status  string
}

func New(opts Options) *Session {
	ed := opts.Editor
	if ed == (config.EditorConfig{}) {
		ed = config.Defaults().Editor
	}
	placer := document.DefaultPlacer
	if opts.Placer != nil {
		placer = *opts.Placer
	} else {
		placer.JitterPercent = ed.JitterPercent
		placer.JitterDegrees = ed.JitterDegrees
	}
	year := opts.Year
	if year == 0 {
		year = config.Defaults().General.Year
	}
	sink := opts.Telemetry
	if sink == nil {
		sink = telemetry.Nop{}
	}
	st := style.Default()
	if opts.Country != "" {
		st.Country = opts.Country
	}
	doc := domain.NewDocument()
	return &Session{
		UI:            UIState{DailyNotesEnabled: true},
		doc:           doc,
		hist:          undo.NewHistory(doc, undo.Config{MaxEntries: ed.HistoryMaxEntries}),
		ctrl:          transform.NewController(transform.Params{MinScale: ed.MinScale, ResizePerPx: ed.ResizePerPx}),
		catalog:       catalog.New(),
		placer:        placer,
		year:          year,
		skipIdentical: ed.SkipIdenticalCommits,
		minExtractPx:  ed.MinExtractPx,
		analyzer:      opts.Analyzer,
		bg:            opts.Background,
		sink:          sink,
		log:           applog.WithComponent("session"),
		style:         st,
	}
}

// Document is the live document. Treat it as read-only; all edits go through the session.
func (s *Session) Document() domain.Document { return s.doc }

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Month is the calendar geometry of the current page.
func (s *Session) Month() calendar.Month { return calendar.MonthOf(s.year, s.UI.Page) }

// Holidays of the current page for the styled country.
func (s *Session) Holidays() map[int]string {
	return calendar.HolidaysIn(s.Style().Country, s.year, s.UI.Page)
}

// SetPage switches the visible month. Focus does not carry over.
func (s *Session) SetPage(page int) {
	if page < 0 || page > 11 || page == s.UI.Page {
		return
	}
	s.ctrl.Deselect(&s.UI.Selection)
	s.UI.Page = page
}

func (s *Session) NextPage() { s.SetPage(s.UI.Page + 1) }
func (s *Session) PrevPage() { s.SetPage(s.UI.Page - 1) }

// ArmAsset selects the asset the next slot click will place. Arming the armed asset disarms it.
func (s *Session) ArmAsset(id string) {
	if s.UI.ArmedAssetID == id {
		s.UI.ArmedAssetID = ""
		return
	}
	if _, ok := s.catalog.Resolve(id); !ok {
		s.log.Debug("arm unknown asset ignored", slog.String("asset", id))
		return
	}
	s.UI.ArmedAssetID = id
}

// ClickSlot places the armed asset near the centre of day slot on the current page.
// Without an armed asset it does nothing.
func (s *Session) ClickSlot(slot int) (domain.Placement, bool) {
	return s.ClickSlotAt(slot, domain.Pose{X: 50, Y: 50, Scale: 1})
}

// ClickSlotAt is ClickSlot with an explicit initial pose; jitter is still applied.
func (s *Session) ClickSlotAt(slot int, at domain.Pose) (domain.Placement, bool) {
	if s.UI.ArmedAssetID == "" || !s.Month().ValidDay(slot) {
		return domain.Placement{}, false
	}
	page := s.UI.Page
	doc, p := s.placer.Add(s.doc, page, slot, s.UI.ArmedAssetID, at)
	s.doc = doc
	s.commit("add placement")
	ctx := applog.WithEditTarget(context.Background(), page, slot)
	s.log.DebugContext(ctx, "placement added", slog.String("id", p.ID), slog.String("asset", p.AssetID))
	s.sink.Event(telemetry.EventPlacementAdded, map[string]any{"page": page})
	return p, true
}

// PointerDown routes a press on a placement instance. The first press on an
// unfocused instance only focuses it; a press on the focused one starts a gesture.
func (s *Session) PointerDown(t transform.Target, h transform.Handle, ev transform.PointerEvent, f transform.Frame) bool {
	p, ok := s.placement(t)
	if !ok {
		s.log.Debug("press on missing placement ignored", slog.String("id", t.PlacementID))
		return false
	}
	return s.ctrl.Press(&s.UI.Selection, t, p.Pose, h, ev, f)
}

// PointerMove updates the live pose of the active gesture. The document is untouched.
func (s *Session) PointerMove(ev transform.PointerEvent) (transform.Target, domain.Pose, bool) {
	return s.ctrl.Move(ev)
}

// PointerUp ends the gesture and commits the final pose as one history entry.
func (s *Session) PointerUp() bool {
	c, ok := s.ctrl.Release()
	if !ok {
		return false
	}
	doc, err := document.UpdatePlacement(s.doc, c.Target.Page, c.Target.Slot, c.Target.PlacementID, c.Pose)
	if err != nil {
		s.logEditError(err)
		return false
	}
	s.doc = doc
	ctx := applog.WithPlacement(context.Background(), c.Target.Page, c.Target.Slot, c.Target.PlacementID)
	s.log.DebugContext(ctx, "gesture released", slog.String("gesture", c.State.String()),
		slog.Float64("x", c.Pose.X), slog.Float64("y", c.Pose.Y),
		slog.Float64("scale", c.Pose.Scale), slog.Float64("rotation", c.Pose.Rotation))
	return s.commit(c.State.String())
}

// RenderPose is the pose to draw for t: the live one during a gesture, else the committed one.
func (s *Session) RenderPose(t transform.Target) (domain.Pose, bool) {
	if p, ok := s.ctrl.LivePose(t); ok {
		return p, true
	}
	p, ok := s.placement(t)
	return p.Pose, ok
}

// GestureState reports the transform state of t.
func (s *Session) GestureState(t transform.Target) transform.State { return s.ctrl.State(t) }

// Select focuses t without starting a gesture.
func (s *Session) Select(t transform.Target) {
	if _, ok := s.placement(t); ok {
		s.ctrl.Select(&s.UI.Selection, t)
	}
}

// DeselectAll clears focus so no selection chrome is drawn (used before export).
func (s *Session) DeselectAll() { s.ctrl.Deselect(&s.UI.Selection) }

// DeletePlacement removes t and commits. Missing targets are logged and ignored.
func (s *Session) DeletePlacement(t transform.Target) error {
	doc, err := document.DeletePlacement(s.doc, t.Page, t.Slot, t.PlacementID)
	if err != nil {
		s.logEditError(err)
		return err
	}
	if s.UI.Is(t) {
		s.ctrl.Deselect(&s.UI.Selection)
	}
	s.doc = doc
	s.commit("delete placement")
	return nil
}

// EditSlotNote updates a day note on the current page without a history entry.
// Ignored while daily notes are disabled.
func (s *Session) EditSlotNote(slot int, text string) {
	if !s.UI.DailyNotesEnabled || !s.Month().ValidDay(slot) {
		return
	}
	s.doc = document.SetSlotNote(s.doc, s.UI.Page, slot, text)
}

// EditPageNote updates the current page's note without a history entry.
func (s *Session) EditPageNote(text string) {
	s.doc = document.SetPageNote(s.doc, s.UI.Page, text)
}

// CommitNotes records pending note edits (called when a note field loses focus).
func (s *Session) CommitNotes() bool { return s.commit("notes") }

// ClearPage removes every placement and note of the current page as one step.
func (s *Session) ClearPage() {
	s.ctrl.Deselect(&s.UI.Selection)
	s.doc = document.ClearPage(s.doc, s.UI.Page)
	s.commit("clear page")
}

// Undo replaces the live document with the previous history entry.
func (s *Session) Undo() bool {
	doc, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.restore(doc)
	s.sink.Event(telemetry.EventUndo, nil)
	return true
}

// Redo replaces the live document with the next history entry.
func (s *Session) Redo() bool {
	doc, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.restore(doc)
	s.sink.Event(telemetry.EventRedo, nil)
	return true
}

func (s *Session) CanUndo() bool { return s.hist.CanUndo() }
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// HistoryStats returns entry count and cursor.
func (s *Session) HistoryStats() (int, int) { return s.hist.Stats() }

func (s *Session) restore(doc domain.Document) {
	s.ctrl.Cancel()
	s.doc = doc
	if s.UI.Has {
		if _, ok := s.placement(s.UI.Focused); !ok {
			s.ctrl.Deselect(&s.UI.Selection)
		}
	}
}

// commit pushes the live document unless it equals the current history entry
// and identical commits are skipped.
func (s *Session) commit(reason string) bool {
	if s.skipIdentical && s.hist.Matches(s.doc) {
		s.log.Debug("commit skipped, document unchanged", slog.String("reason", reason))
		return false
	}
	s.hist.Commit(s.doc)
	n, cur := s.hist.Stats()
	s.log.Debug("committed", slog.String("reason", reason), slog.Int("entries", n), slog.Int("cursor", cur))
	return true
}

func (s *Session) placement(t transform.Target) (domain.Placement, bool) {
	sl, ok := s.doc.Slot(t.Page, t.Slot)
	if !ok {
		return domain.Placement{}, false
	}
	for _, p := range sl.Placements {
		if p.ID == t.PlacementID {
			return p, true
		}
	}
	return domain.Placement{}, false
}

func (s *Session) logEditError(err error) {
	if document.IsNotFound(err) {
		s.log.Debug("edit target missing", slog.Any("err", err))
		return
	}
	s.log.Warn("edit failed", slog.Any("err", err))
}

// CrashSummary implements crash.Reporter. Counts only, no content.
func (s *Session) CrashSummary() []string {
	pages, slots, placements := s.doc.Counts()
	n, cur := s.hist.Stats()
	return []string{
		fmt.Sprintf("Page: %d", s.UI.Page),
		fmt.Sprintf("Document: %d pages, %d slots, %d placements", pages, slots, placements),
		fmt.Sprintf("History: %d entries, cursor %d", n, cur),
		fmt.Sprintf("Assets: %d", s.catalog.Len()),
	}
}
