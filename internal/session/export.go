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
	"gostickerplanner/internal/document"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/export"
)

// Year is the calendar year the planner shows.
func (s *Session) Year() int { return s.year }

// LiveDocument is the document as it should be drawn right now: the committed
// state with the active gesture's live pose applied. History is not touched.
func (s *Session) LiveDocument() domain.Document {
	if !s.ctrl.Active() || !s.UI.Has {
		return s.doc
	}
	t := s.UI.Focused
	pose, ok := s.ctrl.LivePose(t)
	if !ok {
		return s.doc
	}
	doc, err := document.UpdatePlacement(s.doc, t.Page, t.Slot, t.PlacementID, pose)
	if err != nil {
		return s.doc
	}
	return doc
}

// PrepareExport clears focus and any active gesture, then returns what the
// renderers read. Selection chrome therefore never reaches an export.
func (s *Session) PrepareExport() export.Source {
	s.DeselectAll()
	return export.Source{
		Doc:        s.doc,
		Style:      s.Style(),
		Assets:     s.catalog,
		Year:       s.year,
		DailyNotes: s.UI.DailyNotesEnabled,
	}
}
