/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"

	"gostickerplanner/internal/domain"
)

// Snapshot is one immutable history entry. Doc is a deep copy owned by the history.
// TS is when the snapshot was captured.
type Snapshot struct {
	Doc domain.Document
	TS  time.Time
}

// Config controls depth caps.
type Config struct {
	// MaxEntries limits the number of snapshots kept in memory (0 means unlimited).
	// When exceeded the oldest entries are pruned and the cursor shifts with them.
	MaxEntries int
	// Now is the clock used for Snapshot.TS; defaults to time.Now.
	Now func() time.Time
}

// History is a linear undo/redo stack of full document snapshots with a cursor.
// Committing after an undo discards every redo target. It is safe for concurrent use.
type History struct {
	cfg     Config
	mu      sync.Mutex
	entries []Snapshot
	cursor  int
}

// NewHistory starts a history whose only entry is a copy of initial.
func NewHistory(initial domain.Document, cfg Config) *History {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &History{cfg: cfg}
	h.entries = []Snapshot{{Doc: initial.Clone(), TS: cfg.Now()}}
	return h
}

// Commit truncates everything beyond the cursor, appends a deep copy of doc and
// moves the cursor onto it.
func (h *History) Commit(doc domain.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.cursor+1:h.cursor+1], Snapshot{Doc: doc.Clone(), TS: h.cfg.Now()})
	h.cursor = len(h.entries) - 1
	h.enforceCapsLocked()
}

// Undo moves the cursor back one entry and returns a copy of it.
// At the oldest entry it is a no-op and ok is false.
func (h *History) Undo() (domain.Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return h.entries[0].Doc.Clone(), false
	}
	h.cursor--
	return h.entries[h.cursor].Doc.Clone(), true
}

// Redo moves the cursor forward one entry and returns a copy of it.
// At the newest entry it is a no-op and ok is false.
func (h *History) Redo() (domain.Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return h.entries[h.cursor].Doc.Clone(), false
	}
	h.cursor++
	return h.entries[h.cursor].Doc.Clone(), true
}

// Current returns a copy of the entry under the cursor.
func (h *History) Current() domain.Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor].Doc.Clone()
}

// Matches reports whether doc equals the entry under the cursor by value.
func (h *History) Matches(doc domain.Document) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor].Doc.Equal(doc)
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.entries)-1
}

// Reset discards all entries and starts over from initial.
func (h *History) Reset(initial domain.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []Snapshot{{Doc: initial.Clone(), TS: h.cfg.Now()}}
	h.cursor = 0
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (entries int, cursor int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries), h.cursor
}

func (h *History) enforceCapsLocked() {
	if h.cfg.MaxEntries <= 0 || len(h.entries) <= h.cfg.MaxEntries {
		return
	}
	// drop the oldest extras
	toDrop := len(h.entries) - h.cfg.MaxEntries
	h.entries = append([]Snapshot{}, h.entries[toDrop:]...)
	h.cursor -= toDrop
	if h.cursor < 0 {
		h.cursor = 0
	}
}
