/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
)

// attribute keys shared by the handlers
const (
	keyComponent = "component"
	keyOp        = "op"
	keyPage      = "page"
	keySlot      = "slot"
	keyPlacement = "placement"
)

type editKey struct{}

// edit is the document address a record is about. slot is 0 for page-level edits.
type edit struct {
	page, slot  int
	placementID string
}

// WithEditTarget returns a context whose records carry page and slot.
// Only the *Context logging calls (DebugContext, InfoContext, ...) see it.
func WithEditTarget(ctx context.Context, page, slot int) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	e, _ := ctx.Value(editKey{}).(edit)
	e.page, e.slot = page, slot
	return context.WithValue(ctx, editKey{}, e)
}

// WithPlacement adds a placement id to the edit target already on ctx.
func WithPlacement(ctx context.Context, page, slot int, placementID string) context.Context {
	ctx = WithEditTarget(ctx, page, slot)
	e := ctx.Value(editKey{}).(edit)
	e.placementID = placementID
	return context.WithValue(ctx, editKey{}, e)
}

func editFrom(ctx context.Context) (edit, bool) {
	if ctx == nil {
		return edit{}, false
	}
	e, ok := ctx.Value(editKey{}).(edit)
	return e, ok
}

// editContext copies the edit target from the context into each record.
type editContext struct{ next slog.Handler }

func withEditContext(h slog.Handler) slog.Handler { return editContext{next: h} }

func (h editContext) Enabled(ctx context.Context, l slog.Level) bool { return h.next.Enabled(ctx, l) }

func (h editContext) Handle(ctx context.Context, r slog.Record) error {
	if e, ok := editFrom(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.Int(keyPage, e.page), slog.Int(keySlot, e.slot))
		if e.placementID != "" {
			r.AddAttrs(slog.String(keyPlacement, e.placementID))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h editContext) WithAttrs(a []slog.Attr) slog.Handler { return editContext{next: h.next.WithAttrs(a)} }
func (h editContext) WithGroup(n string) slog.Handler      { return editContext{next: h.next.WithGroup(n)} }
