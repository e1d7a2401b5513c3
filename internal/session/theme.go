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
	"log/slog"

	"gostickerplanner/internal/ai"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/style"
	"gostickerplanner/internal/telemetry"
)

// Style returns a copy of the current look.
func (s *Session) Style() style.Style {
	s.styleMu.Lock()
	defer s.styleMu.Unlock()
	st := s.style
	st.Palette = append([]string(nil), st.Palette...)
	st.MonthlyQuotes = append([]string(nil), st.MonthlyQuotes...)
	return st
}

// UpdateStyle applies fn to the current look.
func (s *Session) UpdateStyle(fn func(*style.Style)) {
	s.styleMu.Lock()
	defer s.styleMu.Unlock()
	fn(&s.style)
}

// Status is the last non-fatal message for the user, "" when there is none.
func (s *Session) Status() string {
	s.styleMu.Lock()
	defer s.styleMu.Unlock()
	return s.status
}

func (s *Session) ClearStatus() { s.setStatus("") }

func (s *Session) setStatus(msg string) {
	s.styleMu.Lock()
	s.status = msg
	s.styleMu.Unlock()
}

// Analyze derives palette, mood and quotes from the sketch sheet. Any failure
// falls back to a neutral theme and leaves a status message; editing is never affected.
func (s *Session) Analyze(ctx context.Context, image []byte, mime string) ai.Analysis {
	l := applog.WithOperation(s.log, "analyze")
	if s.analyzer == nil {
		return s.fallback(l, ai.ErrUnavailable)
	}
	a, err := s.analyzer.Analyze(ctx, image, mime)
	if err != nil {
		return s.fallback(l, err)
	}
	s.UpdateStyle(func(st *style.Style) { st.ApplyAnalysis(a, true) })
	s.ClearStatus()
	l.Info("theme analyzed", slog.String("mood", a.Mood))
	return a
}

func (s *Session) fallback(l *slog.Logger, err error) ai.Analysis {
	a := ai.FallbackAnalysis()
	s.UpdateStyle(func(st *style.Style) { st.ApplyAnalysis(a, false) })
	if errors.Is(err, ai.ErrUnavailable) {
		s.setStatus("AI analysis unavailable: no API key configured. Using a default theme.")
	} else {
		s.setStatus("AI analysis failed. Using a default theme.")
	}
	l.Warn("analysis failed, using fallback", slog.Any("err", err))
	s.sink.Event(telemetry.EventAnalysisFailed, nil)
	return a
}

// GenerateBackground asks for page artwork matching the current mood and palette.
// On failure the style is unchanged and a status message is set.
func (s *Session) GenerateBackground(ctx context.Context) error {
	l := applog.WithOperation(s.log, "background")
	if s.bg == nil {
		s.setStatus("Background generation unavailable: no API key configured.")
		return ai.ErrUnavailable
	}
	st := s.Style()
	img, err := s.bg.GenerateBackground(ctx, st.Mood, st.Palette)
	if err != nil {
		s.setStatus("Failed to generate background.")
		l.Warn("background generation failed", slog.Any("err", err))
		return err
	}
	s.UpdateStyle(func(st *style.Style) { st.Background = &img })
	s.ClearStatus()
	s.sink.Event(telemetry.EventBackgroundReady, nil)
	return nil
}
