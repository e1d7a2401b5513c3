/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package style holds the planner's look: palette, mood, monthly quotes, font,
// note colour, background artwork and the holiday country.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gostickerplanner/internal/ai"
)

// Palette roles by index.
const (
	RolePrimary    = 0 // title
	RoleAccent     = 1 // quotes
	RoleSoft       = 2
	RoleText       = 3 // text and day numbers
	RoleBackground = 4 // page background
)

type Style struct {
	Palette       []string
	Mood          string
	MonthlyQuotes []string
	Font          string
	NoteColor     string
	Country       string
	Background    *ai.Image

	// AIPalette remembers the palette from the last successful analysis so it can be re-applied.
	AIPalette []string
}

// Theme is a named preset palette.
type Theme struct {
	Name    string
	Palette []string
}

var Themes = []Theme{
	{"Sunset", []string{"#be123c", "#fb7185", "#ffe4e6", "#881337", "#fff1f2"}},
	{"Ocean", []string{"#0369a1", "#38bdf8", "#e0f2fe", "#0c4a6e", "#f0f9ff"}},
	{"Forest", []string{"#15803d", "#4ade80", "#dcfce7", "#14532d", "#f0fdf4"}},
	{"Lavender", []string{"#7c3aed", "#a78bfa", "#ede9fe", "#4c1d95", "#f5f3ff"}},
	{"Vintage", []string{"#b45309", "#f59e0b", "#fef3c7", "#78350f", "#fffbeb"}},
	{"Midnight", []string{"#334155", "#94a3b8", "#f1f5f9", "#0f172a", "#f8fafc"}},
	{"Classic", []string{"#1f2937", "#94a3b8", "#f3f4f6", "#000000", "#ffffff"}},
}

// Fonts offered for handwriting; Value is the family name.
var Fonts = []struct{ Name, Value string }{
	{"Default Hand", "Patrick Hand"},
	{"Playful", "Indie Flower"},
	{"Natural", "Caveat"},
	{"Marker", "Gloria Hallelujah"},
	{"Elegant", "Dancing Script"},
}

// Default is the look before any artwork has been analyzed.
func Default() Style {
	q := make([]string, ai.MonthsPerYear)
	for i := range q {
		q[i] = "Your creativity goes here!"
	}
	return Style{
		Palette:       []string{"#6366f1", "#818cf8", "#c7d2fe", "#1f2937", "#f8fafc"},
		Mood:          "Waiting for Art...",
		MonthlyQuotes: q,
		Font:          "Patrick Hand",
		Country:       "NONE",
	}
}

// ApplyAnalysis takes palette, mood and quotes from a, keeping the chosen font.
func (s *Style) ApplyAnalysis(a ai.Analysis, fromAI bool) {
	s.Palette = append([]string(nil), a.Palette...)
	s.Mood = a.Mood
	s.MonthlyQuotes = append([]string(nil), a.MonthlyQuotes...)
	if fromAI {
		s.AIPalette = append([]string(nil), a.Palette...)
	}
}

// ApplyTheme replaces the palette.
func (s *Style) ApplyTheme(palette []string) {
	s.Palette = append([]string(nil), palette...)
}

// SetPaletteColor sets entry i, padding with black when the palette is shorter.
func (s *Style) SetPaletteColor(i int, hex string) {
	if i < 0 {
		return
	}
	p := append([]string(nil), s.Palette...)
	for len(p) <= i {
		p = append(p, "#000000")
	}
	p[i] = hex
	s.Palette = p
}

// Color returns palette entry role, or def when missing or unparsable.
func (s Style) Color(role int, def color.RGBA) color.RGBA {
	if role < 0 || role >= len(s.Palette) {
		return def
	}
	c, err := ParseHex(s.Palette[role])
	if err != nil {
		return def
	}
	return c
}

// Quote returns the quote for month idx, or "" when out of range.
func (s Style) Quote(idx int) string {
	if idx < 0 || idx >= len(s.MonthlyQuotes) {
		return ""
	}
	return s.MonthlyQuotes[idx]
}

// ParseHex accepts #rgb and #rrggbb.
func ParseHex(h string) (color.RGBA, error) {
	h = strings.TrimPrefix(strings.TrimSpace(h), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", h, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
