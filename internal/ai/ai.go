/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ai talks to a generative model for theme analysis of a sketch sheet
// and for background artwork. Failures are never fatal to the editor: callers
// fall back to FallbackAnalysis and keep working.
package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

var (
	ErrUnavailable     = errors.New("ai: no API key configured")
	ErrInvalidResponse = errors.New("ai: invalid response")
)

// MonthsPerYear is the number of quotes an analysis carries.
const MonthsPerYear = 12

// PaletteSize is the number of colours an analysis carries.
const PaletteSize = 5

// Analysis is the structured theme derived from the user's drawings.
type Analysis struct {
	Palette       []string `json:"palette"`
	Mood          string   `json:"mood"`
	MonthlyQuotes []string `json:"monthlyQuotes"`
}

// Image is an encoded picture returned by the model.
type Image struct {
	Data []byte
	MIME string
}

// Analyzer derives a theme from an encoded image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mime string) (Analysis, error)
}

// BackgroundGenerator produces page artwork for a mood and palette.
type BackgroundGenerator interface {
	GenerateBackground(ctx context.Context, mood string, palette []string) (Image, error)
}

// FallbackAnalysis is used whenever analysis is unavailable or fails.
func FallbackAnalysis() Analysis {
	q := make([]string, MonthsPerYear)
	for i := range q {
		q[i] = "Make today amazing!"
	}
	return Analysis{
		Palette:       []string{"#F3F4F6", "#E5E7EB", "#9CA3AF", "#4B5563", "#1F2937"},
		Mood:          "Cozy",
		MonthlyQuotes: q,
	}
}

//go:embed analysis.schema.json
var analysisSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(analysisSchema)

// ParseAnalysis validates raw JSON against the analysis schema and normalizes it
// to exactly five colours and twelve quotes.
func ParseAnalysis(raw []byte) (Analysis, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Analysis{}, fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(msgs, "; "))
	}
	var a Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	a.Palette = fitPalette(a.Palette)
	a.MonthlyQuotes = fitQuotes(a.MonthlyQuotes)
	return a, nil
}

// fitPalette truncates to PaletteSize colours, padding short palettes with black.
func fitPalette(p []string) []string {
	out := make([]string, PaletteSize)
	for i := range out {
		if i < len(p) {
			out[i] = p[i]
		} else {
			out[i] = "#000000"
		}
	}
	return out
}

// fitQuotes truncates or cycles quotes to one per month.
func fitQuotes(q []string) []string {
	out := make([]string, MonthsPerYear)
	for i := range out {
		out[i] = q[i%len(q)]
	}
	return out
}
