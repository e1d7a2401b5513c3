/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gostickerplanner/internal/config"
)

func textResponse(text string) map[string]any {
	return map[string]any{"candidates": []any{
		map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
	}}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Defaults().AI
	cfg.BaseURL = srv.URL + "/"
	return NewClient(cfg, "k-123")
}

func TestAnalyzeSendsImageAndParsesResult(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotKey = r.URL.Path, r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(textResponse(`{"palette":["#fff","#112233"],"mood":"Whimsical","monthlyQuotes":["a","b","c"]}`))
	})
	a, err := c.Analyze(context.Background(), []byte{1, 2, 3}, "image/jpeg")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" || gotKey != "k-123" {
		t.Fatalf("unexpected request path=%q key=%q", gotPath, gotKey)
	}
	in := gotReq.Contents[0].Parts[0].InlineData
	if in == nil || in.MIMEType != "image/jpeg" || in.Data != base64.StdEncoding.EncodeToString([]byte{1, 2, 3}) {
		t.Fatalf("image not sent inline: %+v", in)
	}
	if gotReq.GenerationConfig == nil || gotReq.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Fatalf("json response not requested")
	}
	if a.Mood != "Whimsical" || len(a.Palette) != PaletteSize || len(a.MonthlyQuotes) != 12 || a.MonthlyQuotes[3] != "a" {
		t.Fatalf("unexpected analysis: %+v", a)
	}
}

func TestAnalyzeRejectsSchemaViolations(t *testing.T) {
	for _, body := range []string{
		`{"palette":["red"],"mood":"x","monthlyQuotes":["q"]}`,
		`{"palette":["#000"],"monthlyQuotes":["q"]}`,
		`{"palette":["#000"],"mood":"x","monthlyQuotes":[]}`,
		`not json`,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(textResponse(body))
		})
		if _, err := c.Analyze(context.Background(), nil, ""); !errors.Is(err, ErrInvalidResponse) {
			t.Fatalf("body %q: expected ErrInvalidResponse, got %v", body, err)
		}
	}
}

func TestMissingKeyIsUnavailable(t *testing.T) {
	c := NewClient(config.Defaults().AI, "")
	if _, err := c.Analyze(context.Background(), nil, ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := c.GenerateBackground(context.Background(), "Cozy", nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestServerErrorIsReported(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	_, err := c.Analyze(context.Background(), nil, "")
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestGenerateBackground(t *testing.T) {
	var prompt, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{
				map[string]any{"text": "here you go"},
				map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": base64.StdEncoding.EncodeToString([]byte("PNG"))}},
			}}},
		}})
	})
	img, err := c.GenerateBackground(context.Background(), "Cozy", []string{"#111111", "#222222"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(img.Data) != "PNG" || img.MIME != "image/png" {
		t.Fatalf("unexpected image: %+v", img)
	}
	if !strings.HasSuffix(path, "gemini-2.5-flash-image:generateContent") {
		t.Fatalf("image model not used: %s", path)
	}
	if !strings.Contains(prompt, "Cozy") || !strings.Contains(prompt, "#111111, #222222") {
		t.Fatalf("prompt missing mood or palette: %q", prompt)
	}
}

func TestGenerateBackgroundWithoutImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse("sorry"))
	})
	if _, err := c.GenerateBackground(context.Background(), "Cozy", nil); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestParseAnalysisFitsPaletteToFive(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`["#fff","#112233"]`, []string{"#fff", "#112233", "#000000", "#000000", "#000000"}},
		{`["#1","#2","#3","#4","#5","#6","#7"]`, nil},
		{`["#111","#222","#333","#444","#555","#666","#777"]`, []string{"#111", "#222", "#333", "#444", "#555"}},
	}
	for _, tc := range cases {
		a, err := ParseAnalysis([]byte(`{"palette":` + tc.in + `,"mood":"m","monthlyQuotes":["q"]}`))
		if tc.want == nil {
			if err == nil {
				t.Fatalf("palette %s should fail the hex pattern", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parse %s: %v", tc.in, err)
		}
		if len(a.Palette) != PaletteSize {
			t.Fatalf("palette %s: got %d colours", tc.in, len(a.Palette))
		}
		for i := range tc.want {
			if a.Palette[i] != tc.want[i] {
				t.Fatalf("palette %s: got %v, want %v", tc.in, a.Palette, tc.want)
			}
		}
	}
}

func TestFallbackAnalysis(t *testing.T) {
	f := FallbackAnalysis()
	if f.Mood != "Cozy" || len(f.Palette) != 5 || len(f.MonthlyQuotes) != 12 {
		t.Fatalf("unexpected fallback: %+v", f)
	}
	for _, q := range f.MonthlyQuotes {
		if q != "Make today amazing!" {
			t.Fatalf("unexpected quote %q", q)
		}
	}
}
