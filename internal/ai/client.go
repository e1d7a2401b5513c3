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
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gostickerplanner/internal/config"
	applog "gostickerplanner/internal/log"
)

// Client is a minimal HTTP client for the Gemini generateContent endpoint.
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	ImageModel string
	client     *http.Client
	log        *slog.Logger
}

// NewClient creates a client from the AI config section. baseURL may include a trailing slash.
func NewClient(cfg config.AIConfig, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:     apiKey,
		Model:      cfg.Model,
		ImageModel: cfg.ImageModel,
		client:     &http.Client{Timeout: cfg.Timeout()},
		log:        applog.WithComponent("ai"),
	}
}

// wire types for generateContent
type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

const analyzePrompt = `These are hand-drawn sketches that will decorate a printable yearly planner.
Return JSON with:
- palette: 5 hex colors that suit the drawings (backgrounds, accents, text)
- mood: one word describing the drawings, for example Whimsical, Cozy or Energetic
- monthlyQuotes: 12 short motivational quotes, one per month, themed after the drawings, under 15 words each`

// responseSchema mirrors analysis.schema.json in the OpenAPI subset the model accepts.
var responseSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "palette": {"type": "ARRAY", "items": {"type": "STRING"}},
    "mood": {"type": "STRING"},
    "monthlyQuotes": {"type": "ARRAY", "items": {"type": "STRING"}}
  },
  "required": ["palette", "mood", "monthlyQuotes"]
}`)

// Analyze sends the image and returns a validated theme.
func (c *Client) Analyze(ctx context.Context, image []byte, mime string) (Analysis, error) {
	if mime == "" {
		mime = "image/png"
	}
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(image)}},
			{Text: analyzePrompt},
		}}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json", ResponseSchema: responseSchema},
	}
	start := time.Now()
	var resp generateResponse
	if err := c.generate(ctx, c.Model, req, &resp); err != nil {
		return Analysis{}, err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text == "" {
				continue
			}
			a, err := ParseAnalysis([]byte(p.Text))
			if err != nil {
				return Analysis{}, err
			}
			c.log.Debug("analysis done", slog.String("mood", a.Mood), slog.Duration("took", time.Since(start)))
			return a, nil
		}
	}
	return Analysis{}, fmt.Errorf("%w: no text part", ErrInvalidResponse)
}

// GenerateBackground asks the image model for light page artwork.
func (c *Client) GenerateBackground(ctx context.Context, mood string, palette []string) (Image, error) {
	prompt := fmt.Sprintf(`A subtle background texture for a printable planner page.
Mood: %s. Colors: %s.
Light, pastel and high-key so text stays readable. Soft watercolor, paper grain or gentle doodles.
Keep the middle mostly empty. No text and no grid lines.`, mood, strings.Join(palette, ", "))
	req := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	var resp generateResponse
	if err := c.generate(ctx, c.ImageModel, req, &resp); err != nil {
		return Image{}, err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return Image{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
			return Image{Data: data, MIME: p.InlineData.MIMEType}, nil
		}
	}
	return Image{}, fmt.Errorf("%w: no image generated", ErrInvalidResponse)
}

func (c *Client) generate(ctx context.Context, model string, body generateRequest, dest any) error {
	if c.APIKey == "" {
		return ErrUnavailable
	}
	u, err := url.Parse(c.BaseURL + "/v1beta/models/" + url.PathEscape(model) + ":generateContent")
	if err != nil {
		return err
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ai %s: %w", model, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ai %s: %s: %s", model, resp.Status, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
