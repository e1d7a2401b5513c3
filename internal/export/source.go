/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders planner month pages to PNG and PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"gostickerplanner/internal/calendar"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/extract"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/style"
)

// AssetResolver looks up the image behind a placement.
type AssetResolver interface {
	Resolve(id string) (domain.Asset, bool)
}

// Source is everything a renderer reads. Callers deselect before exporting;
// the renderers never draw selection chrome.
type Source struct {
	Doc        domain.Document
	Style      style.Style
	Assets     AssetResolver
	Year       int
	DailyNotes bool
}

// monthPage is the resolved content of one page.
type monthPage struct {
	Month    calendar.Month
	Layout   Layout
	Holidays map[int]string
	Quote    string
	Note     string
}

func (s Source) page(month int) monthPage {
	m := calendar.MonthOf(s.Year, month)
	return monthPage{
		Month:    m,
		Layout:   LayoutMonth(m, PageSize),
		Holidays: calendar.HolidaysIn(s.Style.Country, s.Year, month),
		Quote:    s.Style.Quote(month),
		Note:     s.Doc.Page(month).Note,
	}
}

// palette resolves the colours a page is drawn with.
type palette struct {
	Title, Accent, Grid, Text, Background color.RGBA
}

func paletteOf(st style.Style) palette {
	return palette{
		Title:      st.Color(style.RolePrimary, color.RGBA{R: 99, G: 102, B: 241, A: 255}),
		Accent:     st.Color(style.RoleAccent, color.RGBA{R: 129, G: 140, B: 248, A: 255}),
		Grid:       st.Color(style.RoleSoft, color.RGBA{R: 199, G: 210, B: 254, A: 255}),
		Text:       st.Color(style.RoleText, color.RGBA{R: 31, G: 41, B: 55, A: 255}),
		Background: st.Color(style.RoleBackground, color.RGBA{R: 248, G: 250, B: 252, A: 255}),
	}
}

// imageCache decodes each asset once per export run.
type imageCache struct {
	assets AssetResolver
	images map[string]image.Image
	log    *slog.Logger
}

func newImageCache(assets AssetResolver) *imageCache {
	return &imageCache{assets: assets, images: map[string]image.Image{}, log: applog.WithComponent("export")}
}

// get returns the decoded asset. Dangling or undecodable assets report false
// and the placement is skipped.
func (c *imageCache) get(id string) (image.Image, bool) {
	if img, ok := c.images[id]; ok {
		return img, img != nil
	}
	var img image.Image
	if c.assets != nil {
		if a, ok := c.assets.Resolve(id); ok {
			decoded, _, err := extract.Decode(bytes.NewReader(a.Data))
			if err != nil {
				c.log.Warn("skipping undecodable asset", slog.String("asset", id), slog.Any("err", err))
			} else {
				img = decoded
			}
		} else {
			c.log.Debug("skipping dangling placement", slog.String("asset", id))
		}
	}
	c.images[id] = img
	return img, img != nil
}

func decodeBackground(st style.Style) (image.Image, error) {
	if st.Background == nil || len(st.Background.Data) == 0 {
		return nil, nil
	}
	img, _, err := extract.Decode(bytes.NewReader(st.Background.Data))
	if err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	return img, nil
}

func monthIndexes(specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, 12)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}
