/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package extract cuts rectangular stickers out of a scanned source image.
// The user draws in display coordinates; crops are taken at the source's
// natural resolution and kept only as encoded PNG bytes.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"gostickerplanner/internal/domain"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/vector"
)

// DefaultMinPx is the smallest display-space width and height that still counts as a selection.
const DefaultMinPx = 20

var (
	ErrTooSmall = errors.New("selection below minimum size")
	ErrNoSource = errors.New("no source image")
)

// Options configure an Extractor.
type Options struct {
	MinPx float64       // both sides must exceed this; 0 uses DefaultMinPx
	NewID func() string // defaults to uuid.NewString
}

// Extractor is the rectangle-drag selector over one source image at a time.
// Idle --press--> Drawing --move--> Drawing --release--> Idle.
type Extractor struct {
	opts Options
	log  *slog.Logger

	src     image.Image
	display vector.Size

	drawing bool
	start   vector.Pt
	rect    vector.Rect

	assets []domain.Asset
}

func New(opts Options) *Extractor {
	if opts.MinPx <= 0 {
		opts.MinPx = DefaultMinPx
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Extractor{opts: opts, log: applog.WithComponent("extract")}
}

// SetSource switches to a new source shown at displayW x displayH.
// The running list of produced assets starts over.
func (e *Extractor) SetSource(img image.Image, displayW, displayH float64) {
	e.src = img
	e.display = vector.Size{W: displayW, H: displayH}
	e.drawing = false
	e.rect = vector.Rect{}
	e.assets = nil
	if img != nil {
		b := img.Bounds()
		e.log.Debug("source set", slog.Int("natural_w", b.Dx()), slog.Int("natural_h", b.Dy()),
			slog.Float64("display_w", displayW), slog.Float64("display_h", displayH))
	}
}

// Resize updates the on-screen size of the current source without touching the list.
func (e *Extractor) Resize(displayW, displayH float64) {
	e.display = vector.Size{W: displayW, H: displayH}
}

// Press starts a selection at p, relative to the displayed image's top-left corner.
func (e *Extractor) Press(p vector.Pt) {
	e.drawing = true
	e.start = p
	e.rect = vector.Rect{X: p.X, Y: p.Y}
}

// Move extends the selection. It returns the normalized rectangle for the overlay.
func (e *Extractor) Move(p vector.Pt) (vector.Rect, bool) {
	if !e.drawing {
		return vector.Rect{}, false
	}
	e.rect = vector.RectFromPoints(e.start, p)
	return e.rect, true
}

// Selection returns the rectangle being drawn, if any.
func (e *Extractor) Selection() (vector.Rect, bool) { return e.rect, e.drawing }

// Release ends the selection. When it is large enough a new asset is appended
// to the running list and returned; accidental clicks return ok=false.
func (e *Extractor) Release() (domain.Asset, bool) {
	if !e.drawing {
		return domain.Asset{}, false
	}
	r := e.rect
	e.drawing = false
	e.rect = vector.Rect{}

	a, err := e.extract(r)
	if err != nil {
		if errors.Is(err, ErrTooSmall) {
			e.log.Debug("selection discarded", slog.Float64("w", r.W), slog.Float64("h", r.H))
		} else {
			e.log.Warn("extraction failed", slog.Any("err", err))
		}
		return domain.Asset{}, false
	}
	e.assets = append(e.assets, a)
	e.log.Debug("asset extracted", slog.String("id", a.ID), slog.Int("w", a.NaturalWidth), slog.Int("h", a.NaturalHeight))
	return a, true
}

func (e *Extractor) extract(r vector.Rect) (domain.Asset, error) {
	if e.src == nil {
		return domain.Asset{}, ErrNoSource
	}
	if !(r.W > e.opts.MinPx && r.H > e.opts.MinPx) {
		return domain.Asset{}, ErrTooSmall
	}
	crop, err := Crop(e.src, r, e.display)
	if err != nil {
		return domain.Asset{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return domain.Asset{}, fmt.Errorf("encode crop: %w", err)
	}
	b := crop.Bounds()
	// crop goes out of scope here; only the encoded bytes are retained
	return domain.Asset{
		ID:            e.opts.NewID(),
		Data:          buf.Bytes(),
		MIME:          "image/png",
		NaturalWidth:  b.Dx(),
		NaturalHeight: b.Dy(),
	}, nil
}

// Remove drops an asset from the running list.
func (e *Extractor) Remove(id string) bool {
	for i, a := range e.assets {
		if a.ID == id {
			e.assets = append(e.assets[:i:i], e.assets[i+1:]...)
			return true
		}
	}
	return false
}

// Assets returns a copy of the running list in creation order.
func (e *Extractor) Assets() []domain.Asset {
	return append([]domain.Asset(nil), e.assets...)
}

// Done hands off the running list and releases the source image.
func (e *Extractor) Done() []domain.Asset {
	out := e.Assets()
	e.src = nil
	e.assets = nil
	e.drawing = false
	return out
}

// SourceRect maps a display-space rectangle onto the source's natural pixel grid.
func SourceRect(r vector.Rect, display vector.Size, natural image.Rectangle) image.Rectangle {
	sx := float64(natural.Dx()) / display.W
	sy := float64(natural.Dy()) / display.H
	n := r.Scale(sx, sy)
	x0 := int(math.Round(n.X)) + natural.Min.X
	y0 := int(math.Round(n.Y)) + natural.Min.Y
	return image.Rect(x0, y0, x0+int(math.Round(n.W)), y0+int(math.Round(n.H)))
}

// Crop copies the display-space rectangle r out of src at source resolution.
// Parts of the rectangle outside the source stay transparent.
func Crop(src image.Image, r vector.Rect, display vector.Size) (*image.RGBA, error) {
	if display.W <= 0 || display.H <= 0 {
		return nil, fmt.Errorf("crop: invalid display size %vx%v", display.W, display.H)
	}
	sr := SourceRect(r, display, src.Bounds())
	if sr.Empty() {
		return nil, ErrTooSmall
	}
	out := image.NewRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	clip := sr.Intersect(src.Bounds())
	if !clip.Empty() {
		xdraw.Copy(out, clip.Min.Sub(sr.Min), src, clip, xdraw.Src, nil)
	}
	return out, nil
}
