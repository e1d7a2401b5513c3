/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"gostickerplanner/internal/calendar"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/style"
	"gostickerplanner/internal/vector"
)

// PNGOptions controls PNG export behavior.
// - DPI: output resolution, 150 when zero
// - Months: zero-based month indexes, all twelve when empty
type PNGOptions struct {
	DPI    int
	Months []int
}

func (o PNGOptions) dpi() int {
	if o.DPI > 0 {
		return o.DPI
	}
	return 150
}

// RenderMonth rasterizes one month page.
func RenderMonth(src Source, month int, opt PNGOptions) (*image.RGBA, error) {
	bg, err := decodeBackground(src.Style)
	if err != nil {
		return nil, err
	}
	return renderMonth(src, month, opt.dpi(), newImageCache(src.Assets), bg), nil
}

// WritePNG encodes a rendered page.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportMonthsPNG writes one PNG per month into outDir, named <year>-<nn>-<name>.png,
// and returns the written paths.
func ExportMonthsPNG(src Source, outDir string, opt PNGOptions) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "png")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	bg, err := decodeBackground(src.Style)
	if err != nil {
		return nil, err
	}
	cache := newImageCache(src.Assets)
	var out []string
	for _, m := range monthIndexes(opt.Months) {
		if m < 0 || m > 11 {
			continue
		}
		img := renderMonth(src, m, opt.dpi(), cache, bg)
		name := filepath.Join(outDir, monthFileName(src.Year, m, "png"))
		if err := writePNGFile(name, img); err != nil {
			return out, err
		}
		l.Debug("page written", slog.String("path", name), slog.Int("month", m))
		out = append(out, name)
	}
	return out, nil
}

func writePNGFile(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func monthFileName(year, month int, ext string) string {
	m := strings.ToLower(calendar.MonthOf(year, month).Name)
	return fmt.Sprintf("%d-%02d-%s.%s", year, month+1, m, ext)
}

func renderMonth(src Source, month, dpi int, cache *imageCache, bg image.Image) *image.RGBA {
	k := float64(dpi) / 72.0
	pixW := int(math.Round(PageSize.W * k))
	pixH := int(math.Round(PageSize.H * k))
	pg := src.page(month)
	pal := paletteOf(src.Style)
	noteCol := pal.Text
	if c, err := style.ParseHex(src.Style.NoteColor); err == nil {
		noteCol = c
	}

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: pal.Background}, image.Point{}, draw.Src)
	if bg != nil {
		xdraw.CatmullRom.Scale(img, img.Bounds(), bg, bg.Bounds(), xdraw.Over, nil)
	}
	px := func(r vector.Rect) image.Rectangle {
		s := r.Scale(k, k)
		return image.Rect(int(math.Round(s.X)), int(math.Round(s.Y)), int(math.Round(s.X+s.W)), int(math.Round(s.Y+s.H)))
	}

	// Header
	t := px(pg.Layout.Title)
	titleH := float64(t.Dy()) * 0.45
	drawText(img, pg.Month.Name, t.Min.X, t.Min.Y, titleH, pal.Title)
	drawText(img, strconv.Itoa(pg.Month.Year), t.Min.X, t.Min.Y+int(titleH*1.15), titleH*0.4, pal.Text)
	drawText(img, src.Style.Mood, t.Min.X, t.Min.Y+int(titleH*1.7), titleH*0.3, pal.Accent)
	q := px(pg.Layout.Quote)
	drawWrapped(img, pg.Quote, q, float64(q.Dy())*0.22, pal.Accent)

	for i, r := range pg.Layout.Weekdays {
		wr := px(r)
		drawText(img, strings.ToUpper(calendar.Weekdays[i]), wr.Min.X+2, wr.Min.Y+2, float64(wr.Dy())*0.6, pal.Text)
	}

	// Day cells
	cellFill := color.NRGBA{R: 255, G: 255, B: 255, A: 170}
	for day := 1; day <= pg.Month.Days; day++ {
		c := px(pg.Layout.Cells[day])
		draw.Draw(img, c, &image.Uniform{C: cellFill}, image.Point{}, draw.Over)
		strokeRect(img, c.Min.X, c.Min.Y, c.Max.X-1, c.Max.Y-1, pal.Grid)
		numH := float64(c.Dy()) * 0.16
		pad := int(numH * 0.3)
		drawText(img, strconv.Itoa(day), c.Min.X+pad, c.Min.Y+pad, numH, pal.Text)
		if h := pg.Holidays[day]; h != "" {
			hr := image.Rect(c.Min.X+pad, c.Min.Y+pad+int(numH*1.2), c.Max.X-pad, c.Min.Y+pad+int(numH*2))
			drawText(img, fitText(h, hr.Dx(), numH*0.55), hr.Min.X, hr.Min.Y, numH*0.55, pal.Accent)
		}
		if src.DailyNotes {
			if s, ok := src.Doc.Slot(month, day); ok && s.Note != "" {
				nr := image.Rect(c.Min.X+pad, c.Max.Y-int(numH*1.6), c.Max.X-pad, c.Max.Y-pad)
				drawWrapped(img, s.Note, nr, numH*0.55, noteCol)
			}
		}
	}

	// Stickers go on top of every cell so they may overhang their neighbours.
	for day := 1; day <= pg.Month.Days; day++ {
		s, ok := src.Doc.Slot(month, day)
		if !ok {
			continue
		}
		cell := pg.Layout.Cells[day].Scale(k, k)
		for _, p := range s.Placements {
			a, ok := cache.get(p.AssetID)
			if !ok {
				continue
			}
			b := a.Bounds()
			m := PlacementTransform(p.Pose, cell, b.Dx(), b.Dy()).Mul(vector.Translate(float64(-b.Min.X), float64(-b.Min.Y)))
			aff := f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
			xdraw.CatmullRom.Transform(img, aff, a, b, xdraw.Over, nil)
		}
	}

	// Monthly notes
	n := px(pg.Layout.Notes)
	strokeRect(img, n.Min.X, n.Min.Y, n.Max.X-1, n.Max.Y-1, pal.Grid)
	labelH := float64(n.Dy()) * 0.18
	drawText(img, "NOTES", n.Min.X+4, n.Min.Y+4, labelH, pal.Title)
	body := image.Rect(n.Min.X+4, n.Min.Y+4+int(labelH*1.3), n.Max.X-4, n.Max.Y-4)
	drawWrapped(img, pg.Note, body, labelH*0.8, noteCol)
	return img
}

// drawText renders s with its top-left at (x, y) and a line height of h pixels.
// The bitmap face is drawn at its native size and scaled.
func drawText(dst *image.RGBA, s string, x, y int, h float64, col color.RGBA) {
	if s == "" || h < 1 {
		return
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	if w <= 0 {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d := font.Drawer{Dst: tmp, Src: image.NewUniform(col), Face: face, Dot: fixed.P(0, face.Ascent)}
	d.DrawString(s)
	k := h / float64(face.Height)
	dr := image.Rect(x, y, x+int(math.Round(float64(w)*k)), y+int(math.Round(h)))
	xdraw.ApproxBiLinear.Scale(dst, dr, tmp, tmp.Bounds(), xdraw.Over, nil)
}

// textWidth is the scaled width of s at line height h.
func textWidth(s string, h float64) int {
	face := basicfont.Face7x13
	return int(math.Round(float64(font.MeasureString(face, s).Ceil()) * h / float64(face.Height)))
}

// fitText shortens s with a trailing ".." until it fits maxW.
func fitText(s string, maxW int, h float64) string {
	if textWidth(s, h) <= maxW {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if t := string(r) + ".."; textWidth(t, h) <= maxW {
			return t
		}
	}
	return ""
}

// drawWrapped flows s into r line by line, dropping what does not fit.
func drawWrapped(dst *image.RGBA, s string, r image.Rectangle, h float64, col color.RGBA) {
	y := r.Min.Y
	for _, line := range wrap(s, r.Dx(), h) {
		if y+int(h) > r.Max.Y {
			return
		}
		drawText(dst, line, r.Min.X, y, h, col)
		y += int(math.Ceil(h * 1.2))
	}
}

func wrap(s string, maxW int, h float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		cur := ""
		for _, w := range strings.Fields(para) {
			next := w
			if cur != "" {
				next = cur + " " + w
			}
			if cur != "" && textWidth(next, h) > maxW {
				lines = append(lines, cur)
				next = w
			}
			cur = next
		}
		lines = append(lines, fitText(cur, maxW, h))
	}
	return lines
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
