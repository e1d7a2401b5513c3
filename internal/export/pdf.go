/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"gostickerplanner/internal/calendar"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/style"
	"gostickerplanner/internal/vector"
)

// PDFOptions controls PDF export behavior.
// Units are points and the page origin is top-left. Text uses the built-in
// Helvetica so nothing needs embedding; sticker images are embedded as PNG.
type PDFOptions struct {
	Title  string
	Months []int // zero-based; all twelve when empty
}

// ExportPDF writes the selected months as one multi-page A4 landscape PDF.
func ExportPDF(src Source, w io.Writer, opt PDFOptions) error {
	l := applog.WithOperation(applog.WithComponent("export"), "pdf")
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: PageSize.W, Ht: PageSize.H},
	})
	title := opt.Title
	if title == "" {
		title = fmt.Sprintf("Planner %d", src.Year)
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Go Sticker Planner", false)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	cache := newImageCache(src.Assets)
	registered := map[string]bool{}
	if err := registerBackground(pdf, src.Style); err != nil {
		l.Warn("background skipped", slog.Any("err", err))
	}

	pal := paletteOf(src.Style)
	noteCol := pal.Text
	if c, err := style.ParseHex(src.Style.NoteColor); err == nil {
		noteCol = c
	}

	pages := 0
	for _, month := range monthIndexes(opt.Months) {
		if month < 0 || month > 11 {
			continue
		}
		pg := src.page(month)
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: PageSize.W, Ht: PageSize.H})
		pages++

		setFillColor(pdf, pal.Background)
		pdf.Rect(0, 0, PageSize.W, PageSize.H, "F")
		if pdf.GetImageInfo(backgroundName) != nil {
			pdf.ImageOptions(backgroundName, 0, 0, PageSize.W, PageSize.H, false, gofpdf.ImageOptions{}, 0, "")
		}

		// Header
		t := pg.Layout.Title
		setTextColor(pdf, pal.Title)
		pdf.SetFont("Helvetica", "B", t.H*0.45)
		pdf.Text(t.X, t.Y+t.H*0.4, tr(pg.Month.Name))
		setTextColor(pdf, pal.Text)
		pdf.SetFont("Helvetica", "", t.H*0.16)
		pdf.Text(t.X, t.Y+t.H*0.62, strconv.Itoa(pg.Month.Year))
		setTextColor(pdf, pal.Accent)
		pdf.SetFont("Helvetica", "I", t.H*0.13)
		pdf.Text(t.X, t.Y+t.H*0.82, tr(src.Style.Mood))

		q := pg.Layout.Quote
		pdf.SetFont("Helvetica", "I", q.H*0.16)
		pdf.SetXY(q.X, q.Y)
		pdf.MultiCell(q.W, q.H*0.2, tr(pg.Quote), "", "R", false)

		setTextColor(pdf, pal.Text)
		for i, r := range pg.Layout.Weekdays {
			pdf.SetFont("Helvetica", "B", r.H*0.6)
			pdf.Text(r.X+2, r.Y+r.H*0.75, strings.ToUpper(calendar.Weekdays[i]))
		}

		// Day cells
		setDrawColor(pdf, pal.Grid)
		pdf.SetLineWidth(0.5)
		for day := 1; day <= pg.Month.Days; day++ {
			c := pg.Layout.Cells[day]
			pdf.SetAlpha(0.65, "Normal")
			pdf.SetFillColor(255, 255, 255)
			pdf.Rect(c.X, c.Y, c.W, c.H, "F")
			pdf.SetAlpha(1, "Normal")
			pdf.Rect(c.X, c.Y, c.W, c.H, "D")

			numH := c.H * 0.16
			pad := numH * 0.3
			setTextColor(pdf, pal.Text)
			pdf.SetFont("Helvetica", "B", numH)
			pdf.Text(c.X+pad, c.Y+pad+numH*0.8, strconv.Itoa(day))
			if h := pg.Holidays[day]; h != "" {
				setTextColor(pdf, pal.Accent)
				pdf.SetFont("Helvetica", "", numH*0.55)
				pdf.Text(c.X+pad, c.Y+pad+numH*1.7, tr(fitPDF(pdf, h, c.W-2*pad)))
			}
			if src.DailyNotes {
				if s, ok := src.Doc.Slot(month, day); ok && s.Note != "" {
					setTextColor(pdf, noteCol)
					pdf.SetFont("Helvetica", "", numH*0.55)
					pdf.Text(c.X+pad, c.Y+c.H-pad, tr(fitPDF(pdf, s.Note, c.W-2*pad)))
				}
			}
		}

		// Stickers
		for day := 1; day <= pg.Month.Days; day++ {
			s, ok := src.Doc.Slot(month, day)
			if !ok {
				continue
			}
			cell := pg.Layout.Cells[day]
			for _, p := range s.Placements {
				img, ok := cache.get(p.AssetID)
				if !ok {
					continue
				}
				if !registered[p.AssetID] {
					var buf bytes.Buffer
					if err := png.Encode(&buf, img); err != nil {
						return fmt.Errorf("encode sticker %s: %w", p.AssetID, err)
					}
					pdf.RegisterImageOptionsReader(p.AssetID, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
					registered[p.AssetID] = true
				}
				b := img.Bounds()
				size := StickerSize(vector.Size{W: cell.W, H: cell.H}, b.Dx(), b.Dy())
				cx := cell.X + cell.W*p.X/100
				cy := cell.Y + cell.H*p.Y/100
				pdf.TransformBegin()
				// gofpdf rotates counter-clockwise; poses rotate clockwise on a y-down page.
				pdf.TransformRotate(-p.Rotation, cx, cy)
				pdf.TransformScale(p.Scale*100, p.Scale*100, cx, cy)
				pdf.ImageOptions(p.AssetID, cx-size.W/2, cy-size.H/2, size.W, size.H, false,
					gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}, 0, "")
				pdf.TransformEnd()
			}
		}

		// Monthly notes
		n := pg.Layout.Notes
		setDrawColor(pdf, pal.Grid)
		pdf.Rect(n.X, n.Y, n.W, n.H, "D")
		setTextColor(pdf, pal.Title)
		pdf.SetFont("Helvetica", "B", n.H*0.16)
		pdf.Text(n.X+4, n.Y+n.H*0.2, "NOTES")
		setTextColor(pdf, noteCol)
		pdf.SetFont("Helvetica", "", n.H*0.13)
		pdf.SetXY(n.X+4, n.Y+n.H*0.28)
		pdf.MultiCell(n.W-8, n.H*0.16, tr(pg.Note), "", "L", false)
	}
	if pages == 0 {
		return fmt.Errorf("no months to export")
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	l.Debug("pdf written", slog.Int("pages", pages))
	return nil
}

// ExportPDFFile writes the PDF to outPath, creating parent directories.
func ExportPDFFile(src Source, outPath string, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := ExportPDF(src, f, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

const backgroundName = "page-background"

func registerBackground(pdf *gofpdf.Fpdf, st style.Style) error {
	bg, err := decodeBackground(st)
	if err != nil || bg == nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, bg); err != nil {
		return fmt.Errorf("encode background: %w", err)
	}
	pdf.RegisterImageOptionsReader(backgroundName, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	return nil
}

// fitPDF shortens s with a trailing ".." until it fits maxW at the current font.
func fitPDF(pdf *gofpdf.Fpdf, s string, maxW float64) string {
	if pdf.GetStringWidth(s) <= maxW {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if t := string(r) + ".."; pdf.GetStringWidth(t) <= maxW {
			return t
		}
	}
	return ""
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
