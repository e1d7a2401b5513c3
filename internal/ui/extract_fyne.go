//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"image"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/extract"
	"gostickerplanner/internal/session"
	"gostickerplanner/internal/vector"
)

// extractCanvas shows the source image at display size and lets the user drag out rectangles.
type extractCanvas struct {
	widget.BaseWidget
	ex       *extract.Extractor
	src      image.Image
	w, h     float32 // current display size of the source
	pressed  bool
	OnAdded  func(domain.Asset)
	selRect  *canvas.Rectangle
	renderer *extractCanvasRenderer
}

func newExtractCanvas(ex *extract.Extractor, src image.Image, w, h float64) *extractCanvas {
	c := &extractCanvas{ex: ex, src: src, w: float32(w), h: float32(h)}
	c.ExtendBaseWidget(c)
	return c
}

func (c *extractCanvas) CreateRenderer() fyne.WidgetRenderer {
	img := canvas.NewImageFromImage(c.src)
	img.FillMode = canvas.ImageFillStretch
	sel := canvas.NewRectangle(color.RGBA{R: 99, G: 102, B: 241, A: 40})
	sel.StrokeColor = color.RGBA{R: 99, G: 102, B: 241, A: 255}
	sel.StrokeWidth = 2
	sel.Hide()
	c.selRect = sel
	c.renderer = &extractCanvasRenderer{c: c, img: img, sel: sel, objects: []fyne.CanvasObject{img, sel}}
	return c.renderer
}

func (c *extractCanvas) Dragged(e *fyne.DragEvent) {
	cur := vector.Pt{X: float64(e.Position.X), Y: float64(e.Position.Y)}
	if !c.pressed {
		c.pressed = true
		c.ex.Press(vector.Pt{X: cur.X - float64(e.Dragged.DX), Y: cur.Y - float64(e.Dragged.DY)})
	}
	c.ex.Move(cur)
	c.Refresh()
}

func (c *extractCanvas) DragEnd() {
	c.pressed = false
	if a, ok := c.ex.Release(); ok && c.OnAdded != nil {
		c.OnAdded(a)
	}
	c.Refresh()
}

type extractCanvasRenderer struct {
	c       *extractCanvas
	img     *canvas.Image
	sel     *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *extractCanvasRenderer) Destroy()                     {}
func (r *extractCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *extractCanvasRenderer) MinSize() fyne.Size {
	w, h := extract.FitDisplay(r.c.src.Bounds(), 320, 240)
	return fyne.NewSize(float32(w), float32(h))
}
func (r *extractCanvasRenderer) Refresh()                     { r.Layout(r.c.Size()); canvas.Refresh(r.c) }

// Layout fits the source into size and keeps the extractor's display size in step,
// except while a selection is being drawn.
func (r *extractCanvasRenderer) Layout(size fyne.Size) {
	if !r.c.pressed && size.Width > 0 && size.Height > 0 {
		w, h := extract.FitDisplay(r.c.src.Bounds(), float64(size.Width), float64(size.Height))
		if w > 0 && h > 0 && (float32(w) != r.c.w || float32(h) != r.c.h) {
			r.c.w, r.c.h = float32(w), float32(h)
			r.c.ex.Resize(w, h)
		}
	}
	r.img.Move(fyne.NewPos(0, 0))
	r.img.Resize(fyne.NewSize(r.c.w, r.c.h))
	if s, ok := r.c.ex.Selection(); ok {
		r.sel.Move(fyne.NewPos(float32(s.X), float32(s.Y)))
		r.sel.Resize(fyne.NewSize(float32(s.W), float32(s.H)))
		r.sel.Show()
	} else {
		r.sel.Hide()
	}
}

// showExtractWindow opens the extraction tool for src. The catalog is only
// touched when the user presses Done.
func showExtractWindow(a fyne.App, sess *session.Session, src image.Image, addMore bool, onDone func([]domain.Asset)) {
	w := a.NewWindow("Extract stickers")
	dw, dh := extract.FitDisplay(src.Bounds(), 900, 640)
	ex := sess.BeginExtraction(src, dw, dh, addMore)
	ec := newExtractCanvas(ex, src, dw, dh)

	thumbs := map[string]image.Image{}
	var list *widget.List
	list = widget.NewList(
		func() int { return len(ex.Assets()) },
		func() fyne.CanvasObject {
			img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(64, 64))
			return container.NewBorder(nil, nil, img, widget.NewButton("Remove", nil))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			assets := ex.Assets()
			if int(i) >= len(assets) {
				return
			}
			as := assets[i]
			row := o.(*fyne.Container)
			for _, obj := range row.Objects {
				switch v := obj.(type) {
				case *canvas.Image:
					v.Image = thumbnail(thumbs, as)
					v.Refresh()
				case *widget.Button:
					v.OnTapped = func() {
						ex.Remove(as.ID)
						delete(thumbs, as.ID)
						list.Refresh()
					}
				}
			}
		},
	)
	count := widget.NewLabel("Drag a rectangle around each drawing.")
	ec.OnAdded = func(domain.Asset) {
		list.Refresh()
		count.SetText(pluralStickers(len(ex.Assets())))
	}

	closed := false
	done := widget.NewButton("Done", func() {
		closed = true
		assets := sess.FinishExtraction()
		w.Close()
		if onDone != nil {
			onDone(assets)
		}
	})
	done.Importance = widget.HighImportance
	cancel := widget.NewButton("Cancel", func() {
		closed = true
		sess.CancelExtraction()
		w.Close()
	})
	w.SetOnClosed(func() {
		if !closed {
			sess.CancelExtraction()
		}
	})

	side := container.NewBorder(count, container.NewHBox(cancel, done), nil, nil, list)
	split := container.NewHSplit(ec, side)
	split.SetOffset(0.75)
	w.SetContent(split)
	w.Resize(fyne.NewSize(float32(dw)+320, float32(dh)+40))
	w.Show()
}

func pluralStickers(n int) string {
	if n == 1 {
		return "1 sticker extracted"
	}
	return strconv.Itoa(n) + " stickers extracted"
}

// thumbnail decodes an asset once for list display.
func thumbnail(cache map[string]image.Image, a domain.Asset) image.Image {
	if img, ok := cache[a.ID]; ok {
		return img
	}
	img, _, err := extract.Decode(bytes.NewReader(a.Data))
	if err != nil {
		img = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	cache[a.ID] = img
	return img
}
