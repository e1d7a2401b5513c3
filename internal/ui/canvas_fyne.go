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
	"image"
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gostickerplanner/internal/export"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/session"
	"gostickerplanner/internal/transform"
	"gostickerplanner/internal/vector"
)

// PlannerCanvas shows the current month page and routes pointer input into the session.
// The page itself is rasterized by the export renderer; selection chrome is drawn on top.
type PlannerCanvas struct {
	widget.BaseWidget
	sess *session.Session
	log  *slog.Logger

	// SelectedDay is the day cell last clicked without placing, 0 when none.
	SelectedDay int
	// OnChanged runs after anything that may change history, focus or the page.
	OnChanged func()
	// OnDaySelected runs when an empty part of a day cell is clicked.
	OnDaySelected func(day int)
}

func NewPlannerCanvas(sess *session.Session) *PlannerCanvas {
	pc := &PlannerCanvas{sess: sess, log: applog.WithComponent("ui")}
	pc.ExtendBaseWidget(pc)
	return pc
}

func (p *PlannerCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 228, G: 228, B: 235, A: 255})
	page := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	page.FillMode = canvas.ImageFillStretch
	page.ScaleMode = canvas.ImageScaleFastest

	day := canvas.NewRectangle(color.RGBA{A: 0})
	day.StrokeColor = color.RGBA{R: 99, G: 102, B: 241, A: 200}
	day.StrokeWidth = 2
	day.Hide()

	outline := make([]*canvas.Line, 4)
	for i := range outline {
		outline[i] = canvas.NewLine(color.RGBA{R: 99, G: 102, B: 241, A: 255})
		outline[i].StrokeWidth = 2
		outline[i].Hide()
	}
	stem := canvas.NewLine(color.RGBA{R: 99, G: 102, B: 241, A: 255})
	stem.StrokeWidth = 1
	stem.Hide()
	resize := canvas.NewCircle(color.White)
	resize.StrokeColor = color.RGBA{R: 99, G: 102, B: 241, A: 255}
	resize.StrokeWidth = 1
	resize.Hide()
	rot := canvas.NewCircle(color.White)
	rot.StrokeColor = color.RGBA{R: 99, G: 102, B: 241, A: 255}
	rot.StrokeWidth = 1
	rot.Hide()

	objs := []fyne.CanvasObject{bg, page, day}
	for _, l := range outline {
		objs = append(objs, l)
	}
	objs = append(objs, stem, resize, rot)
	return &plannerCanvasRenderer{pc: p, objects: objs, bg: bg, page: page, day: day, outline: outline, stem: stem, resize: resize, rot: rot}
}

// PreferredSize sets a decent default size for the widget.
func (p *PlannerCanvas) PreferredSize() fyne.Size { return fyne.NewSize(842, 595) }

func (p *PlannerCanvas) view() view {
	sz := p.Size()
	return fitView(export.PageSize, float64(sz.Width), float64(sz.Height))
}

func (p *PlannerCanvas) layout() export.Layout {
	return export.LayoutMonth(p.sess.Month(), export.PageSize)
}

func (p *PlannerCanvas) stickers() []sticker {
	return stickers(p.sess.LiveDocument(), p.sess.UI.Page, p.layout(), p.sess.Catalog())
}

func toPointer(pos fyne.Position) transform.PointerEvent {
	return transform.PointerEvent{ClientX: float64(pos.X), ClientY: float64(pos.Y)}
}

// MouseDown focuses or starts a gesture on a sticker, places the armed sticker
// into a day, or clears focus.
func (p *PlannerCanvas) MouseDown(e *desktop.MouseEvent) {
	v := p.view()
	pt := v.toPage(vector.Pt{X: float64(e.Position.X), Y: float64(e.Position.Y)})
	all := p.stickers()
	h := hitTest(all, p.sess.UI.Selection, p.layout(), pt)
	switch {
	case h.sticker != nil:
		p.sess.PointerDown(h.sticker.target, h.handle, toPointer(e.Position), frameFor(*h.sticker, v))
	case h.day > 0 && p.sess.UI.ArmedAssetID != "":
		if pl, ok := p.sess.ClickSlot(h.day); ok {
			p.log.Debug("sticker placed", slog.Int("day", h.day), slog.String("id", pl.ID))
		}
	case h.day > 0:
		p.sess.DeselectAll()
		p.SelectedDay = h.day
		if p.OnDaySelected != nil {
			p.OnDaySelected(h.day)
		}
	default:
		p.sess.DeselectAll()
	}
	p.changed()
}

func (p *PlannerCanvas) MouseUp(*desktop.MouseEvent) {
	if p.sess.PointerUp() {
		p.changed()
		return
	}
	p.Refresh()
}

func (p *PlannerCanvas) Dragged(e *fyne.DragEvent) {
	if _, _, ok := p.sess.PointerMove(toPointer(e.Position)); ok {
		p.Refresh()
	}
}

func (p *PlannerCanvas) DragEnd() {
	if p.sess.PointerUp() {
		p.changed()
	}
}

func (p *PlannerCanvas) changed() {
	p.Refresh()
	if p.OnChanged != nil {
		p.OnChanged()
	}
}

// plannerCanvasRenderer re-renders the page raster on every refresh.
type plannerCanvasRenderer struct {
	pc      *PlannerCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	page    *canvas.Image
	day     *canvas.Rectangle
	outline []*canvas.Line
	stem    *canvas.Line
	resize  *canvas.Circle
	rot     *canvas.Circle
}

func (r *plannerCanvasRenderer) Destroy()                     {}
func (r *plannerCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *plannerCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(421, 298) }
func (r *plannerCanvasRenderer) Refresh()                     { r.Layout(r.pc.Size()); canvas.Refresh(r.pc) }

func (r *plannerCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	sess := r.pc.sess
	v := r.pc.view()

	src := export.Source{
		Doc:        sess.LiveDocument(),
		Style:      sess.Style(),
		Assets:     sess.Catalog(),
		Year:       sess.Year(),
		DailyNotes: sess.UI.DailyNotesEnabled,
	}
	dpi := int(72 * v.scale)
	if dpi < 24 {
		dpi = 24
	}
	if img, err := export.RenderMonth(src, sess.UI.Page, export.PNGOptions{DPI: dpi}); err == nil {
		r.page.Image = img
	} else {
		r.pc.log.Warn("page render failed", slog.Any("err", err))
	}
	o := v.toScreen(vector.Pt{})
	r.page.Move(fyne.NewPos(float32(o.X), float32(o.Y)))
	r.page.Resize(fyne.NewSize(float32(export.PageSize.W*v.scale), float32(export.PageSize.H*v.scale)))
	r.page.Refresh()

	l := r.pc.layout()
	if c, ok := l.Cells[r.pc.SelectedDay]; ok && !sess.UI.Has {
		p0 := v.toScreen(c.Min())
		r.day.Move(fyne.NewPos(float32(p0.X), float32(p0.Y)))
		r.day.Resize(fyne.NewSize(float32(c.W*v.scale), float32(c.H*v.scale)))
		r.day.Show()
	} else {
		r.day.Hide()
	}

	var focused *sticker
	all := r.pc.stickers()
	if sess.UI.Has {
		for i := range all {
			if all[i].target == sess.UI.Focused {
				focused = &all[i]
				break
			}
		}
	}
	if focused == nil {
		for _, ln := range r.outline {
			ln.Hide()
		}
		r.stem.Hide()
		r.resize.Hide()
		r.rot.Hide()
		return
	}
	cs := focused.corners()
	for i, ln := range r.outline {
		a, b := v.toScreen(cs[i]), v.toScreen(cs[(i+1)%4])
		ln.Position1 = fyne.NewPos(float32(a.X), float32(a.Y))
		ln.Position2 = fyne.NewPos(float32(b.X), float32(b.Y))
		ln.Show()
		ln.Refresh()
	}
	rad := float32(handleRadius * v.scale)
	place := func(c *canvas.Circle, at vector.Pt) {
		s := v.toScreen(at)
		c.Move(fyne.NewPos(float32(s.X)-rad, float32(s.Y)-rad))
		c.Resize(fyne.NewSize(2*rad, 2*rad))
		c.Show()
	}
	place(r.resize, focused.resizeHandle())
	place(r.rot, focused.rotateHandle())
	top := v.toScreen(focused.m.Apply(vector.Pt{X: focused.w / 2}))
	handle := v.toScreen(focused.rotateHandle())
	r.stem.Position1 = fyne.NewPos(float32(top.X), float32(top.Y))
	r.stem.Position2 = fyne.NewPos(float32(handle.X), float32(handle.Y))
	r.stem.Show()
}
