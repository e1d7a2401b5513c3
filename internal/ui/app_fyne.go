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
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"gostickerplanner/internal/calendar"
	"gostickerplanner/internal/crash"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/export"
	"gostickerplanner/internal/extract"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/session"
	"gostickerplanner/internal/style"
	"gostickerplanner/internal/version"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// noteEntry commits pending note edits to history when it loses focus.
type noteEntry struct {
	widget.Entry
	onBlur func()
}

func newNoteEntry(placeholder string) *noteEntry {
	e := &noteEntry{}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.SetPlaceHolder(placeholder)
	e.ExtendBaseWidget(e)
	return e
}

func (e *noteEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.onBlur != nil {
		e.onBlur()
	}
}

// Run starts the planner window for sess and blocks until it is closed.
func Run(sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("ui: no session")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	defer crash.Recover(sess)

	fyneApp := app.NewWithID("gostickerplanner")
	w := fyneApp.NewWindow("Go Sticker Planner")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 860)
	if winW < 900 {
		winW = 900
	}
	if winH < 640 {
		winH = 640
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	planner := NewPlannerCanvas(sess)

	monthLabel := widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	undoBtn := widget.NewButtonWithIcon("", theme.ContentUndoIcon(), nil)
	redoBtn := widget.NewButtonWithIcon("", theme.ContentRedoIcon(), nil)
	deleteBtn := widget.NewButtonWithIcon("Delete sticker", theme.DeleteIcon(), nil)
	pageNote := newNoteEntry("Notes for this month")
	dayNote := newNoteEntry("Note for the selected day")
	dayNoteLabel := widget.NewLabel("Day note")
	moodLabel := widget.NewLabel("")

	// Sticker catalog
	thumbs := map[string]image.Image{}
	var assets []domain.Asset
	stickerList := widget.NewList(
		func() int { return len(assets) },
		func() fyne.CanvasObject {
			img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(56, 56))
			return container.NewBorder(nil, nil, img, nil, widget.NewLabel(""))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if int(i) >= len(assets) {
				return
			}
			a := assets[i]
			for _, obj := range o.(*fyne.Container).Objects {
				switch v := obj.(type) {
				case *canvas.Image:
					v.Image = thumbnail(thumbs, a)
					v.Refresh()
				case *widget.Label:
					txt := fmt.Sprintf("%dx%d", a.NaturalWidth, a.NaturalHeight)
					if a.ID == sess.UI.ArmedAssetID {
						txt += "  (armed)"
					}
					v.SetText(txt)
				}
			}
		},
	)

	var refresh func()
	syncing := false
	refreshAssets := func() {
		assets = sess.Catalog().List()
		stickerList.Refresh()
	}
	stickerList.OnSelected = func(id widget.ListItemID) {
		if int(id) < len(assets) {
			sess.ArmAsset(assets[id].ID)
			if sess.UI.ArmedAssetID != "" {
				status.SetText("Click a day to place the sticker")
			} else {
				status.SetText("Ready")
			}
		}
		stickerList.UnselectAll()
		refresh()
	}
	removeAssetBtn := widget.NewButtonWithIcon("Remove armed sticker", theme.ContentRemoveIcon(), func() {
		id := sess.UI.ArmedAssetID
		if id == "" {
			dialog.ShowInformation("Remove sticker", "Arm a sticker first by clicking it in the list.", w)
			return
		}
		dialog.ShowConfirm("Remove sticker", "Remove this sticker and every placement of it?", func(ok bool) {
			if !ok {
				return
			}
			if err := sess.RemoveAsset(id); err != nil {
				dialog.ShowError(err, w)
			}
			delete(thumbs, id)
			refresh()
		}, w)
	})

	refresh = func() {
		m := sess.Month()
		monthLabel.SetText(fmt.Sprintf("%s %d", m.Name, m.Year))
		if sess.CanUndo() {
			undoBtn.Enable()
		} else {
			undoBtn.Disable()
		}
		if sess.CanRedo() {
			redoBtn.Enable()
		} else {
			redoBtn.Disable()
		}
		if sess.UI.Has {
			deleteBtn.Enable()
		} else {
			deleteBtn.Disable()
		}
		syncing = true
		defer func() { syncing = false }()
		doc := sess.Document()
		if pageNote.Text != doc.Page(sess.UI.Page).Note {
			pageNote.SetText(doc.Page(sess.UI.Page).Note)
		}
		day := planner.SelectedDay
		if day > 0 && sess.UI.DailyNotesEnabled {
			dayNoteLabel.SetText(fmt.Sprintf("Note for %s %d", m.Name, day))
			s, _ := doc.Slot(sess.UI.Page, day)
			if dayNote.Text != s.Note {
				dayNote.SetText(s.Note)
			}
			dayNote.Enable()
		} else {
			dayNoteLabel.SetText("Day note")
			dayNote.SetText("")
			dayNote.Disable()
		}
		st := sess.Style()
		moodLabel.SetText("Mood: " + st.Mood)
		if msg := sess.Status(); msg != "" {
			status.SetText(msg)
		}
		refreshAssets()
		planner.Refresh()
	}
	planner.OnChanged = refresh
	planner.OnDaySelected = func(int) { refresh() }

	pageNote.OnChanged = func(s string) {
		if syncing {
			return
		}
		sess.EditPageNote(s)
		planner.Refresh()
	}
	pageNote.onBlur = func() {
		if sess.CommitNotes() {
			refresh()
		}
	}
	dayNote.OnChanged = func(s string) {
		if !syncing && planner.SelectedDay > 0 && sess.UI.DailyNotesEnabled {
			sess.EditSlotNote(planner.SelectedDay, s)
			planner.Refresh()
		}
	}
	dayNote.onBlur = pageNote.onBlur

	doUndo := func() {
		if sess.Undo() {
			refresh()
		}
	}
	doRedo := func() {
		if sess.Redo() {
			refresh()
		}
	}
	deleteFocused := func() {
		if !sess.UI.Has {
			return
		}
		if err := sess.DeletePlacement(sess.UI.Focused); err != nil {
			l.Debug("delete placement", slog.Any("err", err))
		}
		refresh()
	}
	undoBtn.OnTapped = doUndo
	redoBtn.OnTapped = doRedo
	deleteBtn.OnTapped = deleteFocused

	prevBtn := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		sess.PrevPage()
		planner.SelectedDay = 0
		refresh()
	})
	nextBtn := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		sess.NextPage()
		planner.SelectedDay = 0
		refresh()
	})
	clearBtn := widget.NewButtonWithIcon("Clear month", theme.ContentClearIcon(), func() {
		dialog.ShowConfirm("Clear month", "Remove every sticker and note from this month?", func(ok bool) {
			if ok {
				sess.ClearPage()
				refresh()
			}
		}, w)
	})
	dailyNotes := widget.NewCheck("Daily notes", func(v bool) {
		sess.UI.DailyNotesEnabled = v
		refresh()
	})
	dailyNotes.SetChecked(sess.UI.DailyNotesEnabled)

	// Style tab
	themeNames := make([]string, 0, len(style.Themes)+1)
	themeNames = append(themeNames, "AI palette")
	for _, t := range style.Themes {
		themeNames = append(themeNames, t.Name)
	}
	themeSelect := widget.NewSelect(themeNames, func(name string) {
		sess.UpdateStyle(func(st *style.Style) {
			if name == "AI palette" {
				if len(st.AIPalette) > 0 {
					st.ApplyTheme(st.AIPalette)
				}
				return
			}
			for _, t := range style.Themes {
				if t.Name == name {
					st.ApplyTheme(t.Palette)
				}
			}
		})
		planner.Refresh()
	})
	fontNames := make([]string, len(style.Fonts))
	for i, f := range style.Fonts {
		fontNames[i] = f.Name
	}
	fontSelect := widget.NewSelect(fontNames, func(name string) {
		for _, f := range style.Fonts {
			if f.Name == name {
				sess.UpdateStyle(func(st *style.Style) { st.Font = f.Value })
			}
		}
	})
	countryNames := make([]string, len(calendar.Countries))
	for i, c := range calendar.Countries {
		countryNames[i] = c.Name
	}
	countrySelect := widget.NewSelect(countryNames, func(name string) {
		for _, c := range calendar.Countries {
			if c.Name == name {
				sess.UpdateStyle(func(st *style.Style) { st.Country = c.Code })
			}
		}
		planner.Refresh()
	})
	for _, c := range calendar.Countries {
		if c.Code == sess.Style().Country {
			countrySelect.SetSelected(c.Name)
		}
	}
	noteColor := widget.NewEntry()
	noteColor.SetPlaceHolder("#1f2937")
	noteColor.OnSubmitted = func(s string) {
		if _, err := style.ParseHex(s); err != nil {
			dialog.ShowError(err, w)
			return
		}
		sess.UpdateStyle(func(st *style.Style) { st.NoteColor = s })
		planner.Refresh()
	}

	runAI := func(what string, fn func(ctx context.Context)) {
		status.SetText(what + "…")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			fn(ctx)
			fyne.Do(func() {
				status.SetText("Ready")
				refresh()
			})
		}()
	}
	analyzeBtn := widget.NewButtonWithIcon("Analyze sketch…", theme.ColorPaletteIcon(), func() {
		openImage(w, func(data []byte, _ image.Image, format string) {
			runAI("Analyzing artwork", func(ctx context.Context) {
				sess.Analyze(ctx, data, "image/"+format)
			})
		})
	})
	backgroundBtn := widget.NewButtonWithIcon("Generate background", theme.MediaPhotoIcon(), func() {
		runAI("Generating background", func(ctx context.Context) {
			_ = sess.GenerateBackground(ctx)
		})
	})
	clearBgBtn := widget.NewButton("Remove background", func() {
		sess.UpdateStyle(func(st *style.Style) { st.Background = nil })
		planner.Refresh()
	})

	stickersTab := container.NewBorder(
		container.NewVBox(widget.NewLabel("Click a sticker, then click a day."), removeAssetBtn),
		container.NewVBox(widget.NewSeparator(), dayNoteLabel, dayNote, widget.NewLabel("Month notes"), pageNote),
		nil, nil, stickerList)
	styleTab := container.NewVBox(
		moodLabel,
		analyzeBtn, backgroundBtn, clearBgBtn,
		widget.NewForm(
			widget.NewFormItem("Theme", themeSelect),
			widget.NewFormItem("Handwriting", fontSelect),
			widget.NewFormItem("Holidays", countrySelect),
			widget.NewFormItem("Note colour", noteColor),
		),
	)
	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon("Stickers", theme.GridIcon(), stickersTab),
		container.NewTabItemWithIcon("Style", theme.ColorPaletteIcon(), styleTab),
	)
	tabs.OnSelected = func(ti *container.TabItem) {
		if ti.Text == "Style" {
			sess.UI.Tab = session.TabStyle
		} else {
			sess.UI.Tab = session.TabStickers
		}
	}

	// Menus
	extractItem := func(addMore bool) func() {
		return func() {
			openImage(w, func(_ []byte, img image.Image, _ string) {
				showExtractWindow(fyneApp, sess, img, addMore, func(got []domain.Asset) {
					status.SetText(pluralStickers(len(got)))
					refresh()
				})
			})
		}
	}
	importItem := fyne.NewMenuItem("Import Whole Image as Sticker…", func() {
		openImage(w, func(data []byte, _ image.Image, _ string) {
			if _, err := sess.ImportImage(bytes.NewReader(data)); err != nil {
				dialog.ShowError(err, w)
				return
			}
			refresh()
		})
	})
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Extract Stickers from Sketch…", extractItem(false)),
		fyne.NewMenuItem("Add More Stickers…", extractItem(true)),
		importItem,
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", doUndo),
		fyne.NewMenuItem("Redo", doRedo),
		fyne.NewMenuItem("Delete Sticker", deleteFocused),
		fyne.NewMenuItem("Deselect", func() { sess.DeselectAll(); refresh() }),
	)

	exportPDFItem := fyne.NewMenuItem("Export Year as PDF…", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			defer func() { _ = uc.Close() }()
			src := sess.PrepareExport()
			refresh()
			if err := export.ExportPDF(src, uc, export.PDFOptions{}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PDF", "Exported to "+uc.URI().Path(), w)
		}, w)
		save.SetFileName(fmt.Sprintf("planner-%d.pdf", sess.Year()))
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf"}))
		save.Show()
	})
	exportPNGItem := fyne.NewMenuItem("Export Month as PNG…", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			defer func() { _ = uc.Close() }()
			src := sess.PrepareExport()
			refresh()
			img, err := export.RenderMonth(src, sess.UI.Page, export.PNGOptions{DPI: 200})
			if err == nil {
				err = export.WritePNG(uc, img)
			}
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PNG", "Exported to "+uc.URI().Path(), w)
		}, w)
		save.SetFileName(fmt.Sprintf("%s-%d.png", strings.ToLower(sess.Month().Name), sess.Year()))
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".png"}))
		save.Show()
	})
	exportAllItem := fyne.NewMenuItem("Export All Months as PNG…", func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uri == nil {
				return
			}
			src := sess.PrepareExport()
			refresh()
			paths, err := export.ExportMonthsPNG(src, uri.Path(), export.PNGOptions{})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PNG", fmt.Sprintf("Exported %d pages to %s", len(paths), uri.Path()), w)
		}, w)
		fd.Show()
	})
	exportMenu := fyne.NewMenu("Export", exportPDFItem, exportPNGItem, exportAllItem)

	aboutItem := fyne.NewMenuItem("About Go Sticker Planner", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("Go Sticker Planner\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("About", info, w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, exportMenu, fyne.NewMenu("About", aboutItem)))

	// Shortcuts
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { doUndo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { doRedo() })
	w.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
		switch k.Name {
		case fyne.KeyDelete, fyne.KeyBackSpace:
			deleteFocused()
		case fyne.KeyEscape:
			sess.DeselectAll()
			planner.SelectedDay = 0
			refresh()
		case fyne.KeyLeft:
			prevBtn.OnTapped()
		case fyne.KeyRight:
			nextBtn.OnTapped()
		}
	})

	topBar := container.NewHBox(prevBtn, monthLabel, nextBtn, widget.NewSeparator(), undoBtn, redoBtn, deleteBtn, clearBtn, dailyNotes)
	split := container.NewHSplit(planner, tabs)
	split.SetOffset(0.74)
	w.SetContent(container.NewBorder(topBar, status, nil, nil, split))

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	refresh()
	w.ShowAndRun()
	return nil
}

// openImage asks for an image file and decodes it.
func openImage(w fyne.Window, fn func(data []byte, img image.Image, format string)) {
	open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if ur == nil {
			return
		}
		defer func() { _ = ur.Close() }()
		data, err := io.ReadAll(ur)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		img, format, err := extract.Decode(bytes.NewReader(data))
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		fn(data, img, format)
	}, w)
	open.SetFilter(fstorage.NewExtensionFileFilter(imageExts))
	open.Show()
}
