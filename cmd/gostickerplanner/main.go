/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gostickerplanner/internal/ai"
	"gostickerplanner/internal/config"
	"gostickerplanner/internal/crash"
	"gostickerplanner/internal/export"
	"gostickerplanner/internal/extract"
	applog "gostickerplanner/internal/log"
	"gostickerplanner/internal/session"
	"gostickerplanner/internal/telemetry"
	"gostickerplanner/internal/ui"
	"gostickerplanner/internal/vector"
	"gostickerplanner/internal/version"
)

func usage() {
	fmt.Println("Go Sticker Planner")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gostickerplanner version|-v|--version                 Show version")
	fmt.Println("  gostickerplanner extract <image> <outdir> x,y,w,h...   Cut stickers out of a sketch sheet")
	fmt.Println("  gostickerplanner analyze <image>                       Print the theme derived from a sketch")
	fmt.Println("  gostickerplanner export <outdir> [web|print] [<image>] Export the year, themed from <image> if given")
	fmt.Println("  gostickerplanner ui                                    Launch desktop UI (build with -tags fyne)")
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	cfg, apiKey, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	tel := telemetry.New(telemetry.FromSettings(cfg.General.TelemetryOptIn))
	defer tel.Close()
	opts := session.Options{
		Editor:    cfg.Editor,
		Year:      cfg.General.Year,
		Country:   cfg.General.Country,
		Telemetry: tel,
	}
	if apiKey != "" {
		c := ai.NewClient(cfg.AI, apiKey)
		opts.Analyzer = c
		opts.Background = c
	}
	sess := session.New(opts)
	defer crash.Recover(sess)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Go Sticker Planner")
			fmt.Println(version.String())
			return
		case "extract":
			if len(args) < 5 {
				fmt.Println("extract requires <image>, <outdir> and at least one x,y,w,h rectangle")
				usage()
				os.Exit(2)
			}
			runExtract(l, sess, args[2], args[3], args[4:])
			return
		case "analyze":
			if len(args) < 3 {
				fmt.Println("analyze requires <image>")
				usage()
				os.Exit(2)
			}
			a := analyze(l, sess, args[2])
			out, err := yaml.Marshal(a)
			if err != nil {
				fail(l, "encode analysis", err)
			}
			fmt.Print(string(out))
			if msg := sess.Status(); msg != "" {
				fmt.Println("#", msg)
			}
			return
		case "export":
			if len(args) < 3 {
				fmt.Println("export requires <outdir>")
				usage()
				os.Exit(2)
			}
			preset := export.PresetPrint
			if len(args) >= 4 {
				preset = export.PresetName(strings.ToLower(args[3]))
			}
			if len(args) >= 5 {
				analyze(l, sess, args[4])
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("export year", slog.String("out", abs), slog.String("preset", string(preset)))
			paths, err := export.BatchExport(sess.PrepareExport(), export.BatchOptions{Preset: preset, OutDir: abs})
			if err != nil {
				fail(l, "export failed", err)
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return
		case "ui":
			if err := ui.Run(sess); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// runExtract cuts each rectangle (in source pixels) out of the image and writes it as PNG.
func runExtract(l *slog.Logger, sess *session.Session, path, outDir string, rects []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(l, "read image", err)
	}
	img, _, err := extract.Decode(bytes.NewReader(data))
	if err != nil {
		fail(l, "decode image", err)
	}
	b := img.Bounds()
	ex := sess.BeginExtraction(img, float64(b.Dx()), float64(b.Dy()), false)
	for _, rs := range rects {
		r, err := parseRect(rs)
		if err != nil {
			fail(l, "parse rectangle", err)
		}
		ex.Press(r.Min())
		ex.Move(r.Max())
		if _, ok := ex.Release(); !ok {
			fmt.Printf("skipped %s: selection too small\n", rs)
		}
	}
	assets := sess.FinishExtraction()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fail(l, "create output dir", err)
	}
	for i, a := range assets {
		out := filepath.Join(outDir, fmt.Sprintf("sticker-%02d.png", i+1))
		if err := os.WriteFile(out, a.Data, 0o644); err != nil {
			fail(l, "write sticker", err)
		}
		fmt.Printf("%s (%dx%d)\n", out, a.NaturalWidth, a.NaturalHeight)
	}
}

func analyze(l *slog.Logger, sess *session.Session, path string) ai.Analysis {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(l, "read image", err)
	}
	_, format, err := extract.Decode(bytes.NewReader(data))
	if err != nil {
		fail(l, "decode image", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return sess.Analyze(ctx, data, "image/"+format)
}

func parseRect(s string) (vector.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return vector.Rect{}, fmt.Errorf("rectangle %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vector.Rect{}, fmt.Errorf("rectangle %q: %w", s, err)
		}
		v[i] = f
	}
	return vector.R(v[0], v[1], v[2], v[3]), nil
}
