/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across formats and months.
//
// Path semantics:
//   - OutDir defaults to the preset name.
//   - PDF output is a single file pdf/planner-<year>.pdf.
//   - PNG output is one file per month under png/.
type BatchOptions struct {
	Preset      PresetName
	Formats     []string // allowed: pdf, png; empty means preset defaults
	Months      []int    // zero-based; empty means all months
	DPIOverride int      // when > 0 overrides the preset raster DPI
	OutDir      string
}

// BatchExport runs exports according to the given preset and returns the written paths.
func BatchExport(src Source, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if baseOut == "" {
		baseOut = "exports"
	}
	dpi := presetDPI(opt.Preset)
	if opt.DPIOverride > 0 {
		dpi = opt.DPIOverride
	}

	var written []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			out := filepath.Join(baseOut, "pdf", fmt.Sprintf("planner-%d.pdf", src.Year))
			if err := ExportPDFFile(src, out, PDFOptions{Months: opt.Months}); err != nil {
				return written, fmt.Errorf("pdf: %w", err)
			}
			written = append(written, out)
		case "png":
			paths, err := ExportMonthsPNG(src, filepath.Join(baseOut, "png"), PNGOptions{DPI: dpi, Months: opt.Months})
			written = append(written, paths...)
			if err != nil {
				return written, fmt.Errorf("png: %w", err)
			}
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetDPI(p PresetName) int {
	switch p {
	case PresetWeb:
		return 96
	case PresetPrint:
		return 300
	default:
		return 150
	}
}
