/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package session

import (
	"image"
	"io"
	"log/slog"

	"gostickerplanner/internal/document"
	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/extract"
	"gostickerplanner/internal/telemetry"
)

// BeginExtraction opens the extraction tool on a source shown at displayW x displayH.
// With addMore the finished stickers are appended to the catalog instead of replacing it.
func (s *Session) BeginExtraction(src image.Image, displayW, displayH float64, addMore bool) *extract.Extractor {
	if s.extractor == nil {
		s.extractor = extract.New(extract.Options{MinPx: s.minExtractPx})
	}
	s.extractor.SetSource(src, displayW, displayH)
	s.addingMore = addMore
	return s.extractor
}

// Extractor is the open extraction tool, or nil.
func (s *Session) Extractor() *extract.Extractor { return s.extractor }

// FinishExtraction hands the extracted stickers to the catalog and closes the tool.
func (s *Session) FinishExtraction() []domain.Asset {
	if s.extractor == nil {
		return nil
	}
	assets := s.extractor.Done()
	if s.addingMore {
		s.catalog.Add(assets...)
	} else {
		s.replaceCatalog(assets)
	}
	s.addingMore = false
	for range assets {
		s.sink.Event(telemetry.EventExtraction, nil)
	}
	s.log.Debug("extraction finished", slog.Int("assets", len(assets)), slog.Int("catalog", s.catalog.Len()))
	return assets
}

// CancelExtraction closes the tool without touching the catalog.
func (s *Session) CancelExtraction() {
	if s.extractor != nil {
		s.extractor.Done()
	}
	s.addingMore = false
}

// ImportImage adds a whole image to the catalog as one sticker.
func (s *Session) ImportImage(r io.Reader) (domain.Asset, error) {
	return s.catalog.ImportImage(r)
}

// RemoveAsset deletes an asset and, as a single history step, every placement that uses it.
func (s *Session) RemoveAsset(id string) error {
	if err := s.catalog.Remove(id); err != nil {
		s.log.Debug("remove asset", slog.Any("err", err))
		return err
	}
	if s.UI.ArmedAssetID == id {
		s.UI.ArmedAssetID = ""
	}
	doc, n := document.RemoveAssetPlacements(s.doc, id)
	if n > 0 {
		s.restore(doc)
		s.commit("remove asset")
	}
	s.log.Debug("asset removed", slog.String("asset", id), slog.Int("placements", n))
	return nil
}

// replaceCatalog swaps the catalog for assets. Placements of stickers that leave
// the catalog are removed as one history step.
func (s *Session) replaceCatalog(assets []domain.Asset) {
	keep := make(map[string]bool, len(assets))
	for _, a := range assets {
		keep[a.ID] = true
	}
	doc, removed := s.doc, 0
	for _, old := range s.catalog.List() {
		if keep[old.ID] {
			continue
		}
		var n int
		doc, n = document.RemoveAssetPlacements(doc, old.ID)
		removed += n
	}
	s.catalog.Replace(assets)
	s.reconcileArmed()
	if removed > 0 {
		s.restore(doc)
		s.commit("replace assets")
	}
	s.log.Debug("catalog replaced", slog.Int("assets", len(assets)), slog.Int("placements_removed", removed))
}

// reconcileArmed disarms an asset that left the catalog.
func (s *Session) reconcileArmed() {
	if s.UI.ArmedAssetID == "" {
		return
	}
	if _, ok := s.catalog.Resolve(s.UI.ArmedAssetID); !ok {
		s.UI.ArmedAssetID = ""
	}
}
