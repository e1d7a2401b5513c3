/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog is the flat, in-memory collection of sticker assets that
// placements reference by id.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/extract"
	applog "gostickerplanner/internal/log"
)

var ErrAssetNotFound = errors.New("asset not found")

// Catalog keeps assets in insertion order. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	byID  map[string]domain.Asset
	order []string
	log   *slog.Logger
}

func New() *Catalog {
	return &Catalog{byID: map[string]domain.Asset{}, log: applog.WithComponent("catalog")}
}

// Add appends assets. An asset whose id already exists replaces the stored one in place.
func (c *Catalog) Add(assets ...domain.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range assets {
		if _, ok := c.byID[a.ID]; !ok {
			c.order = append(c.order, a.ID)
		}
		c.byID[a.ID] = a
	}
	c.log.Debug("assets added", slog.Int("n", len(assets)), slog.Int("total", len(c.order)))
}

// Replace swaps the whole catalog for assets.
func (c *Catalog) Replace(assets []domain.Asset) {
	c.mu.Lock()
	c.byID = map[string]domain.Asset{}
	c.order = nil
	c.mu.Unlock()
	c.Add(assets...)
}

// Resolve looks an asset up by id.
func (c *Catalog) Resolve(id string) (domain.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.byID[id]
	return a, ok
}

// Remove deletes the asset. Placements referencing it are not touched here.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return fmt.Errorf("remove %q: %w", id, ErrAssetNotFound)
	}
	delete(c.byID, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns the assets in insertion order.
func (c *Catalog) List() []domain.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Asset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// ImportImage adds a whole image as a single asset without cropping.
// The encoded bytes are kept as-is; only the header is decoded for its size.
func (c *Catalog) ImportImage(r io.Reader) (domain.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("read image: %w", err)
	}
	img, format, err := extract.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Asset{}, err
	}
	b := img.Bounds()
	a := domain.Asset{
		ID:            uuid.NewString(),
		Data:          data,
		MIME:          "image/" + format,
		NaturalWidth:  b.Dx(),
		NaturalHeight: b.Dy(),
	}
	c.Add(a)
	return a, nil
}
