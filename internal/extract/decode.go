/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package extract

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

// Decode reads a scanned sheet in any registered format (png, jpeg, gif, webp).
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode source image: %w", err)
	}
	return img, format, nil
}

// FitDisplay returns the on-screen size of an image scaled to fit within maxW x maxH,
// keeping its aspect ratio and never upscaling.
func FitDisplay(natural image.Rectangle, maxW, maxH float64) (float64, float64) {
	w, h := float64(natural.Dx()), float64(natural.Dy())
	if w == 0 || h == 0 {
		return 0, 0
	}
	s := 1.0
	if maxW > 0 && w*s > maxW {
		s = maxW / w
	}
	if maxH > 0 && h*s > maxH {
		s = maxH / h
	}
	return w * s, h * s
}
