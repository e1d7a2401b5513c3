/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"

	"gostickerplanner/internal/domain"
)

// Resize defaults: one pixel of horizontal travel adds 0.01 to the scale, never below 0.2.
const (
	DefaultMinScale    = 0.2
	DefaultResizePerPx = 0.01
)

// DragPose moves the gesture-start pose by the cumulative pointer displacement,
// expressed as a percentage of the slot box. Results are not clamped.
func DragPose(start domain.Pose, dx, dy float64, box Size) domain.Pose {
	out := start
	if box.W != 0 {
		out.X = start.X + 100*dx/box.W
	}
	if box.H != 0 {
		out.Y = start.Y + 100*dy/box.H
	}
	return out
}

// ResizeScale is one-dimensional: rightward travel grows, leftward shrinks, floored at minScale.
func ResizeScale(startScale, dx, perPx, minScale float64) float64 {
	return math.Max(minScale, startScale+perPx*dx)
}

// AngleDeg is atan2 of p around center, in degrees (-180, 180].
func AngleDeg(center, p Pt) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X) * 180 / math.Pi
}

// UnwrapDelta returns the signed angular step from prev to cur taking the short
// way round, so a sweep that crosses the ±180° seam keeps accumulating.
func UnwrapDelta(prev, cur float64) float64 {
	d := math.Mod(cur-prev, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// NormalizeDegrees wraps r into [0, 360). Used only when rendering.
func NormalizeDegrees(r float64) float64 {
	r = math.Mod(r, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// PoseTransform maps element-local pixel coordinates (0..elem.W, 0..elem.H) into
// slot-box pixels. The order is fixed: translate to the pose position, rotate,
// then scale, all about the element's own center.
func PoseTransform(p domain.Pose, box, elem Size) Affine2D {
	tx := box.W * p.X / 100
	ty := box.H * p.Y / 100
	rad := NormalizeDegrees(p.Rotation) * math.Pi / 180
	return Translate(tx, ty).
		Mul(Rotate(rad)).
		Mul(Scale(p.Scale, p.Scale)).
		Mul(Translate(-elem.W/2, -elem.H/2))
}
