/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package transform turns raw pointer events into placement pose updates.
// A Gesture holds the live pose while the pointer is down; only the pose at
// release is handed back for committing.
package transform

import (
	"errors"

	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/vector"
)

// State of a single on-screen placement instance.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
	Rotating
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Rotating:
		return "rotating"
	default:
		return "idle"
	}
}

// Handle is the hit region a press landed on.
type Handle int

const (
	HandleBody Handle = iota
	HandleResize
	HandleRotate
)

// PointerEvent is the only input the engine consumes: client coordinates in device pixels.
type PointerEvent struct{ ClientX, ClientY float64 }

func (e PointerEvent) pt() vector.Pt { return vector.Pt{X: e.ClientX, Y: e.ClientY} }

// Frame is the geometry captured from the host at press time.
type Frame struct {
	Box    vector.Size // slot bounding box
	Center vector.Pt   // the instance's on-screen center
}

// Params tune resize behavior. Zero values fall back to the vector defaults.
type Params struct {
	MinScale    float64
	ResizePerPx float64
}

func (p Params) withDefaults() Params {
	if p.MinScale <= 0 {
		p.MinScale = vector.DefaultMinScale
	}
	if p.ResizePerPx <= 0 {
		p.ResizePerPx = vector.DefaultResizePerPx
	}
	return p
}

var ErrBusy = errors.New("gesture already in progress")

// Gesture is the per-instance state machine: Idle -> Dragging|Resizing|Rotating -> Idle.
type Gesture struct {
	params Params

	state     State
	frame     Frame
	start     PointerEvent
	startPose domain.Pose
	live      domain.Pose

	// rotation bookkeeping: the last pointer angle and the unwrapped sweep since press
	lastAngle float64
	sweep     float64
}

// NewGesture returns an idle gesture showing pose.
func NewGesture(pose domain.Pose, p Params) *Gesture {
	return &Gesture{params: p.withDefaults(), live: pose}
}

func (g *Gesture) State() State { return g.state }

// Pose is what the instance should render right now.
func (g *Gesture) Pose() domain.Pose { return g.live }

// Press captures the reference frame and enters the state for the handle.
func (g *Gesture) Press(h Handle, ev PointerEvent, f Frame) error {
	if g.state != Idle {
		return ErrBusy
	}
	g.frame = f
	g.start = ev
	g.startPose = g.live
	switch h {
	case HandleResize:
		g.state = Resizing
	case HandleRotate:
		g.state = Rotating
		g.lastAngle = vector.AngleDeg(f.Center, ev.pt())
		g.sweep = 0
	default:
		g.state = Dragging
	}
	return nil
}

// Move recomputes the live pose from the cumulative displacement since press.
// It returns false when idle.
func (g *Gesture) Move(ev PointerEvent) (domain.Pose, bool) {
	dx := ev.ClientX - g.start.ClientX
	dy := ev.ClientY - g.start.ClientY
	switch g.state {
	case Dragging:
		g.live = vector.DragPose(g.startPose, dx, dy, g.frame.Box)
	case Resizing:
		g.live = g.startPose
		g.live.Scale = vector.ResizeScale(g.startPose.Scale, dx, g.params.ResizePerPx, g.params.MinScale)
	case Rotating:
		a := vector.AngleDeg(g.frame.Center, ev.pt())
		g.sweep += vector.UnwrapDelta(g.lastAngle, a)
		g.lastAngle = a
		g.live = g.startPose
		g.live.Rotation = g.startPose.Rotation + g.sweep
	default:
		return g.live, false
	}
	return g.live, true
}

// Release returns to Idle and hands back the final live pose, changed or not.
// It returns false when no gesture was in progress.
func (g *Gesture) Release() (domain.Pose, bool) {
	if g.state == Idle {
		return g.live, false
	}
	g.state = Idle
	return g.live, true
}

// Abandon returns to Idle and restores the pose captured at press.
func (g *Gesture) Abandon() {
	if g.state != Idle {
		g.live = g.startPose
		g.state = Idle
	}
}
