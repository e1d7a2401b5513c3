/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package transform

import (
	"math"
	"testing"

	"gostickerplanner/internal/domain"
	"gostickerplanner/internal/vector"
)

var frame = Frame{Box: vector.Size{W: 200, H: 100}, Center: vector.Pt{X: 100, Y: 50}}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestDragConvertsPixelsToPercent(t *testing.T) {
	g := NewGesture(domain.Pose{X: 50, Y: 50, Scale: 1}, Params{})
	if err := g.Press(HandleBody, PointerEvent{ClientX: 10, ClientY: 10}, frame); err != nil {
		t.Fatalf("press: %v", err)
	}
	if g.State() != Dragging {
		t.Fatalf("state = %v", g.State())
	}
	// intermediate moves must not accumulate: each is relative to the press point
	g.Move(PointerEvent{ClientX: 500, ClientY: 500})
	p, ok := g.Move(PointerEvent{ClientX: 30, ClientY: 0})
	if !ok || !near(p.X, 60) || !near(p.Y, 40) {
		t.Fatalf("drag pose = %+v", p)
	}
	final, ok := g.Release()
	if !ok || final != p || g.State() != Idle {
		t.Fatalf("release = %+v ok=%v state=%v", final, ok, g.State())
	}
	if _, ok := g.Release(); ok {
		t.Fatalf("second release should not produce a pose")
	}
}

func TestDragOutOfBoxIsNotClamped(t *testing.T) {
	g := NewGesture(domain.Pose{X: 90, Y: 90, Scale: 1}, Params{})
	_ = g.Press(HandleBody, PointerEvent{}, frame)
	p, _ := g.Move(PointerEvent{ClientX: 200, ClientY: 100})
	if !near(p.X, 190) || !near(p.Y, 190) {
		t.Fatalf("expected unclamped 190/190, got %+v", p)
	}
}

func TestResizeFloorsAtMinScale(t *testing.T) {
	g := NewGesture(domain.Pose{X: 50, Y: 50, Scale: 1}, Params{})
	_ = g.Press(HandleResize, PointerEvent{ClientX: 0}, frame)
	p, _ := g.Move(PointerEvent{ClientX: 50, ClientY: 999})
	if !near(p.Scale, 1.5) || p.X != 50 || p.Y != 50 {
		t.Fatalf("resize right: %+v", p)
	}
	p, _ = g.Move(PointerEvent{ClientX: -10000})
	if !near(p.Scale, 0.2) {
		t.Fatalf("expected min scale 0.2, got %v", p.Scale)
	}
	final, _ := g.Release()
	if !near(final.Scale, 0.2) {
		t.Fatalf("committed scale = %v", final.Scale)
	}
}

func TestResizeHonorsParams(t *testing.T) {
	g := NewGesture(domain.Pose{Scale: 1}, Params{MinScale: 0.5, ResizePerPx: 0.1})
	_ = g.Press(HandleResize, PointerEvent{}, frame)
	if p, _ := g.Move(PointerEvent{ClientX: 2}); !near(p.Scale, 1.2) {
		t.Fatalf("per-px param ignored: %v", p.Scale)
	}
	if p, _ := g.Move(PointerEvent{ClientX: -100}); !near(p.Scale, 0.5) {
		t.Fatalf("min-scale param ignored: %v", p.Scale)
	}
}

// sweep walks the pointer around the center in small steps.
func sweep(g *Gesture, c vector.Pt, r, fromDeg, toDeg, step float64) domain.Pose {
	var p domain.Pose
	for a := fromDeg; ; a += step {
		if (step > 0 && a > toDeg) || (step < 0 && a < toDeg) {
			a = toDeg
		}
		rad := a * math.Pi / 180
		p, _ = g.Move(PointerEvent{ClientX: c.X + r*math.Cos(rad), ClientY: c.Y + r*math.Sin(rad)})
		if a == toDeg {
			return p
		}
	}
}

func TestRotationAccumulatesFullTurns(t *testing.T) {
	g := NewGesture(domain.Pose{Scale: 1, Rotation: 5}, Params{})
	c := frame.Center
	_ = g.Press(HandleRotate, PointerEvent{ClientX: c.X + 40, ClientY: c.Y}, frame)
	p := sweep(g, c, 40, 0, 720, 10)
	if math.Abs(p.Rotation-725) > 0.5 {
		t.Fatalf("expected ~725 after two clockwise turns, got %v", p.Rotation)
	}
	final, _ := g.Release()
	if math.Abs(final.Rotation-725) > 0.5 {
		t.Fatalf("committed rotation = %v", final.Rotation)
	}
}

func TestRotationBackwards(t *testing.T) {
	g := NewGesture(domain.Pose{Scale: 1}, Params{})
	c := frame.Center
	_ = g.Press(HandleRotate, PointerEvent{ClientX: c.X + 40, ClientY: c.Y}, frame)
	p := sweep(g, c, 40, 0, -450, -15)
	if math.Abs(p.Rotation+450) > 0.5 {
		t.Fatalf("expected ~-450, got %v", p.Rotation)
	}
}

func TestPressWhileActiveIsRejected(t *testing.T) {
	g := NewGesture(domain.Pose{Scale: 1}, Params{})
	_ = g.Press(HandleBody, PointerEvent{}, frame)
	if err := g.Press(HandleRotate, PointerEvent{}, frame); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestControllerSelectThenManipulate(t *testing.T) {
	c := NewController(Params{})
	var sel Selection
	a := Target{Page: 0, Slot: 3, PlacementID: "a"}
	pose := domain.Pose{X: 50, Y: 50, Scale: 1}

	if c.Press(&sel, a, pose, HandleBody, PointerEvent{}, frame) {
		t.Fatalf("first press on unfocused instance must only select")
	}
	if !sel.Is(a) || c.Active() {
		t.Fatalf("expected focus without gesture: %+v", sel)
	}
	if _, _, ok := c.Move(PointerEvent{ClientX: 100}); ok {
		t.Fatalf("move without gesture should be ignored")
	}
	if _, ok := c.Release(); ok {
		t.Fatalf("release without gesture must not commit")
	}

	if !c.Press(&sel, a, pose, HandleBody, PointerEvent{}, frame) {
		t.Fatalf("second press should start a drag")
	}
	if c.State(a) != Dragging {
		t.Fatalf("state = %v", c.State(a))
	}
	tgt, live, ok := c.Move(PointerEvent{ClientX: 20})
	if !ok || tgt != a || !near(live.X, 60) {
		t.Fatalf("move = %v %+v %v", tgt, live, ok)
	}
	if lp, ok := c.LivePose(a); !ok || lp != live {
		t.Fatalf("live pose not exposed: %+v", lp)
	}
	cm, ok := c.Release()
	if !ok || cm.Target != a || cm.Pose != live || cm.State != Dragging {
		t.Fatalf("commit = %+v", cm)
	}
	if _, ok := c.Release(); ok {
		t.Fatalf("exactly one commit per gesture")
	}
	if !sel.Is(a) {
		t.Fatalf("focus should survive the gesture")
	}
}

func TestControllerSingleActiveGesture(t *testing.T) {
	c := NewController(Params{})
	a := Target{Slot: 1, PlacementID: "a"}
	b := Target{Slot: 1, PlacementID: "b"}
	sel := Selection{Focused: a, Has: true}
	_ = c.Press(&sel, a, domain.Pose{Scale: 1}, HandleResize, PointerEvent{}, frame)
	if c.Press(&sel, b, domain.Pose{Scale: 1}, HandleBody, PointerEvent{}, frame) {
		t.Fatalf("a second gesture must not start while one is active")
	}
	if !sel.Is(a) {
		t.Fatalf("focus moved during active gesture")
	}

	c.Select(&sel, b)
	if c.Active() || c.State(a) != Idle || !sel.Is(b) {
		t.Fatalf("selecting another instance should idle the previous one")
	}
	if _, ok := c.Release(); ok {
		t.Fatalf("abandoned gesture must not commit")
	}

	c.Deselect(&sel)
	if sel.Has {
		t.Fatalf("deselect should clear focus")
	}
}
