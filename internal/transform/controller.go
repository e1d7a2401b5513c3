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

import "gostickerplanner/internal/domain"

// Target addresses one on-screen placement instance.
type Target struct {
	Page, Slot  int
	PlacementID string
}

// Selection is the focus part of the host's UI state. The controller reads and
// updates it but never keeps its own copy.
type Selection struct {
	Focused Target
	Has     bool
}

// Is reports whether t is the focused instance.
func (s Selection) Is(t Target) bool { return s.Has && s.Focused == t }

// Commit is the single pose update emitted when a gesture ends.
type Commit struct {
	Target Target
	Pose   domain.Pose
	State  State // the state the gesture was in before release
}

// Controller routes pointer events to at most one active gesture.
// Manipulating an instance takes two presses: the first focuses it, the second starts a gesture.
type Controller struct {
	params Params
	target Target
	active *Gesture
}

func NewController(p Params) *Controller { return &Controller{params: p.withDefaults()} }

// Press either focuses t (returning false) or, when t is already focused, starts a gesture on h.
// Handles only exist on the focused instance, so presses on them behave the same way.
func (c *Controller) Press(sel *Selection, t Target, pose domain.Pose, h Handle, ev PointerEvent, f Frame) bool {
	if c.active != nil {
		return false
	}
	if !sel.Is(t) {
		c.Select(sel, t)
		return false
	}
	g := NewGesture(pose, c.params)
	if err := g.Press(h, ev, f); err != nil {
		return false
	}
	c.target = t
	c.active = g
	return true
}

// Move updates the live pose of the active gesture.
func (c *Controller) Move(ev PointerEvent) (Target, domain.Pose, bool) {
	if c.active == nil {
		return Target{}, domain.Pose{}, false
	}
	p, ok := c.active.Move(ev)
	return c.target, p, ok
}

// Release ends the active gesture and returns its commit.
func (c *Controller) Release() (Commit, bool) {
	if c.active == nil {
		return Commit{}, false
	}
	st := c.active.State()
	pose, ok := c.active.Release()
	t := c.target
	c.active = nil
	if !ok {
		return Commit{}, false
	}
	return Commit{Target: t, Pose: pose, State: st}, true
}

// Select moves focus to t. Any gesture in progress is abandoned without a commit.
func (c *Controller) Select(sel *Selection, t Target) {
	c.abandon()
	sel.Focused = t
	sel.Has = true
}

// Deselect clears focus so selection-only chrome is not drawn.
func (c *Controller) Deselect(sel *Selection) {
	c.abandon()
	*sel = Selection{}
}

// State returns the state of t: non-idle only for the instance being manipulated.
func (c *Controller) State(t Target) State {
	if c.active != nil && c.target == t {
		return c.active.State()
	}
	return Idle
}

// LivePose returns the transient pose for t while a gesture on it is active.
func (c *Controller) LivePose(t Target) (domain.Pose, bool) {
	if c.active != nil && c.target == t {
		return c.active.Pose(), true
	}
	return domain.Pose{}, false
}

// Cancel abandons the active gesture, if any, keeping focus.
func (c *Controller) Cancel() { c.abandon() }

// Active reports whether any gesture is in progress.
func (c *Controller) Active() bool { return c.active != nil }

func (c *Controller) abandon() {
	if c.active != nil {
		c.active.Abandon()
		c.active = nil
	}
}
