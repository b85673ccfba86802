/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package drag implements the grid-snapping drag interaction for canvas elements.
// It is UI-agnostic: a frontend feeds it pointer samples and commits the result.
package drag

import (
	"fmt"
	"math"

	"pagebuilder/internal/domain"
)

// Pt is a pointer position in canvas pixels.
type Pt struct{ X, Y float64 }

// Size is the rendered size of the dragged element.
type Size struct{ W, H float64 }

// Position is a settled, integer element position.
type Position struct{ X, Y int }

// Commit is the result of a finished drag.
type Commit struct {
	ID string
	Position
}

// Snap rounds v to the nearest multiple of grid, halves away from zero.
// A non-positive grid falls back to domain.GridSize.
func Snap(v float64, grid int) int {
	if grid <= 0 {
		grid = domain.GridSize
	}
	return int(math.Round(v/float64(grid))) * grid
}

// SnapPoint centers an element of the given size on the pointer and snaps both axes independently.
func SnapPoint(pointer Pt, size Size, grid int) Position {
	return Position{
		X: Snap(pointer.X-size.W/2, grid),
		Y: Snap(pointer.Y-size.H/2, grid),
	}
}

// Controller tracks at most one in-progress drag. The zero value is not usable; call New.
// It is not safe for concurrent use.
type Controller struct {
	grid   int
	active bool
	id     string
	origin Position
	live   Position
}

// New returns an idle controller snapping to grid.
func New(grid int) *Controller {
	if grid <= 0 {
		grid = domain.GridSize
	}
	return &Controller{grid: grid}
}

// Grid returns the snapping quantum.
func (c *Controller) Grid() int { return c.grid }

// Start begins dragging element id from its current position. A second drag
// while one is active is refused with domain.ErrDragInProgress and leaves the
// active drag untouched.
func (c *Controller) Start(id string, x, y int) error {
	if c.active {
		return fmt.Errorf("start %s: %w (%s)", id, domain.ErrDragInProgress, c.id)
	}
	if id == "" {
		return fmt.Errorf("start: %w: empty id", domain.ErrInvalidValue)
	}
	c.active = true
	c.id = id
	c.origin = Position{X: x, Y: y}
	c.live = c.origin
	return nil
}

// Update recomputes the live position from the latest pointer sample. Each
// call fully supersedes the previous one. It reports false when idle.
func (c *Controller) Update(pointer Pt, size Size) (Position, bool) {
	if !c.active {
		return Position{}, false
	}
	c.live = SnapPoint(pointer, size, c.grid)
	return c.live, true
}

// End finishes the drag and returns the position to commit. It reports false when idle.
func (c *Controller) End() (Commit, bool) {
	if !c.active {
		return Commit{}, false
	}
	out := Commit{ID: c.id, Position: c.live}
	c.reset()
	return out, true
}

// Cancel abandons the drag; the element keeps its original position.
func (c *Controller) Cancel() (Commit, bool) {
	if !c.active {
		return Commit{}, false
	}
	out := Commit{ID: c.id, Position: c.origin}
	c.reset()
	return out, true
}

// Active returns the dragged element id and its live position.
func (c *Controller) Active() (string, Position, bool) {
	return c.id, c.live, c.active
}

func (c *Controller) reset() {
	c.active = false
	c.id = ""
	c.origin = Position{}
	c.live = Position{}
}
