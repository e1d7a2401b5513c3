/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"errors"
	"fmt"
)

var (
	ErrSlotNotFound      = errors.New("slot not found")
	ErrPlacementNotFound = errors.New("placement not found")
)

// EditError reports a mutation addressed at something that does not exist.
// The document returned alongside it is always the unchanged input.
type EditError struct {
	Op          string
	Page, Slot  int
	PlacementID string
	Err         error
}

func (e *EditError) Error() string {
	if e.PlacementID != "" {
		return fmt.Sprintf("%s page=%d slot=%d placement=%s: %v", e.Op, e.Page, e.Slot, e.PlacementID, e.Err)
	}
	return fmt.Sprintf("%s page=%d slot=%d: %v", e.Op, e.Page, e.Slot, e.Err)
}

func (e *EditError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a not-found edit error of either kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSlotNotFound) || errors.Is(err, ErrPlacementNotFound)
}
