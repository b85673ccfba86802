/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType     = errors.New("unknown element type")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrUnknownField    = errors.New("field does not apply to element type")
	ErrInvalidValue    = errors.New("invalid value")
	ErrNotContainer    = errors.New("element is not a container")
	ErrDragInProgress  = errors.New("another element is already being dragged")
)

func unknownType(s string) error { return fmt.Errorf("%w: %q", ErrUnknownType, s) }

func invalidValue(key string, v Value, why string) error {
	return fmt.Errorf("%w for %s (%s): %s", ErrInvalidValue, key, v, why)
}
