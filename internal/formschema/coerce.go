/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package formschema

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"pagebuilder/internal/domain"
)

var (
	hexColor      = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	leadingNumber = regexp.MustCompile(`^[+-]?\d+`)
)

// Coerce converts raw widget input into the value stored for f.
// Number inputs take the leading integer of raw and fall back to 0 when there
// is none. Select inputs must match one of the field's options. Color inputs
// must be #rgb or #rrggbb.
func Coerce(f Field, raw string) (domain.Value, error) {
	switch f.Kind {
	case KindNumber:
		m := leadingNumber.FindString(strings.TrimSpace(raw))
		if m == "" {
			return domain.Num(0), nil
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return domain.Value{}, fmt.Errorf("%w for %s: %v", domain.ErrInvalidValue, f.Key, err)
		}
		return domain.Num(n), nil
	case KindSelect:
		if !slices.Contains(f.Options, raw) {
			return domain.Value{}, fmt.Errorf("%w for %s: %q is not one of %s", domain.ErrInvalidValue, f.Key, raw, strings.Join(f.Options, ", "))
		}
		if f.Value.IsNum() {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return domain.Value{}, fmt.Errorf("%w for %s: %v", domain.ErrInvalidValue, f.Key, err)
			}
			return domain.Num(n), nil
		}
		return domain.Str(raw), nil
	case KindColor:
		c := strings.TrimSpace(raw)
		if !hexColor.MatchString(c) {
			return domain.Value{}, fmt.Errorf("%w for %s: %q is not a hex color", domain.ErrInvalidValue, f.Key, raw)
		}
		return domain.Str(strings.ToLower(c)), nil
	default:
		return domain.Str(raw), nil
	}
}
