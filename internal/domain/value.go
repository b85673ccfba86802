/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"strconv"
)

// Value is a single attribute value: either a string or an integer.
// It replaces untyped values between the form, the store and the renderers.
type Value struct {
	num   int
	str   string
	isNum bool
}

// Str wraps a string attribute value.
func Str(s string) Value { return Value{str: s} }

// Num wraps an integer attribute value.
func Num(n int) Value { return Value{num: n, isNum: true} }

func (v Value) IsNum() bool { return v.isNum }

// Text returns the value as a string; integers are formatted in base 10.
func (v Value) Text() string {
	if v.isNum {
		return strconv.Itoa(v.num)
	}
	return v.str
}

// Int returns the integer payload and whether the value is numeric.
func (v Value) Int() (int, bool) { return v.num, v.isNum }

func (v Value) String() string {
	if v.isNum {
		return strconv.Itoa(v.num)
	}
	return strconv.Quote(v.str)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*v = Num(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = Str(s)
	return nil
}

// Equal reports whether v and o hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.isNum != o.isNum {
		return false
	}
	if v.isNum {
		return v.num == o.num
	}
	return v.str == o.str
}
