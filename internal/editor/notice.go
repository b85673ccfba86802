/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

// ValidationError reports a user action that was rejected. The page is left
// as it was before the action.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Notice is the dismissible message shown after a rejected action.
type Notice struct {
	Title   string
	Message string
}

// Notice returns the pending message, if any.
func (e *Editor) Notice() (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.notice == nil {
		return Notice{}, false
	}
	return *e.notice, true
}

// DismissNotice clears the pending message.
func (e *Editor) DismissNotice() {
	e.mu.Lock()
	e.notice = nil
	e.mu.Unlock()
}
