/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements page persistence and history.
// It handles create/open/save for the canonical JSON manifest (page.json) with transactional writes and timestamped backups.
// It also manages the per-page embedded SQLite index at <root>/.pb/index.sqlite that keeps saved revisions for undo across sessions.
// The index only holds history and can be deleted without losing the page.
package storage
