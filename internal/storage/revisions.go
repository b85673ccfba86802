/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(ts, label, page_blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestRevisionSQL = `SELECT id, ts, label, page_blob FROM revisions ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, ts, label, page_blob FROM revisions ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const deleteRevisionSQL = `DELETE FROM revisions WHERE id = ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM revisions WHERE id NOT IN (
	SELECT id FROM revisions ORDER BY ts DESC, id DESC LIMIT ?
)`

// tsLayout has a fixed width so ts columns sort chronologically as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Revision is one saved page state. Label names the change that followed it.
type Revision struct {
	ID    int64
	TS    time.Time
	Label string
	Page  domain.Page
}

// SaveRevision records page under label in the index of h.
func SaveRevision(ctx context.Context, h *DocumentHandle, label string, page domain.Page, ts time.Time) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	blob, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal revision: %w", err)
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertRevisionSQL, ts.UTC().Format(tsLayout), label, blob)
	return err
}

// LatestRevision returns the newest revision; ok is false when there is none.
func LatestRevision(ctx context.Context, h *DocumentHandle) (rev Revision, ok bool, err error) {
	if h == nil {
		return Revision{}, false, errors.New("nil DocumentHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return Revision{}, false, err
	}
	defer func() { _ = db.Close() }()
	rev, err = scanRevision(db.QueryRowContext(ctx, selectLatestRevisionSQL))
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, err
	}
	return rev, true, nil
}

// ListRevisions returns up to limit revisions, newest first.
func ListRevisions(ctx context.Context, h *DocumentHandle, limit int) ([]Revision, error) {
	if h == nil {
		return nil, errors.New("nil DocumentHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listRevisionsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// DeleteRevision removes one revision by id.
func DeleteRevision(ctx context.Context, h *DocumentHandle, id int64) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, deleteRevisionSQL, id)
	return err
}

// PruneRevisions keeps the keepLast newest revisions and deletes the rest.
func PruneRevisions(ctx context.Context, h *DocumentHandle, keepLast int) (int64, error) {
	if h == nil {
		return 0, errors.New("nil DocumentHandle")
	}
	if keepLast < 0 {
		keepLast = 0
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneRevisionsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(r rowScanner) (Revision, error) {
	var (
		rev  Revision
		ts   string
		blob []byte
	)
	if err := r.Scan(&rev.ID, &ts, &rev.Label, &blob); err != nil {
		return Revision{}, err
	}
	t, err := time.Parse(tsLayout, ts)
	if err != nil {
		return Revision{}, fmt.Errorf("parse revision %d ts: %w", rev.ID, err)
	}
	rev.TS = t
	if err := json.Unmarshal(blob, &rev.Page); err != nil {
		return Revision{}, fmt.Errorf("decode revision %d: %w", rev.ID, err)
	}
	return rev, nil
}
