/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errFakeRowScanMismatch = errors.New("scan destination count mismatch")
	errFakeUnexpectedSQL   = errors.New("unexpected sql")
)

// fakeRow assigns its values to the scan destinations by reflection.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	if len(dest) != len(r.values) {
		return fmt.Errorf("%w: dest=%d values=%d", errFakeRowScanMismatch, len(dest), len(r.values))
	}

	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()

		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}

		target.Set(reflect.ValueOf(r.values[i]))
	}

	return nil
}

type fakeRows struct {
	rows []fakeRow
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}

	r.pos++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return r.rows[r.pos-1].Scan(dest...)
}

type execCall struct {
	sql  string
	args []any
}

// fakeExecutor answers queries by matching a fragment of the SQL text.
type fakeExecutor struct {
	rows     map[string][]fakeRow // consumed in order per fragment
	query    map[string]*fakeRows
	execTag  string
	execErr  error
	execs    []execCall
	rowCalls []execCall
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		rows:    make(map[string][]fakeRow),
		query:   make(map[string]*fakeRows),
		execTag: "UPDATE 1",
	}
}

func (f *fakeExecutor) onRow(fragment string, row fakeRow) {
	f.rows[fragment] = append(f.rows[fragment], row)
}

func (f *fakeExecutor) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})

	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}

	return pgconn.NewCommandTag(f.execTag), nil
}

func (f *fakeExecutor) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	for fragment, rows := range f.query {
		if strings.Contains(sql, fragment) {
			return rows, nil
		}
	}

	return nil, errFakeUnexpectedSQL
}

func (f *fakeExecutor) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.rowCalls = append(f.rowCalls, execCall{sql: sql, args: args})

	for fragment, queued := range f.rows {
		if !strings.Contains(sql, fragment) || len(queued) == 0 {
			continue
		}

		f.rows[fragment] = queued[1:]

		return queued[0]
	}

	return fakeRow{err: pgx.ErrNoRows}
}
