package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeResult is the canned answer to a query: columns and rows, or an error.
type fakeResult struct {
	cols []string
	rows [][]any
	err  error
}

type fakeMatch struct {
	fragment string
	result   fakeResult
}

// fakeDB answers Query with the first result whose SQL fragment appears in the
// statement; unmatched queries return no rows. Writes are not supported.
type fakeDB struct {
	mu      sync.Mutex
	matches []fakeMatch
	queries []string
}

func (f *fakeDB) on(fragment string, r fakeResult) *fakeDB {
	f.matches = append(f.matches, fakeMatch{fragment: fragment, result: r})
	return f
}

func (f *fakeDB) ran(fragment string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if strings.Contains(q, fragment) {
			return true
		}
	}
	return false
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, sql)
	for _, m := range f.matches {
		if strings.Contains(sql, m.fragment) {
			if m.result.err != nil {
				return nil, m.result.err
			}
			return &fakeRows{cols: m.result.cols, rows: m.result.rows, i: -1}, nil
		}
	}
	return &fakeRows{i: -1}, nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakeDB: exec not supported")
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeDB: transactions not supported")
}

// fakeRows scans canned values into pgx's struct targets by position.
type fakeRows struct {
	cols []string
	rows [][]any
	i    int
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	r.i++
	return r.i < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.i]
	if len(dest) != len(row) {
		return fmt.Errorf("fakeRows: %d targets for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.SetZero()
			continue
		}
		target.Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) { return r.rows[r.i], nil }
