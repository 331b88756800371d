// Package sqldriver implements history.Driver over database/sql. The sqlite
// and postgres packages embed it with their own dialect.
package sqldriver

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/nihongo/pkg/history"
)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	Name string

	// Schema statements run in order at startup. They must be idempotent.
	Schema []string

	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

// QuestionMark renders "?" placeholders.
func QuestionMark(int) string { return "?" }

// Dollar renders "$n" placeholders.
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Driver implements history.Driver on a *sql.DB.
type Driver struct {
	DB      *sql.DB
	dialect Dialect
}

// New runs the dialect schema on db and returns a Driver that owns it.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate %s history schema: %w", dialect.Name, err)
		}
	}

	return &Driver{DB: db, dialect: dialect}, nil
}

func (d *Driver) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.dialect.Placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

func (d *Driver) Append(ctx context.Context, e *history.Entry) error {
	if err := history.Stamp(e); err != nil {
		return err
	}

	query := `INSERT INTO translations
		(id, query, output, provider, model, duration_ms, created_at)
		VALUES (` + d.placeholders(7) + `)`

	_, err := d.DB.ExecContext(ctx, query,
		e.ID,
		e.Query,
		e.Output,
		e.Provider,
		e.Model,
		e.Duration.Milliseconds(),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	return nil
}

func (d *Driver) List(ctx context.Context, limit int) ([]*history.Entry, error) {
	query := `SELECT id, query, output, provider, model, duration_ms, created_at
		FROM translations
		ORDER BY created_at DESC, id DESC`

	var args []any
	if limit > 0 {
		query += " LIMIT " + d.dialect.Placeholder(1)
		args = append(args, limit)
	}

	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*history.Entry
	for rows.Next() {
		var (
			e          history.Entry
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &e.Query, &e.Output, &e.Provider, &e.Model, &durationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

func (d *Driver) Clear(ctx context.Context) error {
	if _, err := d.DB.ExecContext(ctx, "DELETE FROM translations"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (d *Driver) Close() error {
	return d.DB.Close()
}
