// Package repository provides generic helpers for typed row scanning, paged
// listings, and mapping driver errors to domain sentinels.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/voidsort/pkg/pagination"
)

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner abstracts row scanning for use with query helpers.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts a Scanner into a typed value.
type ScanFunc[T any] func(Scanner) (T, error)

// Pager renders the count and page statements of one filtered listing.
// *query.Builder implements it.
type Pager interface {
	BuildCount() (string, []any)
	BuildPage(page, pageSize int) (string, []any)
}

// QueryOne scans the single row returned by query. A missing row surfaces as
// sql.ErrNoRows for MapError to translate.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row returned by query. No rows yields an empty,
// non-nil slice.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

// QueryPage counts the rows matched by p and scans the requested page of
// them. req must already be normalized.
func QueryPage[T any](
	ctx context.Context,
	q Querier,
	p Pager,
	req pagination.PageRequest,
	scan ScanFunc[T],
) (pagination.PageResult[T], error) {
	countSQL, countArgs := p.BuildCount()

	var total int
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return pagination.PageResult[T]{}, fmt.Errorf("count: %w", err)
	}

	var items []T
	if total > req.Offset() {
		pageSQL, pageArgs := p.BuildPage(req.Page, req.PageSize)

		var err error
		items, err = QueryMany(ctx, q, pageSQL, pageArgs, scan)
		if err != nil {
			return pagination.PageResult[T]{}, fmt.Errorf("page: %w", err)
		}
	}

	return pagination.NewPageResult(items, total, req.Page, req.PageSize), nil
}
