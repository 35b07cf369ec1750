package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/voidsort/pkg/pagination"
	"github.com/JaimeStill/voidsort/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapErrorNamesConstraint(t *testing.T) {
	err := repository.MapError(
		&pgconn.PgError{Code: "23505", ConstraintName: "builds_storage_key_key"},
		errNotFound, errDuplicate,
	)
	if !errors.Is(err, errDuplicate) {
		t.Fatalf("got %v, want errDuplicate", err)
	}
	if err.Error() != "duplicate: builds_storage_key_key" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"pgx no rows", pgx.ErrNoRows, errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if tt.name == "other pg error" {
				var pgErr *pgconn.PgError
				if !errors.As(got, &pgErr) {
					t.Errorf("got %v, want original pg error", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// listDriver answers COUNT statements with total and page statements with
// one row per id in page, recording every statement it receives.
type listDriver struct {
	total int64
	page  []int64
	seen  *[]string
}

func (d listDriver) Open(string) (driver.Conn, error) { return listConn{d}, nil }

type listConn struct{ d listDriver }

func (c listConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c listConn) Close() error                        { return nil }
func (c listConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c listConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	*c.d.seen = append(*c.d.seen, query)
	if strings.HasPrefix(query, "COUNT") {
		return &rows{values: []int64{c.d.total}}, nil
	}
	return &rows{values: c.d.page}, nil
}

type rows struct {
	values []int64
	i      int
}

func (r *rows) Columns() []string { return []string{"v"} }
func (r *rows) Close() error      { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.i >= len(r.values) {
		return io.EOF
	}
	dest[0] = r.values[r.i]
	r.i++
	return nil
}

type pager struct{}

func (pager) BuildCount() (string, []any) { return "COUNT", nil }

func (pager) BuildPage(page, size int) (string, []any) {
	return fmt.Sprintf("PAGE %d %d", page, size), nil
}

func scanInt(s repository.Scanner) (int64, error) {
	var v int64
	err := s.Scan(&v)
	return v, err
}

func openList(t *testing.T, d listDriver) *sql.DB {
	t.Helper()
	name := "list-" + t.Name()
	sql.Register(name, d)
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestQueryPage(t *testing.T) {
	var seen []string
	db := openList(t, listDriver{total: 5, page: []int64{3, 4}, seen: &seen})

	req := pagination.PageRequest{Page: 2, PageSize: 2}
	res, err := repository.QueryPage(context.Background(), db, pager{}, req, scanInt)
	if err != nil {
		t.Fatal(err)
	}

	if res.Total != 5 || res.TotalPages != 3 || res.Page != 2 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Data) != 2 || res.Data[0] != 3 {
		t.Errorf("data = %v", res.Data)
	}
	if len(seen) != 2 || seen[1] != "PAGE 2 2" {
		t.Errorf("statements = %q", seen)
	}
}

func TestQueryPageBeyondEnd(t *testing.T) {
	var seen []string
	db := openList(t, listDriver{total: 3, seen: &seen})

	req := pagination.PageRequest{Page: 4, PageSize: 2}
	res, err := repository.QueryPage(context.Background(), db, pager{}, req, scanInt)
	if err != nil {
		t.Fatal(err)
	}

	if res.Data == nil || len(res.Data) != 0 {
		t.Errorf("data = %v, want empty slice", res.Data)
	}
	if len(seen) != 1 {
		t.Errorf("page statement should be skipped, saw %q", seen)
	}
}
