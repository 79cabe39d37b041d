package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordingExecutor struct {
	queries []string
}

func (r *recordingExecutor) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	r.queries = append(r.queries, query)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *recordingExecutor) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	r.queries = append(r.queries, query)
	return errorRow{err: pgx.ErrNoRows}
}

func (r *recordingExecutor) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	r.queries = append(r.queries, query)
	return nil, errors.New("not implemented")
}

func TestExtractMarker(t *testing.T) {
	marker, body, err := ExtractMarker("\n--sql 0b0c9a3e-3f4c-4c8e-9a57-4e1d2a6f7b10\nSELECT 1\n")
	if err != nil {
		t.Fatalf("ExtractMarker: %v", err)
	}
	if marker != "0b0c9a3e-3f4c-4c8e-9a57-4e1d2a6f7b10" {
		t.Fatalf("marker = %q", marker)
	}
	if body != "SELECT 1" {
		t.Fatalf("body = %q", body)
	}
}

func TestExtractMarkerRejectsUnmarked(t *testing.T) {
	for _, q := range []string{"SELECT 1", "--sql not-a-uuid\nSELECT 1", ""} {
		if _, _, err := ExtractMarker(q); !errors.Is(err, ErrSQLMarker) {
			t.Fatalf("ExtractMarker(%q) err = %v, want ErrSQLMarker", q, err)
		}
	}
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	exec := &recordingExecutor{}
	runner := NewSQLRunner(exec, NopLogger())

	tag, err := runner.Exec(context.Background(), "--sql 0b0c9a3e-3f4c-4c8e-9a57-4e1d2a6f7b10\nINSERT INTO t VALUES (1)")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("RowsAffected = %d", tag.RowsAffected())
	}
	if len(exec.queries) != 1 || exec.queries[0] != "INSERT INTO t VALUES (1)" {
		t.Fatalf("forwarded queries = %#v", exec.queries)
	}

	if _, err := runner.Exec(context.Background(), "DELETE FROM t"); !errors.Is(err, ErrSQLMarker) {
		t.Fatalf("unmarked exec err = %v", err)
	}
	if err := runner.QueryRow(context.Background(), "SELECT 1").Scan(); !errors.Is(err, ErrSQLMarker) {
		t.Fatalf("unmarked query_row err = %v", err)
	}
	if len(exec.queries) != 1 {
		t.Fatalf("unmarked statements must not reach the database")
	}
}
