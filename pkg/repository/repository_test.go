package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")
	check := &pgconn.PgError{Code: "23514"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", errors.Join(errors.New("scan"), sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"parent deleted", &pgconn.PgError{Code: "23503"}, errNotFound},
		{"check violation passes through", check, check},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.MapError(tt.err, errNotFound, errDuplicate); got != tt.want {
				t.Errorf("MapError = %v, want %v", got, tt.want)
			}
		})
	}
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func scanName(s repository.Scanner) (string, error) {
	var name string
	err := s.Scan(&name)
	return name, err
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO prompts").WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("triage"))
		mock.ExpectCommit()

		got, err := repository.WithTx(ctx, db, func(tx *sql.Tx) (string, error) {
			return repository.QueryOne(ctx, tx, "INSERT INTO prompts(name) VALUES ($1) RETURNING name", []any{"triage"}, scanName)
		})
		if err != nil || got != "triage" {
			t.Fatalf("got %q, %v", got, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		_, err := repository.WithTx(ctx, db, func(tx *sql.Tx) (struct{}, error) {
			return struct{}{}, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestQueryMany(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT name").WillReturnRows(sqlmock.NewRows([]string{"name"}))

	got, err := repository.QueryMany(context.Background(), db, "SELECT name FROM prompts", nil, scanName)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
}

func TestExecExpectOne(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("DELETE FROM clinical_summaries").WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM clinical_summaries").WithArgs("b").WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	q := "DELETE FROM clinical_summaries WHERE id = $1"

	if err := repository.ExecExpectOne(ctx, db, q, "a"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("no rows affected: err = %v", err)
	}
	if err := repository.ExecExpectOne(ctx, db, q, "b"); err != nil {
		t.Errorf("one row affected: err = %v", err)
	}
}

func TestQueryPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	proj := query.NewProjectionMap("public", "prompts", "p").
		Project("id", "ID").
		Project("name", "Name")
	qb := query.NewBuilder(proj, query.SortField{Field: "Name"})

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM public.prompts p`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT p.id, p.name FROM public.prompts p ORDER BY p.name DESC LIMIT 2 OFFSET 2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("3", "chat"))

	page := pagination.PageRequest{Page: 2, PageSize: 2, Sort: query.ParseSortFields("-name")}
	result, err := repository.QueryPage(context.Background(), db, qb, page, func(s repository.Scanner) (string, error) {
		var id, name string
		err := s.Scan(&id, &name)
		return name, err
	})
	if err != nil {
		t.Fatalf("QueryPage: %v", err)
	}
	if result.Total != 3 || result.TotalPages != 2 || len(result.Data) != 1 || result.Data[0] != "chat" {
		t.Errorf("result = %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
