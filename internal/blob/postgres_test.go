package blob

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresStoreWithDB(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestPostgresStoreLoad(t *testing.T) {
	store, mock, cleanup := newPostgresMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"doc"}).AddRow([]byte(`[{"code":"ENG_TC_101"}]`))
	mock.ExpectQuery("SELECT doc FROM collection_documents").
		WithArgs("courses").
		WillReturnRows(rows)

	doc, err := store.Load(context.Background(), "courses")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"code":"ENG_TC_101"}]`, string(doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLoadMissing(t *testing.T) {
	store, mock, cleanup := newPostgresMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT doc FROM collection_documents").
		WithArgs("students").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	_, err := store.Load(context.Background(), "students")
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSave(t *testing.T) {
	store, mock, cleanup := newPostgresMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO collection_documents").
		WithArgs("enrollments", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), "enrollments", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
