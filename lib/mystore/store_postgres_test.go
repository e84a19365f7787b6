package mystore

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostgresStore(t *testing.T) {
	c := context.TODO()

	t.Run("Put", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sut := newSQLStore[Reservation](db)

		mock.ExpectExec(regexp.QuoteMeta(upsertStatement)).
			WithArgs("Reservation", "123", `{"UID":"123","ItemID":1,"Published":false}`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = sut.Put(c, reservation.UID, reservation)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sut := newSQLStore[Reservation](db)

		mock.ExpectQuery(regexp.QuoteMeta(getStatement)).
			WithArgs("Reservation", "123").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"UID":"123","ItemID":1,"Published":false}`))

		got, found, err := sut.Get(c, "123")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, reservation, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sut := newSQLStore[Reservation](db)

		mock.ExpectQuery(regexp.QuoteMeta(getStatement)).
			WithArgs("Reservation", "999").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, found, err := sut.Get(c, "999")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("List and query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sut := newSQLStore[Reservation](db)

		mock.ExpectQuery(regexp.QuoteMeta(listStatement)).
			WithArgs("Reservation").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).
				AddRow(`{"UID":"123","ItemID":1,"Published":false}`).
				AddRow(`{"UID":"456","ItemID":2,"Published":true}`))

		got, err := sut.Query(c, []Filter{{Field: "Published", Compare: "=", Value: true}}, "")
		assert.NoError(t, err)
		assert.Equal(t, []Reservation{{UID: "456", ItemID: 2, Published: true}}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Transaction commits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sut := newSQLStore[Reservation](db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(upsertStatement)).
			WithArgs("Reservation", "123", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err = sut.RunInTransaction(c, func(c context.Context) error {
			return sut.Put(c, reservation.UID, reservation)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Transaction rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		sut := newSQLStore[Reservation](db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err = sut.RunInTransaction(c, func(c context.Context) error {
			return fmt.Errorf("boom")
		})
		assert.EqualError(t, err, "boom")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
