package mystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const (
	createTableStatement = `CREATE TABLE IF NOT EXISTS entities (
	kind  TEXT NOT NULL,
	uid   TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (kind, uid)
)`
	upsertStatement = `INSERT INTO entities (kind, uid, value) VALUES ($1, $2, $3)
ON CONFLICT (kind, uid) DO UPDATE SET value = EXCLUDED.value`
	getStatement  = `SELECT value FROM entities WHERE kind = $1 AND uid = $2`
	listStatement = `SELECT value FROM entities WHERE kind = $1 ORDER BY uid`
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(c context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(c context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(c context.Context, query string, args ...any) *sql.Row
}

type postgresStore[T any] struct {
	db   *sql.DB
	kind string
}

func newPostgresStore[T any](c context.Context, dsn string) (*postgresStore[T], func(), error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening postgres: %s", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.PingContext(c)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error connecting to postgres: %s", err)
	}

	_, err = db.ExecContext(c, createTableStatement)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error creating entities table: %s", err)
	}

	return newSQLStore[T](db), func() {
		db.Close()
	}, nil
}

func newSQLStore[T any](db *sql.DB) *postgresStore[T] {
	return &postgresStore[T]{
		db:   db,
		kind: kindOf[T](),
	}
}

func (s *postgresStore[T]) conn(c context.Context) queryer {
	tx, ok := c.Value(ctxTransactionKey{}).(*sql.Tx)
	if ok {
		return tx
	}
	return s.db
}

func (s *postgresStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	tx, err := s.db.BeginTx(c, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction on %s: %s", s.kind, err)
	}

	err = f(context.WithValue(c, ctxTransactionKey{}, tx))
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			return fmt.Errorf("%w (rollback failed: %s)", err, rollbackErr)
		}
		return err
	}

	return tx.Commit()
}

func (s *postgresStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error serializing %s with uid %s: %s", s.kind, uid, err)
	}

	_, err = s.conn(c).ExecContext(c, upsertStatement, s.kind, uid, string(data))
	if err != nil {
		return fmt.Errorf("error storing %s with uid %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *postgresStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T
	var data string

	err := s.conn(c).QueryRowContext(c, getStatement, s.kind, uid).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("error fetching %s with uid %s: %s", s.kind, uid, err)
	}

	err = json.Unmarshal([]byte(data), &value)
	if err != nil {
		return value, false, fmt.Errorf("error parsing %s with uid %s: %s", s.kind, uid, err)
	}
	return value, true, nil
}

func (s *postgresStore[T]) List(c context.Context) ([]T, error) {
	rows, err := s.conn(c).QueryContext(c, listStatement, s.kind)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %s", s.kind, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var data string
		err = rows.Scan(&data)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %s", s.kind, err)
		}

		var value T
		err = json.Unmarshal([]byte(data), &value)
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %s", s.kind, err)
		}
		result = append(result, value)
	}

	return result, rows.Err()
}

func (s *postgresStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}
	return filter(all, filters), nil
}
