package mystore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type ctxTransactionKey struct{}

type Filter struct {
	Field   string
	Compare string
	Value   any
}

type Store[T any] interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	List(c context.Context) ([]T, error)
	Query(c context.Context, filters []Filter, orderByField string) ([]T, error)
}

// New picks the backend from the environment: gcloud datastore, redis, postgres and
// finally an in-memory map for local development and tests.
func New[T any](c context.Context) (Store[T], func(), error) {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return newGcloudStore[T](c)
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return newRedisStore[T](c, addr)
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return newPostgresStore[T](c, dsn)
	}

	return NewInMemoryStore[T](c)
}

// kindOf derives the entity kind from the type name: mystore.Store[cart.Snapshot] -> "Snapshot"
func kindOf[T any]() string {
	val := new(T)
	kind := fmt.Sprintf("%T", *val)
	if idx := strings.LastIndex(kind, "."); idx >= 0 {
		kind = kind[idx+1:]
	}
	return kind
}
