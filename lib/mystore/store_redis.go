package mystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

// redisStore keeps every entity as a JSON string under "<kind>:<uid>"
type redisStore[T any] struct {
	sync.Mutex
	client *redis.Client
	kind   string
}

func newRedisStore[T any](c context.Context, addr string) (*redisStore[T], func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})
	err := client.Ping(c).Err()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error connecting to redis on %s: %s", addr, err)
	}

	return NewRedisStore[T](client), func() {
		client.Close()
	}, nil
}

func NewRedisStore[T any](client *redis.Client) *redisStore[T] {
	return &redisStore[T]{
		client: client,
		kind:   kindOf[T](),
	}
}

func (s *redisStore[T]) key(uid string) string {
	return s.kind + ":" + uid
}

// RunInTransaction serializes callers within this process only: redis has no
// interactive transactions that span arbitrary reads and writes.
func (s *redisStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	s.Lock()
	defer s.Unlock()

	return f(context.WithValue(c, ctxTransactionKey{}, s.kind))
}

func (s *redisStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error serializing %s with uid %s: %s", s.kind, uid, err)
	}

	err = s.client.Set(c, s.key(uid), data, 0).Err()
	if err != nil {
		return fmt.Errorf("error storing %s with uid %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *redisStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	data, err := s.client.Get(c, s.key(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("error fetching %s with uid %s: %s", s.kind, uid, err)
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, false, fmt.Errorf("error parsing %s with uid %s: %s", s.kind, uid, err)
	}
	return value, true, nil
}

func (s *redisStore[T]) List(c context.Context) ([]T, error) {
	result := []T{}

	iter := s.client.Scan(c, 0, s.kind+":*", scanBatchSize).Iterator()
	for iter.Next(c) {
		data, err := s.client.Get(c, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// deleted between scan and get
				continue
			}
			return nil, fmt.Errorf("error fetching %s: %s", iter.Val(), err)
		}

		var value T
		err = json.Unmarshal(data, &value)
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %s", iter.Val(), err)
		}
		result = append(result, value)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning %s: %s", s.kind, err)
	}

	return result, nil
}

func (s *redisStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}
	return filter(all, filters), nil
}
