package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MarcGrol/shopcart/lib/mylog"
	"github.com/MarcGrol/shopcart/lib/mymetrics"
	"github.com/MarcGrol/shopcart/lib/mystore"
	"github.com/MarcGrol/shopcart/lib/mytime"
	"github.com/MarcGrol/shopcart/services/catalog"
)

const (
	DefaultKey = "shopcart:cart"

	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
)

type UpdateAmountRequest struct {
	ID     int
	Amount int
}

// Store owns one cart. Every mutation holds the lock from the first remote read until the
// commit, so concurrent mutations cannot lose each other's updates.
type Store struct {
	mu       sync.Mutex
	key      string
	blobs    mystore.Store[Snapshot]
	catalog  catalog.Catalog
	notifier Notifier
	nower    mytime.Nower
	metrics  *mymetrics.OperationMetrics
	logger   mylog.Logger
	cart     Cart
}

// NewStore rehydrates the cart stored under key. An absent or unreadable snapshot yields
// an empty cart; a failing blob store is reported.
func NewStore(c context.Context, key string, blobs mystore.Store[Snapshot], products catalog.Catalog, notifier Notifier, nower mytime.Nower, metrics *mymetrics.OperationMetrics) (*Store, error) {
	s := &Store{
		key:      key,
		blobs:    blobs,
		catalog:  products,
		notifier: notifier,
		nower:    nower,
		metrics:  metrics,
		logger:   mylog.New("cart"),
		cart:     Cart{},
	}

	snapshot, exists, err := blobs.Get(c, key)
	if err != nil {
		return nil, fmt.Errorf("error loading cart %s: %s", key, err)
	}
	if !exists {
		return s, nil
	}

	cart, err := snapshot.cart()
	if err != nil {
		s.logger.Log(c, key, mylog.SeverityWarn, "Ignoring unreadable snapshot: %s", err)
		return s, nil
	}
	s.cart = cart

	return s, nil
}

// Cart returns a copy of the current cart
func (s *Store) Cart(c context.Context) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.clone()
}

func (s *Store) AddItem(c context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := s.addItem(c, id)
	return s.report(c, opAdd, id, msgItemAdded, err, start)
}

func (s *Store) addItem(c context.Context, id int) error {
	stock, err := s.catalog.GetStock(c, id)
	if err != nil {
		return fetchFailed(msgAddFailed, err)
	}

	current := s.cart.amountOf(id)
	if stock.Available < current+1 {
		return outOfStock()
	}

	if current > 0 {
		return s.commit(c, s.cart.withAmount(id, current+1), msgAddFailed)
	}

	product, err := s.catalog.GetProduct(c, id)
	if err != nil {
		return fetchFailed(msgAddFailed, err)
	}
	product.ID = id

	return s.commit(c, s.cart.with(Item{Product: product, Amount: 1}), msgAddFailed)
}

func (s *Store) RemoveItem(c context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := s.removeItem(c, id)
	return s.report(c, opRemove, id, msgItemRemoved, err, start)
}

func (s *Store) removeItem(c context.Context, id int) error {
	next := s.cart.without(id)
	if len(next) == len(s.cart) {
		return notFound(msgRemoveFailed)
	}

	return s.commit(c, next, msgRemoveFailed)
}

func (s *Store) UpdateAmount(c context.Context, req UpdateAmountRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := s.updateAmount(c, req)
	return s.report(c, opUpdate, req.ID, msgAmountUpdated, err, start)
}

func (s *Store) updateAmount(c context.Context, req UpdateAmountRequest) error {
	if req.Amount <= 0 {
		return invalidAmount(msgUpdateFailed)
	}

	stock, err := s.catalog.GetStock(c, req.ID)
	if err != nil {
		return fetchFailed(msgUpdateFailed, err)
	}

	if stock.Available <= req.Amount {
		return outOfStock()
	}

	return s.commit(c, s.cart.withAmount(req.ID, req.Amount), msgUpdateFailed)
}

// commit persists next and only then makes it the current cart
func (s *Store) commit(c context.Context, next Cart, failureMessage string) error {
	snapshot, err := newSnapshot(s.key, next, s.nower.Now())
	if err != nil {
		return storageFailed(failureMessage, err)
	}

	err = s.blobs.Put(c, s.key, snapshot)
	if err != nil {
		return storageFailed(failureMessage, err)
	}

	s.cart = next

	return nil
}

func (s *Store) report(c context.Context, operation string, id int, successMessage string, err error, start time.Time) error {
	notification := Notification{
		Operation: operation,
		ItemID:    id,
		Success:   err == nil,
		Message:   successMessage,
	}
	if err != nil {
		notification.Message = Message(err)
		s.logger.Log(c, s.key, mylog.SeverityWarn, "%s of item %d failed: %s", operation, id, err)
	} else {
		s.logger.Log(c, s.key, mylog.SeverityInfo, "%s of item %d succeeded", operation, id)
	}

	if s.metrics != nil {
		s.metrics.Observe(operation, outcomeOf(err), start)
	}

	notifyErr := s.notifier.Notify(c, notification)
	if notifyErr != nil {
		s.logger.Log(c, s.key, mylog.SeverityError, "Error notifying %q: %s", notification.Message, notifyErr)
	}

	return err
}
