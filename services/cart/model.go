package cart

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/shopcart/services/catalog"
)

// Item is a catalog product with the quantity in the cart. Its json form flattens to
// {"id","title","price","image","amount"}.
type Item struct {
	catalog.Product
	Amount int `json:"amount"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Amount)))
}

// Cart keeps items in insertion order with at most one item per id
type Cart []Item

func (cart Cart) amountOf(id int) int {
	for _, item := range cart {
		if item.ID == id {
			return item.Amount
		}
	}
	return 0
}

func (cart Cart) clone() Cart {
	return append(Cart{}, cart...)
}

func (cart Cart) with(item Item) Cart {
	return append(cart.clone(), item)
}

// withAmount returns a copy where the item with id has the given amount. Other items are
// left untouched; an absent id yields an unchanged copy.
func (cart Cart) withAmount(id int, amount int) Cart {
	next := cart.clone()
	for idx := range next {
		if next[idx].ID == id {
			next[idx].Amount = amount
		}
	}
	return next
}

func (cart Cart) without(id int) Cart {
	next := Cart{}
	for _, item := range cart {
		if item.ID != id {
			next = append(next, item)
		}
	}
	return next
}

// Count is the sum of all amounts
func (cart Cart) Count() int {
	count := 0
	for _, item := range cart {
		count += item.Amount
	}
	return count
}

func (cart Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Snapshot is the persisted form of a cart
type Snapshot struct {
	Key       string
	Payload   string `datastore:",noindex"`
	UpdatedAt time.Time
}

func newSnapshot(key string, cart Cart, now time.Time) (Snapshot, error) {
	payload, err := json.Marshal(cart)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Key:       key,
		Payload:   string(payload),
		UpdatedAt: now,
	}, nil
}

func (s Snapshot) cart() (Cart, error) {
	cart := Cart{}
	err := json.Unmarshal([]byte(s.Payload), &cart)
	if err != nil {
		return nil, err
	}

	seen := map[int]bool{}
	for _, item := range cart {
		if item.Amount < 1 {
			return nil, fmt.Errorf("item %d has amount %d", item.ID, item.Amount)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("item %d occurs more than once", item.ID)
		}
		seen[item.ID] = true
	}

	return cart, nil
}
