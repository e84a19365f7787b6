package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/shopcart/lib/mystore"
)

// DemoProducts and DemoStock seed the fake catalog
var (
	DemoProducts = []Product{
		{ID: 1, Title: "Running shoe Vapor", Price: decimal.RequireFromString("179.9"), Image: "/images/shoe-1.jpg"},
		{ID: 2, Title: "Trail shoe Ridge", Price: decimal.RequireFromString("139.9"), Image: "/images/shoe-2.jpg"},
		{ID: 3, Title: "Walking shoe Stroll", Price: decimal.RequireFromString("99.9"), Image: "/images/shoe-3.jpg"},
		{ID: 4, Title: "Court shoe Rally", Price: decimal.RequireFromString("119.5"), Image: "/images/shoe-4.jpg"},
		{ID: 5, Title: "Sandal Breeze", Price: decimal.RequireFromString("49.99"), Image: "/images/shoe-5.jpg"},
		{ID: 6, Title: "Boot Summit", Price: decimal.RequireFromString("229"), Image: "/images/shoe-6.jpg"},
	}
	DemoStock = []Stock{
		{ID: 1, Available: 3},
		{ID: 2, Available: 5},
		{ID: 3, Available: 2},
		{ID: 4, Available: 1},
		{ID: 5, Available: 5},
		{ID: 6, Available: 10},
	}
)

type FakeCatalog struct {
	Products *mystore.InMemoryStore[Product]
	Stock    *mystore.InMemoryStore[Stock]
}

func NewFakeCatalog() *FakeCatalog {
	c := context.Background()
	products, _, _ := mystore.NewInMemoryStore[Product](c)
	stock, _, _ := mystore.NewInMemoryStore[Stock](c)
	for _, p := range DemoProducts {
		products.Put(c, strconv.Itoa(p.ID), p)
	}
	for _, s := range DemoStock {
		stock.Put(c, strconv.Itoa(s.ID), s)
	}
	return &FakeCatalog{
		Products: products,
		Stock:    stock,
	}
}

func (f *FakeCatalog) GetStock(c context.Context, id int) (Stock, error) {
	stock, exists, err := f.Stock.Get(c, strconv.Itoa(id))
	if err != nil {
		return Stock{}, err
	}
	if !exists {
		return Stock{}, fmt.Errorf("%w: stock %d", ErrUnknownItem, id)
	}
	return stock, nil
}

func (f *FakeCatalog) GetProduct(c context.Context, id int) (Product, error) {
	product, exists, err := f.Products.Get(c, strconv.Itoa(id))
	if err != nil {
		return Product{}, err
	}
	if !exists {
		return Product{}, fmt.Errorf("%w: product %d", ErrUnknownItem, id)
	}
	return product, nil
}

// SetStock overrides the available quantity of id
func (f *FakeCatalog) SetStock(c context.Context, id int, available int) error {
	return f.Stock.Put(c, strconv.Itoa(id), Stock{ID: id, Available: available})
}
