package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownItem = errors.New("unknown item")
)

type Product struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

type Stock struct {
	ID        int `json:"id"`
	Available int `json:"amount"`
}

//go:generate mockgen -source=api.go -package catalog -destination catalog_mock.go Catalog
type Catalog interface {
	GetStock(c context.Context, id int) (Stock, error)
	GetProduct(c context.Context, id int) (Product, error)
}
