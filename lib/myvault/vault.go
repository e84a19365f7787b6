package myvault

import (
	"context"

	"github.com/MarcGrol/shopcart/lib/mystore"
)

const (
	CatalogToken = "catalogToken"
)

type Token struct {
	AccessToken string
	ExpiresIn   int
}

type VaultReader interface {
	Get(c context.Context, uid string) (Token, bool, error)
}

type Vault interface {
	VaultReader
	Put(c context.Context, uid string, value Token) error
}

func New(c context.Context) (Vault, func(), error) {
	return mystore.New[Token](c)
}

// Seed stores accessToken under uid unless it is empty
func Seed(c context.Context, vault Vault, uid string, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return vault.Put(c, uid, Token{AccessToken: accessToken})
}
