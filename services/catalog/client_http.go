package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MarcGrol/shopcart/lib/myhttpclient"
	"github.com/MarcGrol/shopcart/lib/mylog"
	"github.com/MarcGrol/shopcart/lib/myvault"
)

type httpCatalog struct {
	baseURL string
	sender  myhttpclient.HTTPSender
	vault   myvault.VaultReader
	logger  mylog.Logger
}

// NewHTTPCatalog talks to a remote catalog at baseURL. The bearer token is read from the
// vault on every call so a rotated token is picked up without restart.
func NewHTTPCatalog(baseURL string, sender myhttpclient.HTTPSender, vault myvault.VaultReader) Catalog {
	return &httpCatalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		sender:  sender,
		vault:   vault,
		logger:  mylog.New("catalog"),
	}
}

func (cl *httpCatalog) GetStock(c context.Context, id int) (Stock, error) {
	stock := Stock{}
	err := cl.get(c, fmt.Sprintf("%s/stock/%d", cl.baseURL, id), &stock)
	if err != nil {
		return Stock{}, fmt.Errorf("error fetching stock %d: %w", id, err)
	}
	return stock, nil
}

func (cl *httpCatalog) GetProduct(c context.Context, id int) (Product, error) {
	product := Product{}
	err := cl.get(c, fmt.Sprintf("%s/products/%d", cl.baseURL, id), &product)
	if err != nil {
		return Product{}, fmt.Errorf("error fetching product %d: %w", id, err)
	}
	return product, nil
}

func (cl *httpCatalog) get(c context.Context, url string, result any) error {
	headers := http.Header{}
	if cl.vault != nil {
		token, exists, err := cl.vault.Get(c, myvault.CatalogToken)
		if err != nil {
			return fmt.Errorf("error fetching catalog token: %s", err)
		}
		if exists {
			headers.Set("Authorization", "Bearer "+token.AccessToken)
		}
	}

	httpStatus, body, err := cl.sender.Send(c, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	switch httpStatus {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrUnknownItem
	default:
		cl.logger.Log(c, "", mylog.SeverityWarn, "Unexpected status %d from %s: %s", httpStatus, url, body)
		return fmt.Errorf("unexpected http-status %d", httpStatus)
	}

	err = json.Unmarshal(body, result)
	if err != nil {
		return fmt.Errorf("error parsing response: %s", err)
	}
	return nil
}
