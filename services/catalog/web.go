package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopcart/lib/mycontext"
	"github.com/MarcGrol/shopcart/lib/myerrors"
	"github.com/MarcGrol/shopcart/lib/myhttp"
	"github.com/MarcGrol/shopcart/lib/mylog"
	"github.com/MarcGrol/shopcart/lib/myvault"
)

type webService struct {
	catalog Catalog
	vault   myvault.VaultReader
	logger  mylog.Logger
}

// NewWebService exposes catalog over http. When the vault holds a catalog token, callers
// must present it as bearer token.
func NewWebService(catalog Catalog, vault myvault.VaultReader) *webService {
	return &webService{
		catalog: catalog,
		vault:   vault,
		logger:  mylog.New("catalog"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/stock/{id}", s.getStock()).Methods("GET")
	router.HandleFunc("/products/{id}", s.getProduct()).Methods("GET")
}

func (s *webService) getStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := s.parseRequest(c, r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		stock, err := s.catalog.GetStock(c, id)
		if err != nil {
			responseWriter.WriteError(c, w, 2, classify(err))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, stock)
	}
}

func (s *webService) getProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := s.parseRequest(c, r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		product, err := s.catalog.GetProduct(c, id)
		if err != nil {
			responseWriter.WriteError(c, w, 2, classify(err))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, product)
	}
}

func (s *webService) parseRequest(c context.Context, r *http.Request) (int, error) {
	err := s.authorize(c, r)
	if err != nil {
		return 0, err
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, myerrors.NewInvalidInputErrorf("invalid item id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

func (s *webService) authorize(c context.Context, r *http.Request) error {
	if s.vault == nil {
		return nil
	}
	token, exists, err := s.vault.Get(c, myvault.CatalogToken)
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	if !exists {
		return nil
	}
	if r.Header.Get("Authorization") != "Bearer "+token.AccessToken {
		return myerrors.NewAuthenticationError(fmt.Errorf("missing or invalid bearer token"))
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, ErrUnknownItem) {
		return myerrors.NewNotFoundError(err)
	}
	return myerrors.NewInternalError(err)
}
