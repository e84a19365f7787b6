package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestCatalogWebService(t *testing.T) {
	c := context.Background()

	serve := func(method string, path string) *httptest.ResponseRecorder {
		router := mux.NewRouter()
		NewWebService(NewFakeCatalog(), nil).RegisterEndpoints(c, router)
		request, _ := http.NewRequest(method, path, nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)
		return response
	}

	t.Run("stock", func(t *testing.T) {
		response := serve(http.MethodGet, "/stock/3")

		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"id":3,"amount":2}`, response.Body.String())
	})

	t.Run("product", func(t *testing.T) {
		response := serve(http.MethodGet, "/products/1")

		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"id":1,"title":"Running shoe Vapor","price":"179.9","image":"/images/shoe-1.jpg"}`, response.Body.String())
	})

	t.Run("unknown item", func(t *testing.T) {
		response := serve(http.MethodGet, "/stock/42")

		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		response := serve(http.MethodGet, "/products/abc")

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})
}
