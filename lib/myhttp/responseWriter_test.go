package myhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/shopcart/lib/myerrors"
	"github.com/MarcGrol/shopcart/lib/mylog"
)

func TestResponseWriter(t *testing.T) {
	c := context.TODO()
	sut := NewWriter(mylog.New("myhttp"))

	t.Run("Write error", func(t *testing.T) {
		response := httptest.NewRecorder()

		sut.WriteError(c, response, 3, myerrors.NewConflictError(fmt.Errorf("requested quantity not in stock")))

		assert.Equal(t, http.StatusConflict, response.Code)
		assert.Equal(t, "application/json", response.Header().Get("Content-Type"))
		resp := ErrorResponse{}
		err := json.Unmarshal(response.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, ErrorResponse{ErrorCode: 3, Message: "status: 409, err: requested quantity not in stock"}, resp)
	})

	t.Run("Write success", func(t *testing.T) {
		response := httptest.NewRecorder()

		sut.Write(c, response, http.StatusOK, SuccessResponse{Message: "item added to cart"})

		assert.Equal(t, http.StatusOK, response.Code)
		resp := SuccessResponse{}
		err := json.Unmarshal(response.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, "item added to cart", resp.Message)
	})
}
