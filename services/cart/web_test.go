package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopcart/lib/myevents"
	"github.com/MarcGrol/shopcart/lib/myhttp"
	"github.com/MarcGrol/shopcart/lib/mypublisher"
	"github.com/MarcGrol/shopcart/lib/mypubsub"
	"github.com/MarcGrol/shopcart/lib/mystore"
	"github.com/MarcGrol/shopcart/lib/mytime"
	"github.com/MarcGrol/shopcart/services/cart/cartevents"
	"github.com/MarcGrol/shopcart/services/catalog"
)

func setupWeb(t *testing.T) *mux.Router {
	c := context.TODO()
	ctrl := gomock.NewController(t)

	blobs, _, _ := mystore.NewInMemoryStore[Snapshot](c)
	notifier := NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	store, err := NewStore(c, DefaultKey, blobs, catalog.NewFakeCatalog(), notifier, nower, nil)
	assert.NoError(t, err)

	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().CreateTopic(gomock.Any(), cartevents.TopicName).Return(nil)
	subscriber := mypubsub.NewMockPubSub(ctrl)
	subscriber.EXPECT().Subscribe(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil)

	router := mux.NewRouter()
	err = NewWebService(store, NewFeed(publisher, subscriber)).RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return router
}

func call(t *testing.T, router *mux.Router, method string, path string, body io.Reader) *httptest.ResponseRecorder {
	request, err := http.NewRequest(method, path, body)
	assert.NoError(t, err)
	if method == http.MethodPut {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func amountBody(amount string) io.Reader {
	return strings.NewReader(url.Values{"amount": []string{amount}}.Encode())
}

func message(t *testing.T, response *httptest.ResponseRecorder) string {
	resp := myhttp.ErrorResponse{}
	err := json.Unmarshal(response.Body.Bytes(), &resp)
	assert.NoError(t, err)
	return resp.Message
}

func TestCartWebService(t *testing.T) {

	t.Run("empty cart", func(t *testing.T) {
		// given
		router := setupWeb(t)

		// when
		response := call(t, router, http.MethodGet, "/api/cart", nil)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"items":[],"count":0,"total":"0"}`, response.Body.String())
	})

	t.Run("add item", func(t *testing.T) {
		// given
		router := setupWeb(t)

		// when
		response := call(t, router, http.MethodPost, "/api/cart/items/1", nil)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "item added to cart", message(t, response))

		response = call(t, router, http.MethodGet, "/api/cart", nil)
		assert.JSONEq(t, `{
			"items":[{"id":1,"title":"Running shoe Vapor","price":"179.9","image":"/images/shoe-1.jpg","amount":1}],
			"count":1,
			"total":"179.9"
		}`, response.Body.String())
	})

	t.Run("add unknown item", func(t *testing.T) {
		// given
		router := setupWeb(t)

		// when
		response := call(t, router, http.MethodPost, "/api/cart/items/999", nil)

		// then
		assert.Equal(t, http.StatusBadGateway, response.Code)
		assert.Equal(t, "failed to add item", message(t, response))
	})

	t.Run("invalid item id", func(t *testing.T) {
		// given
		router := setupWeb(t)

		// when
		response := call(t, router, http.MethodPost, "/api/cart/items/abc", nil)

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("update amount", func(t *testing.T) {
		// given
		router := setupWeb(t)
		call(t, router, http.MethodPost, "/api/cart/items/1", nil)

		// when
		response := call(t, router, http.MethodPut, "/api/cart/items/1", amountBody("2"))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "item amount updated", message(t, response))
		response = call(t, router, http.MethodGet, "/api/cart", nil)
		assert.Contains(t, response.Body.String(), `"count": 2`)
	})

	t.Run("update amount out of stock", func(t *testing.T) {
		// given
		router := setupWeb(t)
		call(t, router, http.MethodPost, "/api/cart/items/1", nil)

		// when
		response := call(t, router, http.MethodPut, "/api/cart/items/1", amountBody("3"))

		// then
		assert.Equal(t, http.StatusConflict, response.Code)
		assert.Equal(t, "requested quantity not in stock", message(t, response))
	})

	t.Run("update amount invalid", func(t *testing.T) {
		// given
		router := setupWeb(t)

		// when
		zero := call(t, router, http.MethodPut, "/api/cart/items/1", amountBody("0"))
		garbage := call(t, router, http.MethodPut, "/api/cart/items/1", amountBody("many"))

		// then
		assert.Equal(t, http.StatusBadRequest, zero.Code)
		assert.Equal(t, "failed to update item amount", message(t, zero))
		assert.Equal(t, http.StatusBadRequest, garbage.Code)
	})

	t.Run("remove item", func(t *testing.T) {
		// given
		router := setupWeb(t)
		call(t, router, http.MethodPost, "/api/cart/items/2", nil)

		// when
		response := call(t, router, http.MethodDelete, "/api/cart/items/2", nil)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "item removed from cart", message(t, response))
	})

	t.Run("remove absent item", func(t *testing.T) {
		// given
		router := setupWeb(t)

		// when
		response := call(t, router, http.MethodDelete, "/api/cart/items/2", nil)

		// then
		assert.Equal(t, http.StatusNotFound, response.Code)
		assert.Equal(t, "failed to remove item", message(t, response))
	})

	t.Run("pushed notification shows up in feed", func(t *testing.T) {
		// given
		router := setupWeb(t)
		event := cartevents.Notified{UID: "abc", CartKey: DefaultKey, Operation: "add", ItemID: 1, Success: true, Message: "item added to cart", Timestamp: mytime.ExampleTime}
		payload, _ := json.Marshal(event)
		envelope, _ := json.Marshal(myevents.EventEnvelope{UID: "1", Topic: cartevents.TopicName, EventTypeName: event.GetEventTypeName(), EventPayload: string(payload)})
		push, _ := json.Marshal(myevents.PushRequest{Message: myevents.PushMessage{Data: envelope}})

		// when
		response := call(t, router, http.MethodPost, "/api/cart/events", bytes.NewReader(push))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		response = call(t, router, http.MethodGet, "/api/cart/notifications", nil)
		feed := NotificationsResponse{}
		assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &feed))
		assert.Equal(t, []cartevents.Notified{event}, feed.Notifications)
	})
}
