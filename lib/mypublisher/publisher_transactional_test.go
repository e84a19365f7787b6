package mypublisher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopcart/lib/myevents"
	"github.com/MarcGrol/shopcart/lib/mypubsub"
	"github.com/MarcGrol/shopcart/lib/myqueue"
	"github.com/MarcGrol/shopcart/lib/mystore"
	"github.com/MarcGrol/shopcart/lib/mytime"
)

type itemAdded struct {
	CartKey string
	ItemID  int
}

func (e itemAdded) GetEventTypeName() string { return "cart.itemAdded" }
func (e itemAdded) GetAggregateName() string { return e.CartKey }

func setup(t *testing.T) (*TransactionalPublisher, mystore.Store[myevents.EventEnvelope], *mypubsub.MockPubSub, *myqueue.MockTaskQueuer) {
	ctrl := gomock.NewController(t)
	outbox, _, _ := mystore.NewInMemoryStore[myevents.EventEnvelope](context.TODO())
	pubsub := mypubsub.NewMockPubSub(ctrl)
	queue := myqueue.NewMockTaskQueuer(ctrl)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	return New(outbox, pubsub, queue, nower), outbox, pubsub, queue
}

func TestPublish(t *testing.T) {
	c := context.TODO()

	t.Run("stores envelope and enqueues trigger", func(t *testing.T) {
		// given
		sut, outbox, _, queue := setup(t)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, task myqueue.Task) error {
			assert.Equal(t, fmt.Sprintf("/pubsub/cart/%s", task.UID), task.WebhookURLPath)
			return nil
		})

		// when
		err := sut.Publish(c, "cart", itemAdded{CartKey: "shopcart:cart", ItemID: 1})

		// then
		assert.NoError(t, err)
		envelopes, err := outbox.List(c)
		assert.NoError(t, err)
		assert.Len(t, envelopes, 1)
		assert.Equal(t, "cart", envelopes[0].Topic)
		assert.Equal(t, "cart.itemAdded", envelopes[0].EventTypeName)
		assert.Equal(t, "shopcart:cart", envelopes[0].AggregateUID)
		assert.Equal(t, `{"CartKey":"shopcart:cart","ItemID":1}`, envelopes[0].EventPayload)
		assert.Equal(t, mytime.ExampleTime, envelopes[0].CreatedAt)
		assert.False(t, envelopes[0].Published)
	})

	t.Run("same event twice yields one envelope", func(t *testing.T) {
		// given
		sut, outbox, _, queue := setup(t)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		// when
		err1 := sut.Publish(c, "cart", itemAdded{CartKey: "shopcart:cart", ItemID: 1})
		err2 := sut.Publish(c, "cart", itemAdded{CartKey: "shopcart:cart", ItemID: 1})

		// then
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		envelopes, _ := outbox.List(c)
		assert.Len(t, envelopes, 1)
	})

	t.Run("queue failure", func(t *testing.T) {
		// given
		sut, _, _, queue := setup(t)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(fmt.Errorf("queue down"))

		// when
		err := sut.Publish(c, "cart", itemAdded{CartKey: "shopcart:cart", ItemID: 1})

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "queue down")
	})
}

func TestTrigger(t *testing.T) {
	c := context.TODO()

	t.Run("publishes pending envelopes", func(t *testing.T) {
		// given
		sut, outbox, pubsub, queue := setup(t)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		pubsub.EXPECT().Publish(gomock.Any(), "cart", gomock.Any()).Return(nil)
		err := sut.Publish(c, "cart", itemAdded{CartKey: "shopcart:cart", ItemID: 2})
		assert.NoError(t, err)
		envelopes, _ := outbox.List(c)

		router := mux.NewRouter()
		sut.RegisterEndpoints(c, router)
		request, _ := http.NewRequest(http.MethodPut, "/pubsub/cart/"+envelopes[0].UID, nil)
		response := httptest.NewRecorder()

		// when
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Published 1 events")
		envelopes, _ = outbox.List(c)
		assert.True(t, envelopes[0].Published)
	})

	t.Run("pubsub failure leaves envelope pending", func(t *testing.T) {
		// given
		sut, outbox, pubsub, queue := setup(t)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		pubsub.EXPECT().Publish(gomock.Any(), "cart", gomock.Any()).Return(fmt.Errorf("pubsub down"))
		err := sut.Publish(c, "cart", itemAdded{CartKey: "shopcart:cart", ItemID: 3})
		assert.NoError(t, err)

		router := mux.NewRouter()
		sut.RegisterEndpoints(c, router)
		request, _ := http.NewRequest(http.MethodPut, "/pubsub/cart/xyz", nil)
		response := httptest.NewRecorder()

		// when
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		envelopes, _ := outbox.List(c)
		assert.False(t, envelopes[0].Published)
	})
}
