package myqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/shopcart/lib/myhttpclient"
)

type delivery struct {
	method string
	path   string
	body   string
}

func TestFakeQueueDeliversTask(t *testing.T) {
	// given
	delivered := make(chan delivery, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		delivered <- delivery{method: r.Method, path: r.URL.Path, body: string(body)}
	}))
	defer server.Close()
	sut := newFakeTaskQueue(server.URL, myhttpclient.New())

	// when
	err := sut.Enqueue(context.TODO(), Task{UID: "abc", WebhookURLPath: "/pubsub/cart/abc", Payload: []byte("hello")})

	// then
	assert.NoError(t, err)
	select {
	case got := <-delivered:
		assert.Equal(t, delivery{method: http.MethodPut, path: "/pubsub/cart/abc", body: "hello"}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not delivered")
	}
}
