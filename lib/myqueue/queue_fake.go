package myqueue

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/MarcGrol/shopcart/lib/myhttp"
	"github.com/MarcGrol/shopcart/lib/myhttpclient"
)

// fakeTaskQueue delivers each task right away with a PUT on this very process
type fakeTaskQueue struct {
	baseURL string
	sender  myhttpclient.HTTPSender
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakeQueue
	}
}

func newFakeQueue(c context.Context) (TaskQueuer, func(), error) {
	return newFakeTaskQueue(myhttp.GuessHostnameWithScheme(), myhttpclient.New()), func() {}, nil
}

func newFakeTaskQueue(baseURL string, sender myhttpclient.HTTPSender) *fakeTaskQueue {
	return &fakeTaskQueue{
		baseURL: baseURL,
		sender:  sender,
	}
}

func (q *fakeTaskQueue) Enqueue(c context.Context, task Task) error {
	log.Printf("Fake enqueue of task %s for %s", task.UID, task.WebhookURLPath)

	// the caller may still hold locks the webhook needs
	go q.deliver(context.Background(), task)

	return nil
}

func (q *fakeTaskQueue) deliver(c context.Context, task Task) {
	httpStatus, body, err := q.sender.Send(c, http.MethodPut, q.baseURL+task.WebhookURLPath, http.Header{}, task.Payload)
	if err != nil {
		log.Printf("Error delivering task %s: %s", task.UID, err)
		return
	}
	if httpStatus != http.StatusOK {
		log.Printf("Error delivering task %s: http-status %d: %s", task.UID, httpStatus, body)
	}
}
