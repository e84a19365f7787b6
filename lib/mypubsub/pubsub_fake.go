package mypubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/MarcGrol/shopcart/lib/myevents"
	"github.com/MarcGrol/shopcart/lib/myhttpclient"
)

// fakePubSub pushes every published message to the urls subscribed to its topic
type fakePubSub struct {
	sync.Mutex
	sender        myhttpclient.HTTPSender
	subscriptions map[string][]string
	sequence      int
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakePubSub
	}
}

func newFakePubSub(c context.Context) (PubSub, func(), error) {
	return newFakePushPubSub(myhttpclient.New()), func() {}, nil
}

func newFakePushPubSub(sender myhttpclient.HTTPSender) *fakePubSub {
	return &fakePubSub{
		sender:        sender,
		subscriptions: map[string][]string{},
	}
}

func (ps *fakePubSub) CreateTopic(c context.Context, topic string) error {
	return nil
}

func (ps *fakePubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	ps.Lock()
	defer ps.Unlock()

	for _, known := range ps.subscriptions[topic] {
		if known == urlToPostTo {
			return nil
		}
	}
	ps.subscriptions[topic] = append(ps.subscriptions[topic], urlToPostTo)

	return nil
}

func (ps *fakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	ps.sequence++
	messageID := fmt.Sprintf("fake-%d", ps.sequence)
	urls := append([]string{}, ps.subscriptions[topic]...)
	ps.Unlock()

	log.Printf("Fake publish on topic %s to %d subscribers: %s", topic, len(urls), data)

	body, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{
			Data: []byte(data),
			ID:   messageID,
		},
		Subscription: topic,
	})
	if err != nil {
		return fmt.Errorf("error serializing push-request: %s", err)
	}

	for _, url := range urls {
		httpStatus, respBody, err := ps.sender.Send(c, http.MethodPost, url, http.Header{}, body)
		if err != nil {
			return fmt.Errorf("error pushing to %s: %s", url, err)
		}
		if httpStatus != http.StatusOK {
			return fmt.Errorf("error pushing to %s: http-status %d: %s", url, httpStatus, respBody)
		}
	}

	return nil
}
