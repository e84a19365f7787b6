package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarcGrol/shopcart/lib/myhttp"
	"github.com/MarcGrol/shopcart/lib/mylog"
	"github.com/MarcGrol/shopcart/lib/mypublisher"
	"github.com/MarcGrol/shopcart/lib/mypubsub"
	"github.com/MarcGrol/shopcart/services/cart/cartevents"
)

const defaultFeedSize = 20

// Feed keeps the most recent cart notifications that came back over pubsub
type Feed struct {
	sync.Mutex
	publisher  mypublisher.Publisher
	subscriber mypubsub.PubSub
	size       int
	logger     mylog.Logger
	recent     []cartevents.Notified
}

func NewFeed(publisher mypublisher.Publisher, subscriber mypubsub.PubSub) *Feed {
	return &Feed{
		publisher:  publisher,
		subscriber: subscriber,
		size:       defaultFeedSize,
		logger:     mylog.New("cartfeed"),
		recent:     []cartevents.Notified{},
	}
}

func (f *Feed) Subscribe(c context.Context) error {
	err := f.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", cartevents.TopicName, err)
	}

	err = f.subscriber.Subscribe(c, cartevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/cart/events")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", cartevents.TopicName, err)
	}

	return nil
}

func (f *Feed) OnNotified(c context.Context, topic string, event cartevents.Notified) error {
	f.Lock()
	defer f.Unlock()

	for _, known := range f.recent {
		if known.UID == event.UID {
			return nil
		}
	}

	f.recent = append(f.recent, event)
	if len(f.recent) > f.size {
		f.recent = f.recent[len(f.recent)-f.size:]
	}

	severity := mylog.SeverityInfo
	if !event.Success {
		severity = mylog.SeverityWarn
	}
	f.logger.Log(c, event.CartKey, severity, "%s", event.Message)

	return nil
}

// Recent returns the retained notifications, oldest first
func (f *Feed) Recent() []cartevents.Notified {
	f.Lock()
	defer f.Unlock()

	return append([]cartevents.Notified{}, f.recent...)
}
