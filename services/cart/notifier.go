package cart

import (
	"context"
	"fmt"

	"github.com/MarcGrol/shopcart/lib/mypublisher"
	"github.com/MarcGrol/shopcart/lib/mytime"
	"github.com/MarcGrol/shopcart/lib/myuuid"
	"github.com/MarcGrol/shopcart/services/cart/cartevents"
)

type Notification struct {
	Operation string
	ItemID    int
	Success   bool
	Message   string
}

//go:generate mockgen -source=notifier.go -package cart -destination notifier_mock.go Notifier
type Notifier interface {
	Notify(c context.Context, notification Notification) error
}

type publishingNotifier struct {
	cartKey   string
	publisher mypublisher.Publisher
	uuider    myuuid.UUIDer
	nower     mytime.Nower
}

// NewPublishingNotifier turns every notification into a cart.notified event
func NewPublishingNotifier(cartKey string, publisher mypublisher.Publisher, uuider myuuid.UUIDer, nower mytime.Nower) Notifier {
	return &publishingNotifier{
		cartKey:   cartKey,
		publisher: publisher,
		uuider:    uuider,
		nower:     nower,
	}
}

func (n *publishingNotifier) Notify(c context.Context, notification Notification) error {
	err := n.publisher.Publish(c, cartevents.TopicName, cartevents.Notified{
		UID:       n.uuider.Create(),
		CartKey:   n.cartKey,
		Operation: notification.Operation,
		ItemID:    notification.ItemID,
		Success:   notification.Success,
		Message:   notification.Message,
		Timestamp: n.nower.Now(),
	})
	if err != nil {
		return fmt.Errorf("error publishing notification %q: %s", notification.Message, err)
	}
	return nil
}
