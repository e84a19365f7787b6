package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopcart/lib/mypublisher"
	"github.com/MarcGrol/shopcart/lib/mypubsub"
	"github.com/MarcGrol/shopcart/services/cart/cartevents"
)

func TestFeed(t *testing.T) {
	c := context.TODO()

	t.Run("subscribe creates topic and push subscription", func(t *testing.T) {
		// given
		ctrl := gomock.NewController(t)
		publisher := mypublisher.NewMockPublisher(ctrl)
		subscriber := mypubsub.NewMockPubSub(ctrl)
		publisher.EXPECT().CreateTopic(gomock.Any(), "cart").Return(nil)
		subscriber.EXPECT().Subscribe(gomock.Any(), "cart", "http://localhost:8080/api/cart/events").Return(nil)
		t.Setenv("PORT", "")

		// when
		err := NewFeed(publisher, subscriber).Subscribe(c)

		// then
		assert.NoError(t, err)
	})

	t.Run("keeps most recent notifications once", func(t *testing.T) {
		// given
		ctrl := gomock.NewController(t)
		sut := NewFeed(mypublisher.NewMockPublisher(ctrl), mypubsub.NewMockPubSub(ctrl))

		// when
		for i := 0; i < defaultFeedSize+5; i++ {
			err := sut.OnNotified(c, "cart", cartevents.Notified{UID: fmt.Sprintf("%d", i), Message: "item added to cart", Success: true})
			assert.NoError(t, err)
		}
		err := sut.OnNotified(c, "cart", cartevents.Notified{UID: fmt.Sprintf("%d", defaultFeedSize+4)})
		assert.NoError(t, err)

		// then
		recent := sut.Recent()
		assert.Len(t, recent, defaultFeedSize)
		assert.Equal(t, "5", recent[0].UID)
		assert.Equal(t, fmt.Sprintf("%d", defaultFeedSize+4), recent[len(recent)-1].UID)
	})
}
