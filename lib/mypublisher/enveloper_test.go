package mypublisher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopcart/lib/mytime"
)

func TestEnveloper(t *testing.T) {
	ctrl := gomock.NewController(t)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime)
	nower.EXPECT().Now().Return(mytime.ExampleTime.Add(time.Hour))
	nower.EXPECT().Now().Return(mytime.ExampleTime)
	sut := newEnveloper(nower)

	first, err := sut.wrap("cart", itemAdded{CartKey: "shopcart:cart", ItemID: 1})
	assert.NoError(t, err)
	later, err := sut.wrap("cart", itemAdded{CartKey: "shopcart:cart", ItemID: 1})
	assert.NoError(t, err)
	other, err := sut.wrap("cart", itemAdded{CartKey: "shopcart:cart", ItemID: 2})
	assert.NoError(t, err)

	assert.Equal(t, first.UID, later.UID)
	assert.NotEqual(t, first.CreatedAt, later.CreatedAt)
	assert.NotEqual(t, first.UID, other.UID)
	assert.Equal(t, "cart.cart.itemAdded.shopcart:cart", first.String())
}
