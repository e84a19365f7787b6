package cartevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MarcGrol/shopcart/lib/myerrors"
	"github.com/MarcGrol/shopcart/lib/myevents"
)

const (
	TopicName    = "cart"
	notifiedName = TopicName + ".notified"
)

type CartEventService interface {
	Subscribe(c context.Context) error
	OnNotified(c context.Context, topic string, event Notified) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CartEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case notifiedName:
		{
			event := Notified{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnNotified(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unsupported event type %s", envelope.EventTypeName))
	}
}

// Notified carries the outcome of a single cart operation
type Notified struct {
	UID       string
	CartKey   string
	Operation string
	ItemID    int
	Success   bool
	Message   string
	Timestamp time.Time
}

func (e Notified) GetEventTypeName() string {
	return notifiedName
}

func (e Notified) GetAggregateName() string {
	return e.CartKey
}
