package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopcart/lib/mycontext"
	"github.com/MarcGrol/shopcart/lib/myerrors"
	"github.com/MarcGrol/shopcart/lib/myevents"
	"github.com/MarcGrol/shopcart/lib/myhttp"
	"github.com/MarcGrol/shopcart/lib/mylog"
	"github.com/MarcGrol/shopcart/lib/mypubsub"
	"github.com/MarcGrol/shopcart/lib/myqueue"
	"github.com/MarcGrol/shopcart/lib/mystore"
	"github.com/MarcGrol/shopcart/lib/mytime"
)

// TransactionalPublisher stores every event in an outbox first and lets a queued task
// push the unpublished ones to pubsub.
type TransactionalPublisher struct {
	outbox    mystore.Store[myevents.EventEnvelope]
	queue     myqueue.TaskQueuer
	pubsub    mypubsub.PubSub
	enveloper enveloper
	logger    mylog.Logger
}

func New(outbox mystore.Store[myevents.EventEnvelope], pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) *TransactionalPublisher {
	return &TransactionalPublisher{
		outbox:    outbox,
		queue:     queue,
		pubsub:    pubsub,
		enveloper: newEnveloper(nower),
		logger:    mylog.New("publisher"),
	}
}

func (p *TransactionalPublisher) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")
}

func (p *TransactionalPublisher) CreateTopic(c context.Context, topic string) error {
	return p.pubsub.CreateTopic(c, topic)
}

func (p *TransactionalPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := p.enveloper.wrap(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope %s: %s", envelope, err)
	}

	err = p.queue.Enqueue(c, myqueue.Task{
		UID:            envelope.UID,
		WebhookURLPath: fmt.Sprintf("/pubsub/%s/%s", envelope.Topic, envelope.UID),
		Payload:        []byte{},
	})
	if err != nil {
		return fmt.Errorf("error queueing publication-trigger %s: %s", envelope.UID, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Enqueued event %s", envelope)

	return nil
}

func (p *TransactionalPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(p.logger)

		topic := mux.Vars(r)["topic"]
		if topic == "" {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("missing topic"))
			return
		}

		count, err := p.flush(c)
		if err != nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Published %d events", count),
		})
	}
}

// flush pushes every unpublished envelope to pubsub, oldest first, and marks it published
func (p *TransactionalPublisher) flush(c context.Context) (int, error) {
	count := 0
	err := p.outbox.RunInTransaction(c, func(c context.Context) error {
		envelopes, err := p.outbox.Query(c, []mystore.Filter{{Field: "Published", Compare: "=", Value: false}}, "CreatedAt")
		if err != nil {
			return fmt.Errorf("error fetching unpublished envelopes: %s", err)
		}
		sort.SliceStable(envelopes, func(i, j int) bool {
			return envelopes[i].CreatedAt.Before(envelopes[j].CreatedAt)
		})

		for _, envelope := range envelopes {
			jsonBytes, err := json.Marshal(envelope)
			if err != nil {
				return fmt.Errorf("error serializing envelope %s: %s", envelope, err)
			}

			err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
			if err != nil {
				return fmt.Errorf("error publishing envelope %s: %s", envelope, err)
			}

			envelope.Published = true
			err = p.outbox.Put(c, envelope.UID, envelope)
			if err != nil {
				return fmt.Errorf("error marking envelope %s published: %s", envelope, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	p.logger.Log(c, "", mylog.SeverityInfo, "Published %d events", count)

	return count, nil
}
