package mypubsub

import "context"

//go:generate mockgen -source=pubsub_api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	CreateTopic(c context.Context, topic string) error
	Subscribe(c context.Context, topic string, urlToPostTo string) error
	Publish(c context.Context, topic string, data string) error
}

// New is bound at init time to the backend that matches the runtime environment
var New func(c context.Context) (PubSub, func(), error)
