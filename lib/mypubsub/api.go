package mypubsub

import "context"

var New func(c context.Context) (PubSub, func(), error)

//go:generate mockgen -source=api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	CreateTopic(c context.Context, topic string) error
	Subscribe(c context.Context, topic string, urlToPostTo string) error
	Publish(c context.Context, topic string, data string) error
}
