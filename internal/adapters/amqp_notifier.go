package adapters

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/store"
)

// SnapshotPublisher is the part of amqp.Client the notifier needs.
type SnapshotPublisher interface {
	PublishSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error
}

// AMQPNotifier adapts a SnapshotPublisher to store.Notifier so the store can
// announce saves without knowing about the broker.
type AMQPNotifier struct {
	publisher SnapshotPublisher
	namespace string
}

func NewAMQPNotifier(publisher SnapshotPublisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: publisher, namespace: store.Namespace}
}

// SnapshotSaved implements store.Notifier
func (n *AMQPNotifier) SnapshotSaved(ctx context.Context, ev store.SaveEvent) error {
	return n.publisher.PublishSnapshotSaved(ctx, &amqp.SnapshotSavedMessage{
		Namespace:    n.namespace,
		Revision:     ev.Revision,
		Operation:    ev.Operation,
		Transactions: ev.Transactions,
		Categories:   ev.Categories,
		Budgets:      ev.Budgets,
		Timestamp:    ev.SavedAt,
	})
}
