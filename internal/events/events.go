// Package events is the change feed: services publish post-write state and
// transports subscribe to push it to connected clients.
package events

import (
	"context"

	"alugaai-backend/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type Subscriber interface {
	// Subscribe returns a buffered event channel and a cancel func that
	// unsubscribes and closes the channel. Cancel is safe to call twice.
	Subscribe() (<-chan domain.Event, func())
}

type discard struct{}

func (discard) Publish(context.Context, domain.Event) error { return nil }

// Discard drops every event. Used when the store itself drives the feed.
var Discard Publisher = discard{}
