package ports

import "context"

// EventPublisher emits service events to the mesh event bus.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}
