package ports

import "context"

// SessionStatus reports messaging gateway connectivity for the configured session.
type SessionStatus struct {
	Status    string
	Connected bool
}

// MessageGateway abstracts the messaging HTTP API. Chat ids are canonical
// contact addresses produced by domain.FormatChatAddress. Every call must be
// bounded by the implementation's own timeout; gateway unavailability must not
// hang webhook processing indefinitely.
type MessageGateway interface {
	SendText(ctx context.Context, chatID, text string) error
	SendImage(ctx context.Context, chatID, fileURL, caption string) error
	SessionStatus(ctx context.Context) (SessionStatus, error)
}
