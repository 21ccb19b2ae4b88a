package service

import (
	"fmt"

	"signal_server/internal/models"
	"signal_server/pkg/logger"
)

// Sink delivers lifecycle events to all subscribers of a channel.
// Delivery is best-effort: a failed publish never rolls back the
// persisted transition that produced the event.
type Sink interface {
	Publish(channel string, event models.OrderEvent) error
}

// OwnerChannel derives the notification channel key for a user.
// Events for an order are only ever published to its owner's channel.
func OwnerChannel(userID int64) string {
	return fmt.Sprintf("orders_user_%d", userID)
}

// Fanout рассылает событие во все sinks; ошибки логирует и глотает.
type Fanout []Sink

func (f Fanout) Publish(channel string, event models.OrderEvent) error {
	for _, s := range f {
		if err := s.Publish(channel, event); err != nil {
			logger.Error("sink publish failed: %v", err)
		}
	}
	return nil
}
