package models

// Типы событий жизненного цикла.
const (
	EventOrderExecuted = "order.executed"
	EventOrderClosed   = "order.closed"
)

// OrderEvent is the notification payload pushed to subscribers on every
// lifecycle transition. It is a snapshot, never persisted.
type OrderEvent struct {
	Type       string  `json:"type"` // order.executed | order.closed
	OrderID    string  `json:"order_id"`
	Instrument string  `json:"instrument"`
	Action     Action  `json:"action"`
	Status     string  `json:"status"`
	EntryPrice *string `json:"entry_price"` // null for market orders
	StopLoss   string  `json:"stop_loss"`
	TakeProfit string  `json:"take_profit"`
	Owner      string  `json:"owner"`
}

// NewOrderEvent snapshots an order into an event of the given type.
func NewOrderEvent(eventType string, order *Order, owner string) OrderEvent {
	var entry *string
	if order.EntryPrice != nil {
		s := order.EntryPrice.String()
		entry = &s
	}
	return OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		Instrument: order.Instrument,
		Action:     order.Action,
		Status:     string(order.Status),
		EntryPrice: entry,
		StopLoss:   order.StopLoss.String(),
		TakeProfit: order.TakeProfit.String(),
		Owner:      owner,
	}
}
