package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus — этапы жизненного цикла ордера.
type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusExecuted OrderStatus = "executed"
	StatusClosed   OrderStatus = "closed"
)

// Order tracks one instruction through its simulated lifecycle.
// Status only moves forward: pending -> executed -> closed.
// The lifecycle engine is the only writer.
type Order struct {
	ID     string `json:"id"`
	UserID int64  `json:"user_id"`

	// BrokerAccountID is nil when the linked account was removed.
	BrokerAccountID *string `json:"broker_account_id"`

	Action     Action           `json:"action"`
	Instrument string           `json:"instrument"`
	EntryPrice *decimal.Decimal `json:"entry_price"` // nil => market order
	StopLoss   decimal.Decimal  `json:"stop_loss"`
	TakeProfit decimal.Decimal  `json:"take_profit"`

	Status OrderStatus `json:"status"`

	// BrokerOrderID is the confirmation id from the mock broker,
	// empty until execution succeeds.
	BrokerOrderID string `json:"broker_order_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
