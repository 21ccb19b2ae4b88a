package models

import "time"

// Имена действий для журнала активности.
const (
	ActivityAccountCreated  = "account_created"
	ActivitySignalReceived  = "signal_received"
	ActivitySignalRejected  = "signal_rejected"
	ActivityOrderCreated    = "order_created"
	ActivityOrderSubmitted  = "order_submitted"
	ActivityOrderExecuted   = "order_executed"
	ActivityOrderClosed     = "order_closed"
	ActivityExecutionFailed = "order_execution_failed"
)

// ActivityEntry is one append-only audit record.
// UserID is nil for system events.
type ActivityEntry struct {
	ID        string         `json:"id"`
	UserID    *int64         `json:"user_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}
