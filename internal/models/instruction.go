package models

import "github.com/shopspring/decimal"

// Action — направление сделки.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Instruction is the validated form of a raw signal. Immutable after parsing.
type Instruction struct {
	Action     Action
	Instrument string // normalized to uppercase, e.g. EURUSD, XAUUSD

	// EntryPrice is nil for market orders.
	EntryPrice *decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// IsMarket reports whether the instruction has no entry price.
func (i *Instruction) IsMarket() bool {
	return i.EntryPrice == nil
}
