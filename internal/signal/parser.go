// Package signal parses raw trading signal text into a validated instruction.
//
// Accepted shape:
//
//	BUY EURUSD            (market order)
//	BUY EURUSD @1.0860
//	BUY EURUSD [@1.0860]
//	SL 1.0850
//	TP 1.0890
//
// The action line must come first; SL and TP may follow in any order.
package signal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"signal_server/internal/models"
)

// Reason classifies why a signal was rejected.
type Reason string

const (
	ReasonEmptyInput          Reason = "empty_input"
	ReasonTooFewLines         Reason = "too_few_lines"
	ReasonMalformedActionLine Reason = "malformed_action_line"
	ReasonUnsupportedAction   Reason = "unsupported_action"
	ReasonMissingStopLoss     Reason = "missing_stop_loss"
	ReasonMissingTakeProfit   Reason = "missing_take_profit"
	ReasonInvalidNumber       Reason = "invalid_number"
	ReasonInvalidRiskReward   Reason = "invalid_risk_reward"
)

// ValidationError is returned for any rejected signal. It is safe to show
// the message verbatim to the submitter.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func reject(reason Reason, format string, args ...any) error {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

var (
	// Price marker is either @1.0860 or [@1.0860] — a lone bracket is a
	// syntax error, not a market order.
	actionRe = regexp.MustCompile(`^(?i)([A-Za-z]+)\s+([A-Za-z0-9]+)(?:\s+(?:\[@([\d.]+)\]|@([\d.]+)))?$`)
	labelRe  = regexp.MustCompile(`^(?i)(SL|TP)\s+(\S+)$`)
)

// Parse validates raw signal text and returns an immutable instruction.
// Pure and deterministic; safe for concurrent use.
func Parse(raw string) (*models.Instruction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, reject(ReasonEmptyInput, "signal text is empty")
	}

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	if len(lines) < 3 {
		return nil, reject(ReasonTooFewLines,
			"signal must have at least 3 lines: action, SL and TP")
	}

	m := actionRe.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, reject(ReasonMalformedActionLine,
			"bad action line: %q, expected: BUY/SELL INSTRUMENT [@price]", lines[0])
	}

	action := models.Action(strings.ToUpper(m[1]))
	if action != models.ActionBuy && action != models.ActionSell {
		return nil, reject(ReasonUnsupportedAction, "unsupported action: %q", m[1])
	}
	instrument := strings.ToUpper(m[2])

	// m[3] — bracketed form, m[4] — bare form.
	var entry *decimal.Decimal
	if tok := m[3] + m[4]; tok != "" {
		p, err := parsePrice(tok)
		if err != nil {
			return nil, err
		}
		entry = &p
	}

	stopLoss, err := extractValue(lines[1:], "SL", ReasonMissingStopLoss)
	if err != nil {
		return nil, err
	}
	takeProfit, err := extractValue(lines[1:], "TP", ReasonMissingTakeProfit)
	if err != nil {
		return nil, err
	}

	if action == models.ActionBuy && stopLoss.GreaterThanOrEqual(takeProfit) {
		return nil, reject(ReasonInvalidRiskReward,
			"BUY signal: SL (%s) must be lower than TP (%s)", stopLoss, takeProfit)
	}
	if action == models.ActionSell && stopLoss.LessThanOrEqual(takeProfit) {
		return nil, reject(ReasonInvalidRiskReward,
			"SELL signal: SL (%s) must be higher than TP (%s)", stopLoss, takeProfit)
	}

	return &models.Instruction{
		Action:     action,
		Instrument: instrument,
		EntryPrice: entry,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}, nil
}

// extractValue returns the value of the first line matching the label.
// Duplicate labels are resolved first-match, in line order.
func extractValue(lines []string, label string, missing Reason) (decimal.Decimal, error) {
	for _, line := range lines {
		m := labelRe.FindStringSubmatch(line)
		if m == nil || !strings.EqualFold(m[1], label) {
			continue
		}
		return parsePrice(m[2])
	}
	return decimal.Decimal{}, reject(missing, "missing %s in signal", label)
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, reject(ReasonInvalidNumber, "invalid price value: %q", s)
	}
	return d, nil
}
