// Package service contains the mock broker. In production this would talk
// to MetaTrader or a real broker API; here it logs the trade and hands back
// a synthetic confirmation id.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"signal_server/internal/models"
	"signal_server/pkg/logger"
)

// Confirmation is the broker's answer to a submitted instruction.
type Confirmation struct {
	OrderID string
	Message string
}

// Execution submits instructions to a (simulated) brokerage.
// The call is fast and non-blocking but may fail.
type Execution interface {
	Execute(ctx context.Context, instr *models.Instruction, user *models.User, account *models.BrokerAccount) (*Confirmation, error)
}

// Mock всегда исполняет успешно.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Execute(_ context.Context, instr *models.Instruction, user *models.User, account *models.BrokerAccount) (*Confirmation, error) {
	confirmationID := "ORD-" + strings.ToUpper(uuid.NewString()[:8])

	priceInfo := "@MARKET"
	if instr.EntryPrice != nil {
		priceInfo = "@" + instr.EntryPrice.String()
	}
	logger.Info("executing %s %s %s for user %s on %s (account: %s) -> %s",
		instr.Action, instr.Instrument, priceInfo,
		user.Username, account.BrokerName, account.AccountID, confirmationID)

	return &Confirmation{
		OrderID: confirmationID,
		Message: string(instr.Action) + " " + instr.Instrument + " executed successfully",
	}, nil
}
