// Package service implements the order lifecycle engine: it turns an
// accepted instruction into a pending order, hands it to the broker and
// drives the delayed pending -> executed -> closed simulation, persisting
// and publishing every transition.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"signal_server/internal/models"
	brokersvc "signal_server/internal/modules/broker/service"
	notifysvc "signal_server/internal/modules/notify/service"
	orderssvc "signal_server/internal/modules/orders/service"
	"signal_server/pkg/logger"
)

// Recorder — срез журнала активности, нужный движку.
type Recorder interface {
	Record(ctx context.Context, userID *int64, action string, details map[string]any) error
}

// Resolver loads the owner and broker-account records inside the task.
type Resolver interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
	BrokerAccountByID(ctx context.Context, id string) (*models.BrokerAccount, error)
}

// Engine runs one independent goroutine per submitted order. Tasks share
// nothing but the order store, and every task touches only its own id.
type Engine struct {
	executeAfter time.Duration
	closeAfter   time.Duration

	orders   orderssvc.Store
	broker   brokersvc.Execution
	sink     notifysvc.Sink
	activity Recorder
	resolver Resolver

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(
	executeAfter, closeAfter time.Duration,
	orders orderssvc.Store,
	broker brokersvc.Execution,
	sink notifysvc.Sink,
	activity Recorder,
	resolver Resolver,
) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		executeAfter: executeAfter,
		closeAfter:   closeAfter,
		orders:       orders,
		broker:       broker,
		sink:         sink,
		activity:     activity,
		resolver:     resolver,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Submit allocates an order id and returns it immediately; persistence,
// broker execution and the transition sequence all run in a background
// task. The id may briefly not be readable from the store.
func (e *Engine) Submit(ownerID int64, brokerAccountID string, instr *models.Instruction) string {
	id := uuid.NewString()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(id, ownerID, brokerAccountID, instr)
	}()

	return id
}

// Stop abandons in-flight lifecycles. Orders stuck short of closed are an
// accepted loss; state is not recovered on restart.
func (e *Engine) Stop() {
	e.cancel()
}

// Wait blocks until all in-flight tasks finish. Test helper.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) run(id string, ownerID int64, brokerAccountID string, instr *models.Instruction) {
	ctx := e.ctx

	user, err := e.resolver.UserByID(ctx, ownerID)
	if err != nil {
		logger.Error("order %s: resolve owner %d: %v", id, ownerID, err)
		return
	}
	account, err := e.resolver.BrokerAccountByID(ctx, brokerAccountID)
	if err != nil {
		logger.Error("order %s: resolve broker account %s: %v", id, brokerAccountID, err)
		return
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              id,
		UserID:          ownerID,
		BrokerAccountID: &account.ID,
		Action:          instr.Action,
		Instrument:      instr.Instrument,
		EntryPrice:      instr.EntryPrice,
		StopLoss:        instr.StopLoss,
		TakeProfit:      instr.TakeProfit,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.orders.Create(ctx, order); err != nil {
		logger.Error("order %s: create: %v", id, err)
		return
	}
	e.record(ctx, ownerID, models.ActivityOrderCreated, map[string]any{
		"order_id":   id,
		"action":     string(instr.Action),
		"instrument": instr.Instrument,
	})

	conf, err := e.broker.Execute(ctx, instr, user, account)
	if err != nil {
		// terminal for this order: stays pending, no notifications, no retry
		logger.Error("broker execution failed for order %s: %v", id, err)
		e.record(ctx, ownerID, models.ActivityExecutionFailed, map[string]any{
			"order_id": id,
			"error":    err.Error(),
		})
		return
	}

	order.BrokerOrderID = conf.OrderID
	if err := e.orders.SetBrokerOrderID(ctx, id, conf.OrderID); err != nil {
		logger.Error("order %s: store confirmation: %v", id, err)
		return
	}
	e.record(ctx, ownerID, models.ActivityOrderSubmitted, map[string]any{
		"order_id":        id,
		"broker_order_id": conf.OrderID,
	})

	channel := notifysvc.OwnerChannel(ownerID)

	if !e.sleep(ctx, e.executeAfter) {
		return
	}
	if !e.transition(ctx, order, user, channel, models.StatusExecuted,
		models.EventOrderExecuted, models.ActivityOrderExecuted) {
		return
	}

	if !e.sleep(ctx, e.closeAfter) {
		return
	}
	e.transition(ctx, order, user, channel, models.StatusClosed,
		models.EventOrderClosed, models.ActivityOrderClosed)
}

// transition persists the status change, records it and publishes the
// event. Persistence failure aborts the sequence; a failed publish is
// logged and swallowed, the persisted transition stands.
func (e *Engine) transition(
	ctx context.Context,
	order *models.Order,
	user *models.User,
	channel string,
	status models.OrderStatus,
	eventType, activityAction string,
) bool {
	if err := e.orders.UpdateStatus(ctx, order.ID, status); err != nil {
		logger.Error("order %s: persist %s: %v", order.ID, status, err)
		return false
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	e.record(ctx, order.UserID, activityAction, map[string]any{
		"order_id":   order.ID,
		"instrument": order.Instrument,
	})

	if err := e.sink.Publish(channel, models.NewOrderEvent(eventType, order, user.Username)); err != nil {
		logger.Error("order %s: publish %s: %v", order.ID, eventType, err)
	}

	logger.Info("order %s -> %s", order.ID, status)
	return true
}

// sleep waits out a lifecycle delay without holding any lock.
// Returns false when the engine is shutting down.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (e *Engine) record(ctx context.Context, userID int64, action string, details map[string]any) {
	if err := e.activity.Record(ctx, &userID, action, details); err != nil {
		logger.Error("activity %s: %v", action, err)
	}
}
