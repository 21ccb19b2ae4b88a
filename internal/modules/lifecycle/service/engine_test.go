package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signal_server/internal/models"
	activitysvc "signal_server/internal/modules/activity/service"
	brokersvc "signal_server/internal/modules/broker/service"
	notifysvc "signal_server/internal/modules/notify/service"
	orderssvc "signal_server/internal/modules/orders/service"
)

type fakeResolver struct {
	user    models.User
	account models.BrokerAccount
}

func (r *fakeResolver) UserByID(_ context.Context, id int64) (*models.User, error) {
	if id != r.user.ID {
		return nil, errors.New("unknown user")
	}
	u := r.user
	return &u, nil
}

func (r *fakeResolver) BrokerAccountByID(_ context.Context, id string) (*models.BrokerAccount, error) {
	if id != r.account.ID {
		return nil, errors.New("unknown account")
	}
	a := r.account
	return &a, nil
}

type fakeBroker struct {
	fail bool
}

func (b *fakeBroker) Execute(_ context.Context, _ *models.Instruction, _ *models.User, _ *models.BrokerAccount) (*brokersvc.Confirmation, error) {
	if b.fail {
		return nil, errors.New("broker unavailable")
	}
	return &brokersvc.Confirmation{OrderID: "ORD-TEST1234"}, nil
}

type published struct {
	channel string
	event   models.OrderEvent
}

type captureSink struct {
	mu     sync.Mutex
	events []published
}

func (s *captureSink) Publish(channel string, event models.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, published{channel: channel, event: event})
	return nil
}

func (s *captureSink) all() []published {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]published, len(s.events))
	copy(out, s.events)
	return out
}

type fixture struct {
	engine   *Engine
	store    *orderssvc.Memory
	sink     *captureSink
	recorder *activitysvc.Memory
}

func newFixture(executeAfter, closeAfter time.Duration, broker brokersvc.Execution) *fixture {
	store := orderssvc.NewMemory()
	sink := &captureSink{}
	recorder := activitysvc.NewMemory()
	resolver := &fakeResolver{
		user:    models.User{ID: 1, Username: "alice"},
		account: models.BrokerAccount{ID: "acc-1", UserID: 1, BrokerName: "MetaTrader5", AccountID: "12345", IsActive: true},
	}
	return &fixture{
		engine:   New(executeAfter, closeAfter, store, broker, sink, recorder, resolver),
		store:    store,
		sink:     sink,
		recorder: recorder,
	}
}

func buyInstruction() *models.Instruction {
	entry := decimal.RequireFromString("1.0860")
	return &models.Instruction{
		Action:     models.ActionBuy,
		Instrument: "EURUSD",
		EntryPrice: &entry,
		StopLoss:   decimal.RequireFromString("1.0850"),
		TakeProfit: decimal.RequireFromString("1.0890"),
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestEngine_FullLifecycle(t *testing.T) {
	f := newFixture(20*time.Millisecond, 30*time.Millisecond, &fakeBroker{})
	defer f.engine.Stop()

	start := time.Now()
	id := f.engine.Submit(1, "acc-1", buyInstruction())
	if elapsed := time.Since(start); elapsed >= 20*time.Millisecond {
		t.Errorf("Submit blocked for %v, must return before the first delay", elapsed)
	}
	if id == "" {
		t.Fatal("Submit returned empty id")
	}

	f.engine.Wait()

	order, err := f.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if order.Status != models.StatusClosed {
		t.Errorf("status = %s, want closed", order.Status)
	}
	if order.BrokerOrderID != "ORD-TEST1234" {
		t.Errorf("broker order id = %q", order.BrokerOrderID)
	}

	events := f.sink.all()
	if len(events) != 2 {
		t.Fatalf("published %d events, want exactly 2", len(events))
	}
	if events[0].event.Type != models.EventOrderExecuted || events[1].event.Type != models.EventOrderClosed {
		t.Errorf("event order = [%s %s], want [order.executed order.closed]",
			events[0].event.Type, events[1].event.Type)
	}
	for _, p := range events {
		if p.channel != notifysvc.OwnerChannel(1) {
			t.Errorf("channel = %q, want %q", p.channel, notifysvc.OwnerChannel(1))
		}
		if p.event.OrderID != id || p.event.Owner != "alice" {
			t.Errorf("event snapshot = %+v", p.event)
		}
	}
	if got := events[0].event.Status; got != "executed" {
		t.Errorf("first event status = %q, want executed", got)
	}

	var actions []string
	for _, e := range f.recorder.Entries() {
		actions = append(actions, e.Action)
	}
	want := []string{
		models.ActivityOrderCreated,
		models.ActivityOrderSubmitted,
		models.ActivityOrderExecuted,
		models.ActivityOrderClosed,
	}
	if fmt.Sprint(actions) != fmt.Sprint(want) {
		t.Errorf("activity = %v, want %v", actions, want)
	}
}

func TestEngine_BrokerFailureLeavesOrderPending(t *testing.T) {
	f := newFixture(5*time.Millisecond, 5*time.Millisecond, &fakeBroker{fail: true})
	defer f.engine.Stop()

	id := f.engine.Submit(1, "acc-1", buyInstruction())
	f.engine.Wait()

	order, err := f.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if order.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.BrokerOrderID != "" {
		t.Errorf("broker order id = %q, want empty", order.BrokerOrderID)
	}
	if events := f.sink.all(); len(events) != 0 {
		t.Errorf("published %d events, want none", len(events))
	}

	var sawFailure bool
	for _, e := range f.recorder.Entries() {
		if e.Action == models.ActivityExecutionFailed {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("execution failure was not recorded")
	}
}

func TestEngine_StopAbandonsLifecycle(t *testing.T) {
	f := newFixture(time.Hour, time.Hour, &fakeBroker{})

	id := f.engine.Submit(1, "acc-1", buyInstruction())

	// wait until the task parked on the first delay
	waitFor(t, time.Second, func() bool {
		order, err := f.store.Get(context.Background(), id)
		return err == nil && order.BrokerOrderID != ""
	})

	f.engine.Stop()
	f.engine.Wait()

	order, _ := f.store.Get(context.Background(), id)
	if order.Status != models.StatusPending {
		t.Errorf("status = %s, want pending (abandoned mid-sequence)", order.Status)
	}
	if events := f.sink.all(); len(events) != 0 {
		t.Errorf("published %d events after shutdown, want none", len(events))
	}
}

func TestEngine_ConcurrentOrdersDoNotInterfere(t *testing.T) {
	f := newFixture(5*time.Millisecond, 5*time.Millisecond, &fakeBroker{})
	defer f.engine.Stop()

	const n = 25
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.engine.Submit(1, "acc-1", buyInstruction())
	}
	f.engine.Wait()

	for _, id := range ids {
		order, err := f.store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", id, err)
		}
		if order.Status != models.StatusClosed {
			t.Errorf("order %s status = %s, want closed", id, order.Status)
		}
	}

	// per-order events arrive in transition order, exactly two per order
	perOrder := map[string][]string{}
	for _, p := range f.sink.all() {
		perOrder[p.event.OrderID] = append(perOrder[p.event.OrderID], p.event.Type)
	}
	if len(perOrder) != n {
		t.Fatalf("events for %d orders, want %d", len(perOrder), n)
	}
	for id, types := range perOrder {
		if len(types) != 2 || types[0] != models.EventOrderExecuted || types[1] != models.EventOrderClosed {
			t.Errorf("order %s events = %v", id, types)
		}
	}
}
