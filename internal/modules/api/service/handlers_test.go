package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"signal_server/internal/models"
	accountssvc "signal_server/internal/modules/accounts/service"
	activitysvc "signal_server/internal/modules/activity/service"
	brokersvc "signal_server/internal/modules/broker/service"
	"signal_server/internal/modules/config"
	lifecyclesvc "signal_server/internal/modules/lifecycle/service"
	notifysvc "signal_server/internal/modules/notify/service"
	orderssvc "signal_server/internal/modules/orders/service"
)

type testEnv struct {
	handler http.Handler
	engine  *lifecyclesvc.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cipher, err := accountssvc.NewCipher("test-passphrase")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}
	recorder := activitysvc.NewMemory()
	accounts := accountssvc.New(accountssvc.NewMemory(), cipher, recorder)
	orders := orderssvc.NewMemory()
	hub := notifysvc.NewHub()

	engine := lifecyclesvc.New(
		5*time.Millisecond, 5*time.Millisecond,
		orders, brokersvc.NewMock(), hub, recorder, accounts,
	)
	t.Cleanup(engine.Stop)

	cfg := &config.Config{}
	s := NewServer(cfg, accounts, orders, engine, recorder, hub)
	return &testEnv{handler: s.Handler(), engine: engine}
}

func (e *testEnv) do(t *testing.T, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/accounts", "",
		`{"username":"`+username+`","broker_name":"MetaTrader5","account_id":"12345","api_key":"broker-secret"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /accounts = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		APIKey string `json:"api_key"`
	}
	if err := sonic.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.APIKey == "" {
		t.Fatal("no api_key in registration response")
	}
	return resp.APIKey
}

func TestAPI_Health(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("GET /health = %d", w.Code)
	}
}

func TestAPI_AuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/webhook/receive-signal", "", `{"signal":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no key = %d, want 401", w.Code)
	}
	w = env.do(t, http.MethodPost, "/webhook/receive-signal", "bogus", `{"signal":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bogus key = %d, want 401", w.Code)
	}
}

func TestAPI_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	w := env.do(t, http.MethodPost, "/accounts", "",
		`{"username":"alice","broker_name":"cTrader","account_id":"2","api_key":"k"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register = %d, want 400", w.Code)
	}
}

func TestAPI_SignalToClosedOrder(t *testing.T) {
	env := newTestEnv(t)
	key := env.register(t, "alice")

	w := env.do(t, http.MethodPost, "/webhook/receive-signal", key,
		`{"signal":"BUY EURUSD @1.0860\nSL 1.0850\nTP 1.0890"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	if err := sonic.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.OrderID == "" || resp.Status != "pending" {
		t.Fatalf("webhook response = %+v", resp)
	}

	env.engine.Wait()

	w = env.do(t, http.MethodGet, "/orders/"+resp.OrderID, key, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /orders/{id} = %d", w.Code)
	}
	var order models.Order
	if err := sonic.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	if order.Status != models.StatusClosed {
		t.Errorf("status = %s, want closed", order.Status)
	}
	if !strings.HasPrefix(order.BrokerOrderID, "ORD-") {
		t.Errorf("broker order id = %q", order.BrokerOrderID)
	}
}

func TestAPI_InvalidSignalRejected(t *testing.T) {
	env := newTestEnv(t)
	key := env.register(t, "alice")

	w := env.do(t, http.MethodPost, "/webhook/receive-signal", key,
		`{"signal":"HOLD EURUSD\nSL 1\nTP 2"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid signal = %d, want 422", w.Code)
	}
}

func TestAPI_ListOrdersEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	key := env.register(t, "alice")

	w := env.do(t, http.MethodGet, "/orders", key, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /orders = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("empty list body = %s, want []", got)
	}
}

func TestAPI_ForeignOrderHidden(t *testing.T) {
	env := newTestEnv(t)
	aliceKey := env.register(t, "alice")
	bobKey := env.register(t, "bob")

	w := env.do(t, http.MethodPost, "/webhook/receive-signal", aliceKey,
		`{"signal":"SELL GBPUSD\nSL 1.2650\nTP 1.2550"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook = %d", w.Code)
	}
	var resp struct {
		OrderID string `json:"order_id"`
	}
	_ = sonic.Unmarshal(w.Body.Bytes(), &resp)
	env.engine.Wait()

	w = env.do(t, http.MethodGet, "/orders/"+resp.OrderID, bobKey, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign order = %d, want 404", w.Code)
	}
}
