package service

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"

	"signal_server/internal/models"
	accountssvc "signal_server/internal/modules/accounts/service"
	orderssvc "signal_server/internal/modules/orders/service"
	"signal_server/internal/signal"
	"signal_server/pkg/logger"
)

type createAccountRequest struct {
	Username   string `json:"username"`
	BrokerName string `json:"broker_name"`
	AccountID  string `json:"account_id"`
	APIKey     string `json:"api_key"`
}

type signalRequest struct {
	Signal string `json:"signal"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !readJSON(w, r, &req) {
		return
	}

	reg, err := s.accounts.Register(r.Context(), req.Username, req.BrokerName, req.AccountID, req.APIKey)
	if err != nil {
		if errors.Is(err, accountssvc.ErrUserExists) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("create account: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully.",
		// показывается один раз, дальше храним только хэш
		"api_key":        reg.RawAPIKey,
		"user":           reg.User,
		"broker_account": reg.BrokerAccount,
	})
}

func (s *Server) handleReceiveSignal(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req signalRequest
	if !readJSON(w, r, &req) {
		return
	}

	_ = s.activity.Record(r.Context(), &user.ID, models.ActivitySignalReceived, map[string]any{
		"raw_signal": req.Signal,
	})

	instr, err := signal.Parse(req.Signal)
	if err != nil {
		var verr *signal.ValidationError
		if errors.As(err, &verr) {
			_ = s.activity.Record(r.Context(), &user.ID, models.ActivitySignalRejected, map[string]any{
				"raw_signal": req.Signal,
				"reason":     verr.Message,
			})
			writeError(w, http.StatusUnprocessableEntity, verr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to parse signal")
		return
	}

	account, err := s.accounts.ActiveBrokerAccount(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, accountssvc.ErrNotFound) {
			writeError(w, http.StatusBadRequest,
				"No active broker account found. Link one via POST /accounts first.")
			return
		}
		logger.Error("lookup broker account: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to look up broker account")
		return
	}

	orderID := s.engine.Submit(user.ID, account.ID, instr)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Signal received. Order is being processed.",
		"order_id": orderID,
		"status":   string(models.StatusPending),
	})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	orders, err := s.orders.ListByUser(r.Context(), user.ID)
	if err != nil {
		logger.Error("list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id := mux.Vars(r)["id"]

	order, err := s.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, orderssvc.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found.")
			return
		}
		logger.Error("get order %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	// чужие ордера неотличимы от несуществующих
	if order.UserID != user.ID {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		logger.Error("marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
