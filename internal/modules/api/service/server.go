// Package service exposes the REST and WebSocket surface:
//
//	GET  /health
//	POST /accounts                 — register user + broker account, issue API key
//	POST /webhook/receive-signal   — authenticated signal intake
//	GET  /orders                   — authenticated, owner's orders
//	GET  /orders/{id}
//	GET  /ws/orders                — authenticated, real-time lifecycle events
package service

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/cors"

	accountssvc "signal_server/internal/modules/accounts/service"
	activitysvc "signal_server/internal/modules/activity/service"
	"signal_server/internal/modules/config"
	lifecyclesvc "signal_server/internal/modules/lifecycle/service"
	notifysvc "signal_server/internal/modules/notify/service"
	orderssvc "signal_server/internal/modules/orders/service"
)

type Server struct {
	cfg      *config.Config
	router   *mux.Router
	accounts *accountssvc.Accounts
	orders   orderssvc.Store
	engine   *lifecyclesvc.Engine
	activity activitysvc.Recorder
	hub      *notifysvc.Hub

	httpSrv *http.Server
}

func NewServer(
	cfg *config.Config,
	accounts *accountssvc.Accounts,
	orders orderssvc.Store,
	engine *lifecyclesvc.Engine,
	activity activitysvc.Recorder,
	hub *notifysvc.Hub,
) *Server {
	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		accounts: accounts,
		orders:   orders,
		engine:   engine,
		activity: activity,
		hub:      hub,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(tracingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)

	s.router.Handle("/webhook/receive-signal",
		s.authenticated(s.handleReceiveSignal)).Methods(http.MethodPost)
	s.router.Handle("/orders",
		s.authenticated(s.handleListOrders)).Methods(http.MethodGet)
	s.router.Handle("/orders/{id}",
		s.authenticated(s.handleGetOrder)).Methods(http.MethodGet)

	s.router.Handle("/ws/orders", s.authenticated(s.handleWebSocket))
}

// Handler returns the full middleware chain. Exposed for tests.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-API-Key"},
	})
	return c.Handler(s.router)
}

func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() { _ = s.httpSrv.Serve(ln) }()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := opentracing.StartSpan("HTTP " + r.Method + " " + r.URL.Path)
		defer span.Finish()

		ctx := opentracing.ContextWithSpan(r.Context(), span)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
