package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"

	"signal_server/internal/modules/config"
	"signal_server/internal/modules/health/service"
	notifysvc "signal_server/internal/modules/notify/service"
)

func NewMux(state *service.State, hub *notifysvc.Hub) *http.ServeMux {
	adminMux := http.NewServeMux()

	adminMux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	adminMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: сервис готов обслуживать трафик
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	adminMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// полезный JSON для отладки
		resp := map[string]any{
			"ready":     state.Ready(),
			"wsClients": hub.ClientCount(),
			"uptimeSec": int64(state.Uptime().Seconds()),
		}
		w.Header().Set("Content-Type", "application/json")
		data, _ := sonic.Marshal(resp)
		_, _ = w.Write(data)
	})

	return adminMux
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, adminMux *http.ServeMux) {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.AdminPort),
		Handler:           adminMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
