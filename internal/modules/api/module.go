package api

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signal_server/internal/modules/api/service"
	"signal_server/internal/modules/config"
	healthsvc "signal_server/internal/modules/health/service"
	"signal_server/pkg/logger"
	"signal_server/pkg/tracing"
)

func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(
			service.NewServer,
		),
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, s *service.Server, state *healthsvc.State) {
				var closeTracer func()
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						if cfg.Jaeger.Host != "" {
							_, closer, err := tracing.InitTracer(tracing.Config{
								Host: cfg.Jaeger.Host,
								Port: cfg.Jaeger.Port,
							})
							if err != nil {
								// трейсинг не критичен для сервиса
								logger.Error("tracer init failed: %v", err)
							} else {
								closeTracer = closer
							}
						}

						addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.PublicPort)
						if err := s.Start(addr); err != nil {
							return err
						}
						logger.Info("api listening on %s", addr)
						state.SetReady(true)
						return nil
					},
					OnStop: func(ctx context.Context) error {
						state.SetReady(false)
						if closeTracer != nil {
							closeTracer()
						}
						return s.Shutdown(ctx)
					},
				})
			},
		),
	)
}
