package notify

import (
	"context"

	"go.uber.org/fx"

	"signal_server/internal/modules/config"
	"signal_server/internal/modules/notify/service"
	"signal_server/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			service.NewHub,
		),
		// Sink: hub всегда, Telegram-зеркало если настроено.
		fx.Provide(
			func(cfg *config.Config, hub *service.Hub) service.Sink {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					tg, err := service.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
					if err == nil {
						return service.Fanout{hub, tg}
					}
					logger.Error("telegram mirror disabled: %v", err)
				}
				return hub
			},
		),
		fx.Invoke(
			func(lc fx.Lifecycle, hub *service.Hub) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						hub.Shutdown()
						return nil
					},
				})
			},
		),
	)
}
