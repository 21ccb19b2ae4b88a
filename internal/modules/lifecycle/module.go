package lifecycle

import (
	"context"

	"go.uber.org/fx"

	activitysvc "signal_server/internal/modules/activity/service"
	brokersvc "signal_server/internal/modules/broker/service"
	"signal_server/internal/modules/config"
	"signal_server/internal/modules/lifecycle/service"
	notifysvc "signal_server/internal/modules/notify/service"
	orderssvc "signal_server/internal/modules/orders/service"
)

func Module() fx.Option {
	return fx.Module("lifecycle",
		fx.Provide(
			func(
				cfg *config.Config,
				orders orderssvc.Store,
				broker brokersvc.Execution,
				sink notifysvc.Sink,
				activity activitysvc.Recorder,
				resolver service.Resolver,
			) *service.Engine {
				return service.New(
					cfg.ExecuteAfter, cfg.CloseAfter,
					orders, broker, sink, activity, resolver,
				)
			},
		),
		fx.Invoke(
			func(lc fx.Lifecycle, e *service.Engine) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						e.Stop()
						return nil
					},
				})
			},
		),
	)
}
