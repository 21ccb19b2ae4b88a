package broker

import (
	"go.uber.org/fx"

	"signal_server/internal/modules/broker/service"
)

func Module() fx.Option {
	return fx.Module("broker",
		fx.Provide(
			func() service.Execution {
				return service.NewMock()
			},
		),
	)
}
