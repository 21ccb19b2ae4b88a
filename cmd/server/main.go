package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_server/internal/modules/accounts"
	"signal_server/internal/modules/activity"
	"signal_server/internal/modules/api"
	"signal_server/internal/modules/broker"
	"signal_server/internal/modules/config"
	"signal_server/internal/modules/health"
	"signal_server/internal/modules/lifecycle"
	"signal_server/internal/modules/notify"
	"signal_server/internal/modules/orders"
	"signal_server/internal/modules/postgres"
	"signal_server/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("signal_server")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		orders.Module(),
		broker.Module(),
		activity.Module(),
		notify.Module(),
		accounts.Module(),
		lifecycle.Module(),
		health.Module(),
		api.Module(),
	)
	app.Run()
}
