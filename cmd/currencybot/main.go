package main

import (
	"context"
	"log"

	"github.com/m3rciful/twinbots/bots/currency"
	"github.com/m3rciful/twinbots/core/bootstrap"
	corecmd "github.com/m3rciful/twinbots/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "configs/currency.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return currency.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			app, err := currency.NewApp(cfg.(*currency.Config))
			if err != nil {
				return nil, err
			}
			if err := bootstrap.Run(ctx, bootstrap.Options{
				Config:  cfg.CoreConfig(),
				Warmups: app.Warmups(),
			}); err != nil {
				return nil, err
			}
			return app, nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
