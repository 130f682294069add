package main

import (
	"context"
	"log"

	"github.com/m3rciful/twinbots/bots/relay"
	"github.com/m3rciful/twinbots/core/bootstrap"
	corecmd "github.com/m3rciful/twinbots/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "configs/relay.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return relay.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			if err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg.CoreConfig()}); err != nil {
				return nil, err
			}
			return relay.NewApp(cfg.(*relay.Config))
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
