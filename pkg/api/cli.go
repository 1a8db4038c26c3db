package api

import (
	"github.com/onboardtransit/onboard/pkg/config"
	"github.com/onboardtransit/onboard/pkg/realtime"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the engine web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the web api server and feed pollers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server, overrides config",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					listen := cfg.Server.ListenAddress
					if c.String("listen") != "" {
						listen = c.String("listen")
					}

					manager := realtime.NewManager(cfg)

					go func() {
						if err := manager.Run(c.Context); err != nil && c.Context.Err() == nil {
							log.Fatal().Err(err).Msg("Realtime manager stopped")
						}
					}()

					return NewServer(manager.Store, cfg.Planner.Options()).SetupServer(listen)
				},
			},
		},
	}
}
