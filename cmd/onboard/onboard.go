package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/onboardtransit/onboard/pkg/api"
	"github.com/onboardtransit/onboard/pkg/dataset"
	"github.com/onboardtransit/onboard/pkg/realtime"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("ONBOARD_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("ONBOARD_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "onboard",
		Description: "Single binary of truth for Onboard - runs all the services",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yml",
				Usage: "path to the engine config file",
			},
		},

		Commands: []*cli.Command{
			api.RegisterCLI(),
			realtime.RegisterCLI(),
			dataset.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
