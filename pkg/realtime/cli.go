package realtime

import (
	"github.com/onboardtransit/onboard/pkg/config"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Realtime feed polling",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the feed pollers without the API server",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					return NewManager(cfg).Run(c.Context)
				},
			},
		},
	}
}
