package dataset

import (
	"time"

	"github.com/kr/pretty"
	"github.com/onboardtransit/onboard/pkg/config"
	"github.com/onboardtransit/onboard/pkg/timetable"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "Static timetable bundle management",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "download the bundle and verify it parses",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					manager := NewManager(cfg.Static)

					schedule, err := manager.Load(c.Context)
					if err != nil {
						return err
					}

					log.Info().
						Int("stops", len(schedule.Stops)).
						Int("routes", len(schedule.Routes)).
						Int("trips", len(schedule.Trips)).
						Int("stoptimes", len(schedule.StopTimes)).
						Msg("Bundle imported")

					return nil
				},
			},
			{
				Name:  "inspect",
				Usage: "dump a summary of the cached bundle",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					manager := NewManager(cfg.Static)

					schedule, err := manager.Load(c.Context)
					if err != nil {
						return err
					}

					index := timetable.BuildIndex(schedule, timetable.DefaultIndexOptions(), time.Now())

					summary := struct {
						Agency    *timetable.Agency
						Stops     int
						Routes    int
						Trips     int
						Transfers int
					}{
						Agency:    index.Agency,
						Stops:     len(index.Stops),
						Routes:    len(index.Routes),
						Trips:     len(index.Trips),
						Transfers: len(index.Transfers),
					}

					pretty.Println(summary)

					return nil
				},
			},
		},
	}
}
