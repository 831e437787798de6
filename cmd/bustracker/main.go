package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"google.golang.org/protobuf/encoding/prototext"

	"github.com/theoremus-urban-solutions/bus-tracker/api"
	"github.com/theoremus-urban-solutions/bus-tracker/config"
	"github.com/theoremus-urban-solutions/bus-tracker/gtfsrt"
	"github.com/theoremus-urban-solutions/bus-tracker/internal"
	"github.com/theoremus-urban-solutions/bus-tracker/query"
	"github.com/theoremus-urban-solutions/bus-tracker/tracker"
)

func main() {
	app := &cli.App{
		Name:  "bustracker",
		Usage: "Track Halifax Transit vehicles and serve fantasy league stats",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to config.yml",
			},
		},
		Before: func(c *cli.Context) error {
			if p := c.String("config"); p != "" {
				cfg, err := config.Load(p)
				if err != nil {
					return err
				}
				config.Config = *cfg
			} else if err := config.LoadAppConfig(); err != nil {
				return err
			}
			internal.InitLogging(config.Config.Logging.Format, config.Config.Logging.Debug)
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			queryCommand(),
			inspectCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "listen target for the web server (default :<server.port>)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := &config.Config
			deps := buildComponents(cfg)

			listen := c.String("listen")
			if listen == "" {
				listen = fmt.Sprintf(":%d", cfg.Server.Port)
			}

			server := api.NewServer(deps.tracker, deps.league, deps.cache, api.Options{
				StaticDir:      cfg.Artifacts.OutputDir,
				StaticPrefix:   staticPrefix(cfg),
				HistoryLimit:   cfg.League.HistoryLimit,
				RequestTimeout: cfg.Feed.Timeout() + cfg.League.Timeout(),
			})

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, listen, cfg.Server.ShutdownTimeout())
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "run one vehicle query and write its artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search-type", Value: "all", Usage: "all, route or bus"},
			&cli.StringFlag{Name: "route", Usage: "route id for --search-type route"},
			&cli.StringFlag{Name: "bus", Usage: "vehicle id for --search-type bus"},
			&cli.Float64Flag{Name: "lat", Usage: "latitude of a radius query"},
			&cli.Float64Flag{Name: "lon", Usage: "longitude of a radius query"},
			&cli.Float64Flag{Name: "radius", Usage: "radius in km; switches to a radius query"},
		},
		Action: func(c *cli.Context) error {
			deps := buildComponents(&config.Config)

			var criteria query.Criteria
			var err error
			if c.IsSet("radius") {
				criteria, err = query.NewByRadius(c.Float64("lat"), c.Float64("lon"), c.Float64("radius"))
			} else {
				criteria, err = tracker.ParseSearch(c.String("search-type"), c.String("route"), c.String("bus"))
			}
			if err != nil {
				return err
			}

			loc, count, err := deps.tracker.Locate(c.Context, criteria)
			if err != nil {
				return err
			}
			fmt.Printf("%d vehicles\ndata: %s\nmap:  %s\n", count, loc.DataPath, loc.MapPath)
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "print the current vehicle positions feed",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "decoded", Usage: "print decoded vehicle records instead of protobuf text"},
			&cli.StringFlag{Name: "file", Usage: "read a local .pb file instead of the configured feed"},
		},
		Action: func(c *cli.Context) error {
			raw, err := readFeed(c.Context, c.String("file"))
			if err != nil {
				return err
			}

			if c.Bool("decoded") {
				records, err := gtfsrt.Decode(raw)
				if err != nil {
					return err
				}
				_, err = pretty.Println(records)
				return err
			}

			msg, err := gtfsrt.DecodeFeed(raw)
			if err != nil {
				return err
			}
			log.Info().Int64("timestamp", gtfsrt.FeedTimestamp(msg)).Int("entities", len(msg.Entity)).Msg("Feed decoded")
			fmt.Println(prototext.MarshalOptions{Multiline: true, Indent: "  "}.Format(msg))
			return nil
		},
	}
}

func readFeed(ctx context.Context, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return buildComponents(&config.Config).fetcher.FetchRawFeed(ctx)
}
