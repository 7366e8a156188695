package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/seisgo/fdsnws/internal/client"
	"github.com/seisgo/fdsnws/internal/core/config"
	"github.com/seisgo/fdsnws/internal/core/params"
	"github.com/seisgo/fdsnws/internal/logger"
	"github.com/seisgo/fdsnws/internal/registry"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	service := flag.String("service", "station", "service to query: station or event")
	network := flag.String("network", "", "network code")
	station := flag.String("station", "", "station code")
	channel := flag.String("channel", "", "channel code")
	level := flag.String("level", "station", "station metadata level")
	start := flag.String("start", "", "start time")
	end := flag.String("end", "", "end time")
	minMag := flag.Float64("minmag", 0, "minimum magnitude (event service)")
	serverFlag := flag.String("server", "", "registered data centre label")
	flag.Parse()

	cfg := config.FromEnv()
	if *serverFlag != "" {
		cfg.Server = strings.TrimSpace(*serverFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "fdsnquery",
		Server:    cfg.Server,
	}, os.Stderr)
	appLog := logger.NewSlog(&zl)

	if cfg.RegistryFile != "" {
		if err := registry.LoadFile(cfg.RegistryFile); err != nil {
			appLog.Error("registry seed failed", "err", err)
			return 1
		}
	}

	appLog.Info("starting query",
		"version", Version,
		"server", cfg.Server,
		"service", *service)

	var c *client.Client
	var err error
	if cfg.BaseURL != "" {
		c = client.NewWithBase(cfg.Server, cfg.BaseURL,
			client.WithLogger(appLog), client.WithVerbose(cfg.Verbose))
	} else {
		c, err = client.New(cfg.Server,
			client.WithLogger(appLog), client.WithVerbose(cfg.Verbose))
		if err != nil {
			appLog.Error("client setup failed", "err", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *service {
	case "station":
		b := params.NewStationQuery().Level(*level).Format("text")
		if *network != "" {
			b.Network(*network)
		}
		if *station != "" {
			b.Station(*station)
		}
		if *channel != "" {
			b.Channel(*channel)
		}
		if *start != "" {
			b.StartString(*start)
		}
		if *end != "" {
			b.EndString(*end)
		}
		q, err := b.Build()
		if err != nil {
			appLog.Error("invalid query", "err", err)
			return 1
		}
		stations, err := c.QueryStations(ctx, q)
		if err != nil {
			appLog.Error("query failed", "err", err)
			return 1
		}
		for _, s := range stations {
			fmt.Printf("%s\t%s\t%s\n", s.ID, s.SiteName, s.Window.Start.Format("2006-01-02"))
		}

	case "event":
		b := params.NewEventQuery().Format("text")
		if *start != "" {
			b.StartString(*start)
		}
		if *end != "" {
			b.EndString(*end)
		}
		if *minMag > 0 {
			b.MinMagnitude(*minMag)
		}
		q, err := b.Build()
		if err != nil {
			appLog.Error("invalid query", "err", err)
			return 1
		}
		events, err := c.QueryEvents(ctx, q)
		if err != nil {
			appLog.Error("query failed", "err", err)
			return 1
		}
		for _, e := range events {
			fmt.Printf("%s\t%s\t%.1f %s\t%s\n",
				e.Time.Format("2006-01-02T15:04:05"), e.ID, e.Magnitude, e.MagType, e.Region)
		}

	default:
		appLog.Error("unknown service", "service", *service)
		return 2
	}
	return 0
}
