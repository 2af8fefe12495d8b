package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	service "github.com/JolanDUBOIS/sport-index/internal/app"
	"github.com/JolanDUBOIS/sport-index/internal/config"
	"github.com/JolanDUBOIS/sport-index/internal/fetchcli"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
	"github.com/JolanDUBOIS/sport-index/pkg/metrics"
)

func main() {
	var (
		op     = flag.String("op", "", "Operation: results, fixtures, events, periods, incidents, scheduled")
		kind   = flag.String("kind", "team", "Subject kind for listings")
		id     = flag.String("id", "", "Subject or event id")
		season = flag.String("season", "", "Season id (tournaments)")
		sport  = flag.String("sport", "", "Sport slug for scheduled events")
		date   = flag.String("date", "", "Day for scheduled events, YYYY-MM-DD")
		maxN   = flag.Int("max", 0, "Listing cap; 0 uses the default, -1 disables it")
		before = flag.String("before", "", "Exclusive upper bound")
		after  = flag.String("after", "", "Exclusive lower bound")
		pretty = flag.Bool("pretty", false, "Indent the output")
		help   = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || *op == "" {
		fetchcli.ShowHelp()
		return
	}

	// Logs go to stderr so stdout stays valid JSON.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(cfg.MetricsOptions()...)

	svc, err := service.FromConfig(cfg, logger.Get())
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		os.Exit(1)
	}

	run := &fetchcli.Config{
		Op:     *op,
		Kind:   *kind,
		ID:     *id,
		Season: *season,
		Sport:  *sport,
		Date:   *date,
		Max:    *maxN,
		Before: *before,
		After:  *after,
		Indent: *pretty,
	}
	if err := fetchcli.Run(ctx, run, svc, os.Stdout); err != nil {
		os.Stderr.WriteString("fetch failed: " + err.Error() + "\n")
		stop()
		if errors.Is(err, fetchcli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
