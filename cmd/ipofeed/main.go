package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seojoon/ipofeed/internal/api"
	"github.com/seojoon/ipofeed/internal/brokermeta"
	"github.com/seojoon/ipofeed/internal/calendar"
	"github.com/seojoon/ipofeed/internal/charsetx"
	"github.com/seojoon/ipofeed/internal/config"
	"github.com/seojoon/ipofeed/internal/feed"
	"github.com/seojoon/ipofeed/internal/httpx"
	"github.com/seojoon/ipofeed/internal/pipeline"
	"github.com/seojoon/ipofeed/internal/registry"
)

func main() {
	var (
		startFlag   = flag.String("start", "", "window start (YYYY-MM-DD, default: today KST)")
		endFlag     = flag.String("end", "", "window end (YYYY-MM-DD, default: start + 60 days)")
		outFlag     = flag.String("out", "ipo_feed.json", "feed output path")
		modeFlag    = flag.String("mode", "exclude-rights", "offering types kept: ipo | exclude-rights | all")
		sourceFlag  = flag.String("source", "direct", "calendar fetch strategy: direct | browser")
		configFlag  = flag.String("config", "", "optional YAML config overlay")
		metaFlag    = flag.String("meta", "", "optional broker-meta YAML map")
		serveFlag   = flag.Bool("serve", false, "serve the feed over HTTP after generating it")
		addrFlag    = flag.String("addr", ":8090", "listen address for -serve")
		refreshCron = flag.String("refresh-cron", "", "cron spec for scheduled feed refresh in -serve mode")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	mode, err := pipeline.ParseMode(*modeFlag)
	if err != nil {
		logger.Error("invalid mode", "error", err)
		os.Exit(1)
	}
	start, end, err := parseWindow(*startFlag, *endFlag)
	if err != nil {
		logger.Error("invalid date window", "error", err)
		os.Exit(1)
	}
	meta, err := brokermeta.Load(*metaFlag)
	if err != nil {
		logger.Error("failed to load broker meta", "error", err)
		os.Exit(1)
	}

	client := httpx.NewClient(cfg.UserAgent, cfg.FetchTimeout.Std())
	resolver := charsetx.NewResolver(calendar.CountMarkers)
	registryClient := registry.NewClient(client, cfg.RegistryURL, cfg.MinListed)

	source, closeSource, err := buildSource(cfg, *sourceFlag)
	if err != nil {
		logger.Error("invalid source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	keywords := pipeline.Keywords{Rights: cfg.RightsKeywords, Listing: cfg.ListingKeywords}

	runOnce := func(ctx context.Context) error {
		// The exclusion filter is only trustworthy with a full registry, so
		// a thin or failed download aborts the run.
		listed, err := registryClient.Fetch(ctx)
		if err != nil {
			return err
		}
		runner := &pipeline.Runner{
			Source:      source,
			SourceLabel: *sourceFlag,
			Resolver:    resolver,
			Classifier: pipeline.NewClassifier(
				httpx.NewFilingClient(client, cfg.FilingURL, resolver),
				keywords, cfg.FilingDelay.Std(), logger),
			Listed: listed,
			Meta:   meta,
			Mode:   mode,
			Delay:  cfg.FetchDelay.Std(),
			Logger: logger,
		}
		result, err := runner.Run(ctx, start, end)
		if err != nil {
			return err
		}
		for _, m := range result.Months {
			if m.Err != nil {
				logger.Warn("month degraded", "year", m.Year, "month", int(m.Month), "error", m.Err)
			}
		}
		logger.Info("feed generated",
			"items", result.Feed.Count,
			"excluded_listed", result.Feed.ExcludedListed,
			"excluded_non_ipo", result.Feed.ExcludedNonIPO,
			"out", *outFlag)
		return feed.WriteFile(*outFlag, result.Feed)
	}

	if err := runOnce(context.Background()); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	if !*serveFlag {
		return
	}

	if *refreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(*refreshCron, func() {
			if err := runOnce(context.Background()); err != nil {
				logger.Error("scheduled refresh failed", "error", err)
			}
		}); err != nil {
			logger.Error("invalid refresh cron spec", "error", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
	}

	srv := api.NewServer(*outFlag, runOnce)
	logger.Info("serving feed", "addr", *addrFlag)
	if err := http.ListenAndServe(*addrFlag, srv.Router()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func buildSource(cfg config.Config, strategy string) (pipeline.PageSource, func(), error) {
	switch strategy {
	case "direct":
		client := httpx.NewCalendarClient(cfg.UserAgent, cfg.BootstrapURL, cfg.CalendarURL,
			cfg.FetchTimeout.Std(), cfg.FetchDelay.Std())
		return client, func() {}, nil
	case "browser":
		chrome := httpx.NewChromeSource(cfg.UserAgent, cfg.CalendarURL)
		return chrome, chrome.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown source strategy %q", strategy)
}

func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	today := time.Now().In(feed.KST)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if startStr != "" {
		parsed, err := time.Parse(feed.DateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
		}
		start = parsed
	}
	end := start.AddDate(0, 0, 60)
	if endStr != "" {
		parsed, err := time.Parse(feed.DateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
		}
		end = parsed
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s before start %s",
			end.Format(feed.DateLayout), start.Format(feed.DateLayout))
	}
	return start, end, nil
}
