package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/feedrank/pkg/config"
	"github.com/umputun/feedrank/pkg/feed"
	"github.com/umputun/feedrank/pkg/page"
	"github.com/umputun/feedrank/pkg/pipeline"
	"github.com/umputun/feedrank/pkg/view"
	"github.com/umputun/feedrank/server"
)

// Opts with all CLI options
type Opts struct {
	Dir         string        `short:"d" long:"dir" env:"DIR" description:"assets directory with index.html, served for hydration"`
	Config      string        `short:"c" long:"config" env:"CONFIG" description:"optional yaml config file"`
	Listen      string        `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	FeedURL     string        `long:"feed-url" env:"FEED_URL" description:"feed url, overrides config"`
	FeedTimeout time.Duration `long:"feed-timeout" env:"FEED_TIMEOUT" description:"feed request timeout, overrides config"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting feedrank version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run loads config and page shell, then serves until ctx is canceled.
// Config and shell errors are returned before any port is opened.
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shell, err := page.Load(cfg.Page.Dir, cfg.Page.StyleScript)
	if err != nil {
		return fmt.Errorf("failed to load page template: %w", err)
	}

	renderer, err := view.New(view.Opts{LoadingText: cfg.Page.LoadingText, CommentsLabel: cfg.Page.CommentsLabel})
	if err != nil {
		return fmt.Errorf("failed to make renderer: %w", err)
	}

	fetcher := feed.NewFetcher(cfg.Feed.Timeout, feed.WithUserAgent(cfg.Feed.UserAgent), feed.WithMaxSize(cfg.Feed.MaxSize))
	ranker := pipeline.New(pipeline.Config{Fetcher: fetcher, FeedURL: cfg.Feed.URL, Workers: cfg.Feed.Workers})

	srv, err := server.New(server.Config{
		Listen:    cfg.Server.Listen,
		Timeout:   cfg.Server.Timeout,
		Throttle:  cfg.Server.Throttle,
		AssetsDir: cfg.Page.Dir,
		Version:   revision,
		Debug:     opts.Debug,
	}, ranker, renderer, shell)
	if err != nil {
		return fmt.Errorf("failed to make server: %w", err)
	}

	log.Printf("[INFO] feed %s, view the website at http://%s/", cfg.Feed.URL, cfg.Server.Listen)
	return srv.Run(ctx)
}

// loadConfig reads optional config file and applies CLI overrides
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.New()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}

	if opts.Dir != "" {
		cfg.Page.Dir = opts.Dir
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.FeedURL != "" {
		cfg.Feed.URL = opts.FeedURL
	}
	if opts.FeedTimeout > 0 {
		cfg.Feed.Timeout = opts.FeedTimeout
	}

	if cfg.Page.Dir == "" {
		return nil, fmt.Errorf("assets directory is required, set --dir or page.dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLog(dbg, noColor bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
