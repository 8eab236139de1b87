package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/junefeed/pkg/config"
	"github.com/umputun/junefeed/pkg/feed"
	"github.com/umputun/junefeed/pkg/proc"
	"github.com/umputun/junefeed/pkg/store"
	"github.com/umputun/junefeed/pkg/ui"
	"github.com/umputun/junefeed/pkg/view"
)

// Opts with all CLI options. Without a command the reader UI starts.
type Opts struct {
	Config string `short:"c" long:"config" env:"JUNEFEED_CONFIG" description:"config file location (default: ~/.config/junefeed/config.yml)"`
	Store  string `short:"s" long:"store" env:"JUNEFEED_STORE" description:"history store location (default: ~/.local/state/junefeed/history.db)"`

	Dbg     bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`

	AddCmd struct {
		Name string `short:"n" long:"name" required:"true" description:"unique abbreviated name for the feed"`
		URL  string `short:"u" long:"url" required:"true" description:"feed URL, e.g. https://www.myfeed.com/myfeed.rss"`
	} `command:"add" description:"add a new feed"`

	RemoveCmd struct {
		Name string `short:"n" long:"name" required:"true" description:"name of the feed to remove"`
	} `command:"remove" description:"remove a feed"`

	ListCmd struct{} `command:"list" description:"list configured feeds"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("junefeed %s, golang %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	command := ""
	if parser.Active != nil {
		command = parser.Active.Name
	}

	if err := run(opts, command); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches a management command or starts the reader
func run(opts Opts, command string) error {
	configPath := opts.Config
	if configPath == "" {
		configPath = config.DefaultLocation()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch command {
	case "add":
		if err := cfg.AddFeed(opts.AddCmd.Name, opts.AddCmd.URL); err != nil {
			return err
		}
		fmt.Printf("added feed %q: %s\n", opts.AddCmd.Name, opts.AddCmd.URL)
		return nil

	case "remove":
		// the history store cascades on the next sync cycle's reconcile
		if err := cfg.RemoveFeed(opts.RemoveCmd.Name); err != nil {
			return err
		}
		fmt.Printf("removed feed %q\n", opts.RemoveCmd.Name)
		return nil

	case "list":
		if len(cfg.Feeds) == 0 {
			fmt.Println("no feeds configured")
			return nil
		}
		for _, f := range cfg.Feeds {
			fmt.Printf("%-15s %s\n", f.Name, f.URL)
		}
		return nil
	}

	return runReader(opts, cfg)
}

// runReader wires the engine and starts the terminal UI
func runReader(opts Opts, cfg *config.Config) error {
	storePath := opts.Store
	if storePath == "" {
		storePath = config.DefaultStoreLocation()
	}

	// the TUI owns the terminal, logs go next to the store
	logFile, err := openLogFile(filepath.Join(filepath.Dir(storePath), "junefeed.log"))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	setupLog(opts.Dbg, logFile)

	lgr.Printf("[INFO] starting junefeed %s, %d feeds", revision, len(cfg.Feeds))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer st.Close()

	if err := st.Load(); err != nil {
		lgr.Printf("[WARN] can't load feed history, starting empty: %v", err)
	}

	fetcher := feed.NewParser(cfg.Settings.FetchTimeout, cfg.Settings.UserAgent)
	processor := proc.NewProcessor(fetcher, st, cfg.Settings.FetchTimeout, cfg.Settings.Concurrent)
	projector := view.NewProjector(st)

	if err := ui.Run(ctx, cfg, processor, st, projector); err != nil && ctx.Err() == nil {
		return err
	}

	lgr.Printf("[INFO] shutdown complete")
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path derived from store location
}

func setupLog(dbg bool, w io.Writer, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(w), lgr.Err(w)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	if w == os.Stdout {
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

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
