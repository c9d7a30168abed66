package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Makepad-fr/taskview/internal/api"
	"github.com/Makepad-fr/taskview/internal/cli"
	"github.com/Makepad-fr/taskview/internal/config"
	"github.com/Makepad-fr/taskview/internal/logging"
	"github.com/Makepad-fr/taskview/internal/tasklist"
	"github.com/Makepad-fr/taskview/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	fs.SetInterspersed(true)
	flags := config.RegisterFlags(fs)
	fs.Usage = func() {
		cli.PrintHelp(os.Stderr)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	args := fs.Args()
	interactive := len(args) == 0

	// The interactive view owns the terminal, so it only ever logs to a file.
	var logOut io.Writer
	if !interactive && cfg.LogLevel == "debug" {
		logOut = os.Stderr
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		File:      cfg.LogFile,
		Output:    logOut,
		Timestamp: cfg.LogFile != "",
	})
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer closeLog()
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	client, err := api.New(api.Options{
		BaseURL:      cfg.APIURL,
		Token:        cfg.Token,
		Timeout:      cfg.Timeout,
		StrictStatus: cfg.StrictStatus,
		Logger:       logger,
	})
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !interactive {
		return cli.Run(ctx, args, client, cli.Options{Group: cfg.Group})
	}

	logger.Info("starting", "api", client.BaseURL())
	if err := tasklist.Run(ctx, tasklist.New(ctx, client, client.BaseURL())); err != nil {
		logger.Error("view exited", "err", err)
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	return 0
}
