package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"blinkaway/internal/command"
	"blinkaway/internal/config"
	"blinkaway/internal/logx"
	"blinkaway/internal/platform"
	"blinkaway/internal/storage"

	"github.com/urfave/cli"
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "path to config.yaml (default: <data-dir>/config.yaml)",
	},
	cli.StringFlag{
		Name:  "data-dir, d",
		Usage: "directory for config, state and icon overrides",
	},
	cli.StringFlag{
		Name:  "log-level, l",
		Usage: "override the configured log level (debug, info, warn, error)",
	},
}

func main() {
	app := cli.App{
		Name:      "blinkaway",
		HelpName:  "blinkaway",
		Usage:     "20-20-20, blink and posture reminders from the system tray",
		UsageText: "blinkaway [global options] [command]",
		Writer:    os.Stdout,
		Flags:     globalFlags,
		Action:    runApp,
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "start the tray app (default)",
				Action: runApp,
			},
			{
				Name:   "status",
				Usage:  "print the saved schedule",
				Action: printStatus,
			},
			{
				Name:   "reset",
				Usage:  "restore the default schedule",
				Action: resetSchedule,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// environment is what every command needs before doing its own work.
type environment struct {
	paths    command.Paths
	cfg      config.Config
	logLevel string
	// loginArgs reproduce this run's path flags for the login item.
	loginArgs []string
	manager   *config.Manager
	logs      *logx.Service
	log       logx.Logger
	platform  platform.Service
}

func setup(ctx *cli.Context) (*environment, error) {
	service := platform.NewService()
	defaultDir := ""
	if ctx.GlobalString("data-dir") == "" {
		dir, err := service.AppDataDir(command.AppName)
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		defaultDir = dir
	}
	paths := command.ResolvePaths(defaultDir, ctx.GlobalString("data-dir"), ctx.GlobalString("config"))
	if err := os.MkdirAll(paths.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	bootLog := logx.NewConsole("warn")
	manager := config.NewManager(paths.ConfigFile, bootLog)
	cfg, err := manager.Load()
	if err != nil {
		bootLog.Warn("config invalid, using defaults", logx.String("path", paths.ConfigFile), logx.Err(err))
	}
	cfg = command.WithLogLevel(cfg, ctx.GlobalString("log-level"))

	logs, log := logx.NewService(cfg.Log)
	return &environment{
		paths:     paths,
		cfg:       cfg,
		logLevel:  ctx.GlobalString("log-level"),
		loginArgs: command.LoginArgs(ctx.GlobalString("data-dir"), ctx.GlobalString("config")),
		manager:   manager,
		logs:      logs,
		log:       log,
		platform:  service,
	}, nil
}

func (env *environment) close() {
	_ = env.logs.Close()
}

func (env *environment) openStore() (storage.Store, error) {
	store, err := storage.Open(command.StorageConfig(env.cfg, env.paths.DataDir), env.log)
	if err != nil {
		return nil, fmt.Errorf("open schedule store: %w", err)
	}
	return store, nil
}

func printStatus(ctx *cli.Context) error {
	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	store, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return command.PrintStatus(ctx.App.Writer, store.Snapshot(), time.Now())
}

func resetSchedule(ctx *cli.Context) error {
	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	store, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := command.Reset(context.Background(), store); err != nil {
		return err
	}
	env.log.Info("schedule reset to defaults")
	fmt.Fprintln(ctx.App.Writer, "schedule reset to defaults")
	return nil
}
