package main

import (
	"context"
	"os/signal"
	"syscall"

	"VolScope/internal/notifier"
	"VolScope/internal/scheduler"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Report the watchlist on a cron schedule and answer Telegram commands",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "run-now",
				Usage:   "Run the watchlist once at startup",
				Sources: cli.EnvVars("RUN_ON_START"),
			},
		},
		Action: watchAction,
	}
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.ValidateTelegram(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)
	sched := scheduler.NewScheduler(ctx, a.collector, tn, a.recorder, scheduler.Options{
		Cron:      a.cfg.Schedule.Cron,
		Watchlist: a.cfg.Schedule.Watchlist,
		Report:    a.reportOptions(),
	}, a.metrics, a.log)
	if err := sched.Register(); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	a.log.Info("telegram polling started")

	if cmd.Bool("run-now") {
		a.log.Info("running watchlist at startup")
		go sched.RunNow()
	}

	a.log.Info("volscope is watching", zap.Strings("watchlist", a.cfg.Schedule.Watchlist))
	<-ctx.Done()
	a.log.Info("shutdown signal received, stopping")
	return nil
}
