// Package schedule implements the schedule command, which runs scrapes on a
// recurring cron schedule until interrupted.
package schedule

import (
	"context"
	"errors"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotenders/cmd/common"
)

// Command returns the schedule command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run scrapes on a recurring schedule",
		Long: `Schedule runs a scrape whenever the configured cron expression
fires, until the process receives an interrupt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Setup(cmd)
			if err != nil {
				return err
			}
			if deps.Config.Schedule.Spec == "" {
				return errors.New("schedule.spec is not configured")
			}

			return run(cmd.Context(), deps)
		},
	}
}

func run(ctx context.Context, deps *common.Deps) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := deps.Logger.WithComponent("schedule")

	// A scrape can outlast the interval between ticks; ticks that land
	// while one is still running are skipped, not queued.
	var running atomic.Bool

	c := cron.New()
	_, err := c.AddFunc(deps.Config.Schedule.Spec, func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous scrape still running, skipping tick")
			return
		}
		defer running.Store(false)

		if _, err := common.RunScrape(ctx, deps); err != nil {
			log.WithError(err).Error("scheduled scrape failed")
		}
	})
	if err != nil {
		return err
	}

	log.Info("scheduler started", "spec", deps.Config.Schedule.Spec)
	c.Start()

	<-ctx.Done()

	log.Info("scheduler stopping")
	<-c.Stop().Done()
	return nil
}
