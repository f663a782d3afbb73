package cron

import (
	"context"
	"time"

	"slotwise/config"
	"slotwise/services/generator"
	"slotwise/services/slots"
	"slotwise/services/waitlist"
	"slotwise/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// triggerTimeout bounds one periodic run; a stuck sweep must not pile up
// behind the next tick.
const triggerTimeout = 10 * time.Minute

// StartScheduler wires the periodic triggers: daily horizon extension,
// end-of-day completion sweep, and the minute-granularity waitlist
// expiration sweep. Returns the running scheduler so main can stop it on
// shutdown.
func StartScheduler(gen generator.GeneratorService, engine slots.SlotEngine, wl waitlist.Engine) *cron.Cron {
	logger := utils.GetLogger()
	c := cron.New()

	schedule := func(name, spec string, fn func(context.Context) error) {
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
			defer cancel()
			if err := fn(ctx); err != nil {
				logger.Error("periodic trigger failed",
					zap.String("trigger", name),
					zap.Error(err),
				)
			}
		})
		if err != nil {
			logger.Fatal("invalid cron spec",
				zap.String("trigger", name),
				zap.String("spec", spec),
				zap.Error(err),
			)
		}
	}

	schedule("horizon-extension", config.AppConfig.ExtendCronSpec, gen.ExtendAll)
	schedule("completion-sweep", config.AppConfig.CompleteCronSpec, func(ctx context.Context) error {
		_, err := engine.CompleteElapsed(ctx)
		return err
	})
	schedule("waitlist-expiration", config.AppConfig.WaitlistCronSpec, func(ctx context.Context) error {
		_, err := wl.SweepExpired(ctx)
		return err
	})

	c.Start()
	logger.Info("periodic scheduler started",
		zap.String("extend", config.AppConfig.ExtendCronSpec),
		zap.String("complete", config.AppConfig.CompleteCronSpec),
		zap.String("waitlist", config.AppConfig.WaitlistCronSpec),
	)
	return c
}
