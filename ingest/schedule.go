package ingest

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"stock-dashboard/logger"
)

// Schedule runs job on spec (six fields, seconds first) until ctx is done.
// Overlapping runs are skipped rather than queued.
func Schedule(ctx context.Context, spec string, log logger.Interface, job func(context.Context)) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("register ingest schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("ingest scheduler started", logger.Field{Key: "cron", Value: spec})

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("ingest scheduler stopped")
	return nil
}
