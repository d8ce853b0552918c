package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Wikid82/autosource/backend/internal/logger"
	"github.com/Wikid82/autosource/backend/internal/metrics"
)

// SystemActor identifies background jobs in service calls that require an actor.
const SystemActor = "system:pipeline-gauge"

// PipelineGauge keeps the leads-by-status gauge fresh on a cron schedule.
type PipelineGauge struct {
	leads *LeadService
	cron  *cron.Cron
}

func NewPipelineGauge(leads *LeadService) *PipelineGauge {
	return &PipelineGauge{
		leads: leads,
		cron:  cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start refreshes once and then on every tick of schedule, which uses the
// standard cron syntax or descriptors such as "@every 1m".
func (g *PipelineGauge) Start(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid metrics schedule %q: %w", schedule, err)
	}
	if _, err := g.cron.AddFunc(schedule, func() {
		if err := g.Refresh(context.Background()); err != nil {
			logger.Log().WithError(err).Warn("refresh lead pipeline gauge")
		}
	}); err != nil {
		return err
	}
	if err := g.Refresh(context.Background()); err != nil {
		logger.Log().WithError(err).Warn("initial lead pipeline gauge refresh")
	}
	g.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (g *PipelineGauge) Stop() {
	<-g.cron.Stop().Done()
}

func (g *PipelineGauge) Refresh(ctx context.Context) error {
	stats, err := g.leads.Stats(ctx, SystemActor)
	if err != nil {
		return err
	}
	metrics.SetLeadsByStatus(stats.ByStatus)
	return nil
}
