package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Refresher runs one refresh cycle and reports whether it ran.
type Refresher interface {
	Refresh(ctx context.Context, force bool) (bool, error)
}

// RefreshJob drives the market service on a fixed interval.
type RefreshJob struct {
	tracer   trace.Tracer
	service  Refresher
	interval time.Duration
}

func NewRefreshJob(tracer trace.Tracer, service Refresher, intervalSecs int) *RefreshJob {
	if intervalSecs <= 0 {
		intervalSecs = 60
	}
	return &RefreshJob{
		tracer:   tracer,
		service:  service,
		interval: time.Duration(intervalSecs) * time.Second,
	}
}

// Start runs an immediate cycle, then one per interval. Blocks until ctx is
// cancelled.
func (j *RefreshJob) Start(ctx context.Context) {
	log.Println("Refresh job starting...")

	j.run(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Refresh job stopped")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *RefreshJob) run(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "refresh-job.run")
	defer span.End()

	ran, err := j.service.Refresh(ctx, false)
	if err != nil {
		span.RecordError(err)
		log.Printf("refresh cycle error: %v", err)
		return
	}
	if !ran {
		log.Println("refresh cycle skipped")
	}
}
