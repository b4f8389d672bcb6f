package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

// SLAWorker periodically scans for breached tasks and publishes
// sla_breach_detected events. The read API never depends on this loop: breach
// records are recomputed on every read, the worker only feeds notifications.
type SLAWorker struct {
	sla        *service.SLAService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration
}

// NewSLAWorker constructs the worker.
func NewSLAWorker(slaService *service.SLAService, dispatcher events.Dispatcher, logger *zap.Logger, interval time.Duration) *SLAWorker {
	return &SLAWorker{sla: slaService, dispatcher: dispatcher, logger: logger, interval: interval}
}

// Run blocks until ctx is cancelled, scanning on each tick.
func (w *SLAWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sla worker stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *SLAWorker) scan(ctx context.Context) {
	breaches, err := w.sla.ActiveBreaches(ctx)
	if err != nil {
		w.logger.Error("sla scan failed", zap.Error(err))
		return
	}
	for _, breach := range breaches {
		_ = w.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSLABreachDetected,
			TaskID:    breach.TaskID,
			Timestamp: time.Now(),
			Payload: events.SLABreachDetectedPayload{
				Department:   breach.Department,
				IssueType:    breach.IssueType,
				Priority:     breach.Priority,
				SLAHours:     breach.SLAHours,
				ElapsedHours: breach.ElapsedHours,
			},
		})
	}
	if len(breaches) > 0 {
		w.logger.Info("sla scan complete", zap.Int("breached", len(breaches)))
	}
}
