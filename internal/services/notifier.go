package services

import (
	"context"
	"time"

	"github.com/ar3/our-gruuv-sub014/internal/clients/redis"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// CompletionNotifier dispatches a completion event after the triggering
// write has committed. Dispatch failures are logged and swallowed; a dead
// bus never blocks or fails a check-in save.
type CompletionNotifier interface {
	NotifyCompletion(evt domain.CompletionEvent)
}

type completionNotifier struct {
	log *logger.Logger
	bus redis.CompletionBus
}

// NewCompletionNotifier accepts a nil bus, which turns dispatch into a
// logged no-op (local dev without redis).
func NewCompletionNotifier(baseLog *logger.Logger, bus redis.CompletionBus) CompletionNotifier {
	return &completionNotifier{
		log: baseLog.With("service", "CompletionNotifier"),
		bus: bus,
	}
}

func (n *completionNotifier) NotifyCompletion(evt domain.CompletionEvent) {
	if n == nil {
		return
	}
	if n.bus == nil {
		n.log.Debug("completion bus not configured, dropping event",
			"check_in_id", evt.CheckInID.String(),
			"check_in_kind", string(evt.CheckInKind),
		)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.bus.Publish(ctx, evt); err != nil {
			n.log.Warn("completion event publish failed",
				"check_in_id", evt.CheckInID.String(),
				"check_in_kind", string(evt.CheckInKind),
				"error", err,
			)
		}
	}()
}
