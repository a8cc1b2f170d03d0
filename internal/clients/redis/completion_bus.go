package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// CompletionBus publishes check-in completion events to a redis stream.
// Delivery is at-least-once; downstream consumers dedupe on check_in_id
// plus completion_state.
type CompletionBus interface {
	Publish(ctx context.Context, evt domain.CompletionEvent) error
	Close() error
}

type completionBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	stream string
}

func NewCompletionBus(log *logger.Logger) (CompletionBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	stream := strings.TrimSpace(os.Getenv("REDIS_COMPLETION_STREAM"))
	if stream == "" {
		stream = "checkin-completions"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &completionBus{
		log:    log.With("service", "RedisCompletionBus"),
		rdb:    rdb,
		stream: stream,
	}, nil
}

func (b *completionBus) Publish(ctx context.Context, evt domain.CompletionEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis completion bus not initialized")
	}
	return b.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: b.stream,
		Values: map[string]interface{}{
			"check_in_id":      evt.CheckInID.String(),
			"check_in_kind":    string(evt.CheckInKind),
			"completion_state": evt.CompletionState,
			"organization_id":  evt.OrganizationID.String(),
			"occurred_at":      time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}

func (b *completionBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
