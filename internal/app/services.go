package app

import (
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/clients/redis"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
	"github.com/ar3/our-gruuv-sub014/internal/services"
)

type Services struct {
	Resolver     services.ResolverService
	Completion   services.CompletionService
	Discovery    services.DiscoveryService
	Notifier     services.CompletionNotifier
	CheckIn      services.CheckInService
	Finalization services.FinalizationService

	CompletionBus redis.CompletionBus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	// Redis is optional: without it the notifier degrades to a logged no-op.
	var bus redis.CompletionBus
	if cfg.RedisAddr != "" {
		b, err := redis.NewCompletionBus(log)
		if err != nil {
			log.Warn("completion bus init failed, continuing without it", "error", err)
		} else {
			bus = b
		}
	}

	resolver := services.NewResolverService(log, r.EmploymentTenure, r.AssignmentTenure, r.PositionCheckIn, r.AssignmentCheckIn, r.AspirationCheckIn)
	completion := services.NewCompletionService(db, log, r.PositionCheckIn, r.AssignmentCheckIn, r.AspirationCheckIn)
	discovery := services.NewDiscoveryService(log, r.EmploymentTenure, r.AssignmentTenure, r.PositionAssignment, r.Assignment, r.Aspiration, r.AssignmentCheckIn)
	notifier := services.NewCompletionNotifier(log, bus)
	checkIn := services.NewCheckInService(log, r.Teammate, r.MaapSnapshot, resolver, completion, discovery, notifier, r.PositionCheckIn, r.AssignmentCheckIn, r.AspirationCheckIn)
	finalization := services.NewFinalizationService(db, log, r.Teammate, r.MaapSnapshot, r.PositionCheckIn, r.AssignmentCheckIn, r.AspirationCheckIn)

	return Services{
		Resolver:      resolver,
		Completion:    completion,
		Discovery:     discovery,
		Notifier:      notifier,
		CheckIn:       checkIn,
		Finalization:  finalization,
		CompletionBus: bus,
	}, nil
}
