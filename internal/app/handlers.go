package app

import (
	"github.com/ar3/our-gruuv-sub014/internal/handlers"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

type Handlers struct {
	CheckIn      *handlers.CheckInHandler
	Finalization *handlers.FinalizationHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		CheckIn:      handlers.NewCheckInHandler(services.CheckIn, services.Discovery),
		Finalization: handlers.NewFinalizationHandler(services.CheckIn, services.Finalization),
	}
}
