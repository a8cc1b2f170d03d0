package app

import (
	"github.com/ar3/our-gruuv-sub014/internal/middleware"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

type Middleware struct {
	Identity *middleware.IdentityMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Identity: middleware.NewIdentityMiddleware(log, cfg.JWTSecretKey),
	}
}
