package app

import (
	"github.com/gin-gonic/gin"

	"github.com/ar3/our-gruuv-sub014/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		IdentityMiddleware:  middleware.Identity,
		CheckInHandler:      handlers.CheckIn,
		FinalizationHandler: handlers.Finalization,
	})
}
