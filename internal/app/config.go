package app

import (
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
	"github.com/ar3/our-gruuv-sub014/internal/utils"
)

type Config struct {
	JWTSecretKey string
	HTTPAddr     string
	RedisAddr    string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	httpAddr := utils.GetEnv("HTTP_ADDR", ":8080", log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "", log)
	return Config{
		JWTSecretKey: jwtSecretKey,
		HTTPAddr:     httpAddr,
		RedisAddr:    redisAddr,
	}
}
