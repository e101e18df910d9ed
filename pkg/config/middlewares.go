package config

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/anonto42/spire/backend/pkg/logger"
)

// SetupMiddleware installs the global middleware chain. Base64 image uploads travel in JSON
// bodies, hence the generous body limit.
func SetupMiddleware(e *echo.Echo, l zerolog.Logger) {
	e.Use(middleware.Recover())
	e.Use(logger.EchoMiddleware(l))
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("12M"))
}
