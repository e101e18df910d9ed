package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/logger"
)

const (
	contextKeyClaims   = "user"
	contextKeyCallerID = "caller_id"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (*models.JwtCustomClaims, uuid.UUID, error)
}

// JWTAuthMiddleware rejects requests without a valid, unrevoked bearer token.
func JWTAuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return jwtAuth(parser, true)
}

// OptionalJWTAuthMiddleware identifies the caller when a token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func OptionalJWTAuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return jwtAuth(parser, false)
}

func jwtAuth(parser TokenParser, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if !required {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			req := c.Request()
			claims, callerID, err := parser.ParseToken(req.Context(), parts[1])
			if err != nil {
				if errors.Is(err, services.ErrUnavailable) {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "Authentication temporarily unavailable")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(contextKeyClaims, claims)
			c.Set(contextKeyCallerID, callerID)
			c.Set(logger.FieldUserID, callerID.String())

			l := logger.Ctx(req.Context()).With().Str(logger.FieldUserID, callerID.String()).Logger()
			c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), l)))

			return next(c)
		}
	}
}

// CallerID returns the authenticated caller, if any.
func CallerID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(contextKeyCallerID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Claims returns the verified token claims, if any.
func Claims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(contextKeyClaims).(*models.JwtCustomClaims)
	return claims
}

// RequireAuth rejects requests that OptionalJWTAuthMiddleware left anonymous.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CallerID(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}
			return next(c)
		}
	}
}
