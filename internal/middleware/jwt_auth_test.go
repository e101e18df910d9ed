package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/services"
)

type stubParser struct {
	id  uuid.UUID
	err error
}

func (s stubParser) ParseToken(_ context.Context, token string) (*models.JwtCustomClaims, uuid.UUID, error) {
	if s.err != nil {
		return nil, uuid.Nil, s.err
	}
	return &models.JwtCustomClaims{UserID: s.id.String()}, s.id, nil
}

func serve(mw echo.MiddlewareFunc, header string) (int, uuid.UUID) {
	e := echo.New()
	var seen uuid.UUID
	e.GET("/", func(c echo.Context) error {
		seen, _ = CallerID(c)
		return c.NoContent(http.StatusNoContent)
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code, seen
}

func TestJWTAuthMiddleware(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		parser   stubParser
		required bool
		header   string
		want     int
		wantID   uuid.UUID
	}{
		{name: "valid", parser: stubParser{id: id}, required: true, header: "Bearer tok", want: http.StatusNoContent, wantID: id},
		{name: "missing", parser: stubParser{id: id}, required: true, want: http.StatusUnauthorized},
		{name: "malformed", parser: stubParser{id: id}, required: true, header: "Token tok", want: http.StatusUnauthorized},
		{name: "rejected", parser: stubParser{err: services.ErrInvalidCredentials}, required: true, header: "Bearer tok", want: http.StatusUnauthorized},
		{name: "store down", parser: stubParser{err: services.ErrUnavailable}, required: true, header: "Bearer tok", want: http.StatusServiceUnavailable},
		{name: "optional anonymous", parser: stubParser{err: errors.New("unused")}, want: http.StatusNoContent},
		{name: "optional valid", parser: stubParser{id: id}, header: "bearer tok", want: http.StatusNoContent, wantID: id},
		{name: "optional invalid", parser: stubParser{err: services.ErrInvalidCredentials}, header: "Bearer tok", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := OptionalJWTAuthMiddleware(tt.parser)
			if tt.required {
				mw = JWTAuthMiddleware(tt.parser)
			}
			code, seen := serve(mw, tt.header)
			require.Equal(t, tt.want, code)
			assert.Equal(t, tt.wantID, seen)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	id := uuid.New()
	chain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return OptionalJWTAuthMiddleware(stubParser{id: id})(RequireAuth()(next))
	}

	code, seen := serve(chain, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, uuid.Nil, seen)

	code, seen = serve(chain, "Bearer tok")
	assert.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, id, seen)
}
