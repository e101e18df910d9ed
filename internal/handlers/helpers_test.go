package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

func TestHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("post %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("follow relationship %w", services.ErrAlreadyExists), http.StatusConflict},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: content is empty", services.ErrBadRequest), http.StatusBadRequest},
		{services.ErrSelfFollow, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

			var he *echo.HTTPError
			require.ErrorAs(t, httpError(c, tt.err), &he)
			assert.Equal(t, tt.want, he.Code)
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, he.Message, "connection reset")
			}
		})
	}
}

func TestPageParams(t *testing.T) {
	e := echo.New()
	bounds := pagination.DefaultBounds()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?limit=500&offset=3", nil), httptest.NewRecorder())
	p, err := pageParams(c, bounds)
	require.NoError(t, err)
	assert.Equal(t, bounds.MaxLimit, p.Limit)
	assert.Equal(t, 3, p.Offset)

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?offset=-1", nil), httptest.NewRecorder())
	_, err = pageParams(c, bounds)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestParamUUID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("user_id")
	c.SetParamValues("nope")

	_, err := paramUUID(c, "user_id")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
