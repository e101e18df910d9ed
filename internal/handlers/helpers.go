package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/middleware"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/logger"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// httpError maps service errors onto HTTP statuses. Unexpected errors are logged and hidden
// behind a generic message.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrBadRequest), errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	logger.Ctx(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// currentUserID returns the authenticated caller. Routes behind the JWT middleware always have one.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.CallerID(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

// viewerID is the caller on routes where authentication is optional; uuid.Nil for anonymous.
func viewerID(c echo.Context) uuid.UUID {
	id, _ := middleware.CallerID(c)
	return id
}

func pageParams(c echo.Context, bounds pagination.Bounds) (pagination.Params, error) {
	p, err := bounds.Parse(c.QueryParam("limit"), c.QueryParam("offset"))
	if err != nil {
		return pagination.Params{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return p, nil
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}
