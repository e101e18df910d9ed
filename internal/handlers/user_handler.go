package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/middleware"
	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/logger"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// UserHandler handles user profile requests
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
	bounds      pagination.Bounds
}

func NewUserHandler(userService *services.UserService, authService *services.AuthService, bounds pagination.Bounds) *UserHandler {
	return &UserHandler{userService: userService, authService: authService, bounds: bounds}
}

// RegisterUserRoutes registers profile routes. Static paths are matched before /users/:user_id.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/users/me", h.GetMe, requireAuth)
	g.PUT("/users/me", h.UpdateMe, requireAuth)
	g.DELETE("/users/me", h.DeleteMe, requireAuth)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:user_id", h.GetUser)
}

// GetMe returns the caller's profile.
func (h *UserHandler) GetMe(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	profile, err := h.userService.GetProfile(c.Request().Context(), caller, caller)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetUser returns a profile with follow counts and, for an authenticated viewer, the
// relationship in both directions.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramUUID(c, "user_id")
	if err != nil {
		return err
	}
	profile, err := h.userService.GetProfile(c.Request().Context(), id, viewerID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateMe applies a partial profile update.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteMe deletes the caller's account and revokes the token used to do it.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.userService.DeleteAccount(ctx, caller); err != nil {
		return httpError(c, err)
	}
	if err := h.authService.Logout(ctx, middleware.Claims(c)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to revoke token of deleted account")
	}
	return message(c, http.StatusOK, "Account deleted")
}

// SearchUsers finds users whose username contains ?q=.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := h.userService.Search(c.Request().Context(), c.QueryParam("q"), p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
