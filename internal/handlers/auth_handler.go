package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/middleware"
	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/services"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterAuthRoutes registers authentication routes. Only logout needs a token.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/logout", h.Logout, middleware.JWTAuthMiddleware(h.authService))
}

// Register creates a local account and returns a token for it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": user, "token": token.Token, "expires_at": token.ExpiresAt})
}

// Login exchanges email and password for a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// FirebaseLogin exchanges a Firebase ID token for an API token, creating the user on first use.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user, "token": token.Token, "expires_at": token.ExpiresAt})
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), middleware.Claims(c)); err != nil {
		return httpError(c, err)
	}
	return message(c, http.StatusOK, "Logged out")
}
