package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// NotificationHandler serves the caller's notification feed
type NotificationHandler struct {
	notificationService *services.NotificationService
	bounds              pagination.Bounds
}

func NewNotificationHandler(notificationService *services.NotificationService, bounds pagination.Bounds) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, bounds: bounds}
}

// RegisterNotificationRoutes registers notification routes; all of them need a caller.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, requireAuth)
	g.GET("/notifications/unread_count", h.GetUnreadCount, requireAuth)
	g.PUT("/notifications/read", h.MarkAllRead, requireAuth)
}

// GetNotifications lists the caller's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := h.notificationService.List(c.Request().Context(), caller, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	count, err := h.notificationService.CountUnread(c.Request().Context(), caller)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	updated, err := h.notificationService.MarkAllRead(c.Request().Context(), caller)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": updated})
}
