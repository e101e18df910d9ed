package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// FollowHandler exposes the follow state machine. The acting side of every transition is the
// authenticated caller; :user_id is always the other party.
type FollowHandler struct {
	followService *services.FollowService
	bounds        pagination.Bounds
}

func NewFollowHandler(followService *services.FollowService, bounds pagination.Bounds) *FollowHandler {
	return &FollowHandler{followService: followService, bounds: bounds}
}

// RegisterFollowRoutes registers follow-related routes. requireAuth guards the transitions.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/users/:user_id/follow_request", h.RequestFollow, requireAuth)
	g.DELETE("/users/:user_id/cancel_request", h.CancelRequest, requireAuth)
	g.POST("/users/:user_id/accept_request", h.AcceptRequest, requireAuth)
	g.DELETE("/users/:user_id/reject_request", h.RejectRequest, requireAuth)
	g.DELETE("/users/:user_id/unfollow", h.Unfollow, requireAuth)
	g.DELETE("/users/:user_id/reject_follow", h.RejectFollow, requireAuth)
	g.GET("/users/me/follow_requests", h.GetPendingRequests, requireAuth)

	g.GET("/users/:user_id/followers", h.GetFollowers)
	g.GET("/users/:user_id/followings", h.GetFollowings)
}

// RequestFollow sends a follow request from the caller to :user_id.
func (h *FollowHandler) RequestFollow(c echo.Context) error {
	caller, target, err := h.pair(c)
	if err != nil {
		return err
	}
	if _, err := h.followService.RequestFollow(c.Request().Context(), caller, target); err != nil {
		return httpError(c, err)
	}
	return message(c, http.StatusCreated, "Follow request sent")
}

// CancelRequest withdraws the caller's pending request to :user_id.
func (h *FollowHandler) CancelRequest(c echo.Context) error {
	return h.transition(c, h.followService.CancelRequest, "Follow request cancelled")
}

// AcceptRequest accepts the pending request :user_id sent to the caller.
func (h *FollowHandler) AcceptRequest(c echo.Context) error {
	caller, requester, err := h.pair(c)
	if err != nil {
		return err
	}
	if _, err := h.followService.AcceptRequest(c.Request().Context(), caller, requester); err != nil {
		return httpError(c, err)
	}
	return message(c, http.StatusOK, "Follow request accepted")
}

// RejectRequest declines the pending request :user_id sent to the caller.
func (h *FollowHandler) RejectRequest(c echo.Context) error {
	return h.transition(c, h.followService.RejectRequest, "Follow request rejected")
}

// Unfollow stops the caller following :user_id.
func (h *FollowHandler) Unfollow(c echo.Context) error {
	return h.transition(c, h.followService.Unfollow, "Unfollowed")
}

// RejectFollow removes :user_id from the caller's followers.
func (h *FollowHandler) RejectFollow(c echo.Context) error {
	return h.transition(c, h.followService.RejectFollow, "Follower removed")
}

// GetFollowers lists accepted followers of :user_id.
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.list(c, h.followService.GetFollowers)
}

// GetFollowings lists users :user_id follows.
func (h *FollowHandler) GetFollowings(c echo.Context) error {
	return h.list(c, h.followService.GetFollowings)
}

// GetPendingRequests lists users waiting for the caller to accept them.
func (h *FollowHandler) GetPendingRequests(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := h.followService.GetPendingRequests(c.Request().Context(), caller, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *FollowHandler) pair(c echo.Context) (caller, other uuid.UUID, err error) {
	if caller, err = currentUserID(c); err != nil {
		return
	}
	other, err = paramUUID(c, "user_id")
	return
}

func (h *FollowHandler) transition(c echo.Context, op func(ctx context.Context, caller, other uuid.UUID) error, msg string) error {
	caller, other, err := h.pair(c)
	if err != nil {
		return err
	}
	if err := op(c.Request().Context(), caller, other); err != nil {
		return httpError(c, err)
	}
	return message(c, http.StatusOK, msg)
}

func (h *FollowHandler) list(c echo.Context, op func(context.Context, uuid.UUID, pagination.Params) (pagination.Page[models.UserSummary], error)) error {
	userID, err := paramUUID(c, "user_id")
	if err != nil {
		return err
	}
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := op(c.Request().Context(), userID, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
