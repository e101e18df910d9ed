package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// CommentHandler handles comment and comment-like requests
type CommentHandler struct {
	commentService *services.CommentService
	bounds         pagination.Bounds
}

func NewCommentHandler(commentService *services.CommentService, bounds pagination.Bounds) *CommentHandler {
	return &CommentHandler{commentService: commentService, bounds: bounds}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts/:post_id/comments", h.GetComments)
	g.POST("/posts/:post_id/comments", h.CreateComment, requireAuth)
	g.PUT("/comments/:comment_id", h.UpdateComment, requireAuth)
	g.DELETE("/comments/:comment_id", h.DeleteComment, requireAuth)
	g.POST("/comments/:comment_id/like", h.ToggleCommentLike, requireAuth)
}

// GetComments lists a post's comments, oldest first.
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := paramUUID(c, "post_id")
	if err != nil {
		return err
	}
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := h.commentService.GetComments(c.Request().Context(), postID, viewerID(c), p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := paramUUID(c, "post_id")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), postID, caller, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "comment_id")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.UpdateComment(c.Request().Context(), id, caller, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "comment_id")
	if err != nil {
		return err
	}
	if err := h.commentService.DeleteComment(c.Request().Context(), id, caller); err != nil {
		return httpError(c, err)
	}
	return message(c, http.StatusOK, "Comment deleted")
}

func (h *CommentHandler) ToggleCommentLike(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "comment_id")
	if err != nil {
		return err
	}
	like, err := h.commentService.ToggleCommentLike(c.Request().Context(), id, caller)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comment_id": like.CommentID, "is_liked": like.IsLiked})
}
