package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// PostHandler handles HTTP requests related to posts, their images and likes
type PostHandler struct {
	postService *services.PostService
	bounds      pagination.Bounds
}

func NewPostHandler(postService *services.PostService, bounds pagination.Bounds) *PostHandler {
	return &PostHandler{postService: postService, bounds: bounds}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:post_id", h.GetPost)
	g.GET("/users/:user_id/posts", h.GetUserPosts)

	g.GET("/feed", h.GetFeed, requireAuth)
	g.POST("/posts", h.CreatePost, requireAuth)
	g.PUT("/posts/:post_id", h.UpdatePost, requireAuth)
	g.DELETE("/posts/:post_id", h.DeletePost, requireAuth)
	g.POST("/posts/:post_id/images", h.UploadImage, requireAuth)
	g.POST("/posts/:post_id/like", h.TogglePostLike, requireAuth)
}

// GetPosts lists the newest posts.
func (h *PostHandler) GetPosts(c echo.Context) error {
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := h.postService.GetPosts(c.Request().Context(), viewerID(c), p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetFeed returns the caller's posts and those of the users they follow, newest first.
func (h *PostHandler) GetFeed(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := h.postService.GetFeed(c.Request().Context(), caller, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetUserPosts lists posts written by :user_id.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	owner, err := paramUUID(c, "user_id")
	if err != nil {
		return err
	}
	p, err := pageParams(c, h.bounds)
	if err != nil {
		return err
	}
	page, err := h.postService.GetUserPosts(c.Request().Context(), owner, viewerID(c), p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := paramUUID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := h.postService.GetPost(c.Request().Context(), id, viewerID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "post_id")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), id, caller, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "post_id")
	if err != nil {
		return err
	}
	if err := h.postService.DeletePost(c.Request().Context(), id, caller); err != nil {
		return httpError(c, err)
	}
	return message(c, http.StatusOK, "Post deleted")
}

// UploadImage attaches a base64 encoded image to a post the caller owns.
func (h *PostHandler) UploadImage(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "post_id")
	if err != nil {
		return err
	}
	var req models.UploadImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	image, err := h.postService.UploadImage(c.Request().Context(), id, caller, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, image)
}

// TogglePostLike likes or unlikes a post.
func (h *PostHandler) TogglePostLike(c echo.Context) error {
	caller, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "post_id")
	if err != nil {
		return err
	}
	like, err := h.postService.TogglePostLike(c.Request().Context(), id, caller)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": like.PostID, "is_liked": like.IsLiked})
}
