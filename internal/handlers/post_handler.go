package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post creation, reads, the feed and interactions.
type PostHandler struct {
	content      *services.ContentService
	interactions *services.InteractionService
	graph        *services.GraphService
}

func NewPostHandler(content *services.ContentService, interactions *services.InteractionService, graph *services.GraphService) *PostHandler {
	return &PostHandler{content: content, interactions: interactions, graph: graph}
}

func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	// static segments before :id
	g.GET("/posts/feed", h.GetFeed)
	g.GET("/posts/user/:userId", h.GetUserPosts)
	g.GET("/posts/:id", h.GetPost)
	g.POST("/posts/:id/like", h.LikePost)
	g.POST("/posts/:id/unlike", h.UnlikePost)
	g.POST("/posts/:id/comment", h.CommentOnPost)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.content.CreatePost(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"post": post})
}

func (h *PostHandler) GetFeed(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	posts, err := h.graph.Feed(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	post, err := h.content.GetPost(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"post": post})
}

func (h *PostHandler) GetUserPosts(c echo.Context) error {
	viewerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	userID, err := parseIDParam(c, "userId", "user")
	if err != nil {
		return err
	}
	posts, err := h.content.UserPosts(c.Request().Context(), viewerID, userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

func (h *PostHandler) LikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.interactions.Like(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Post liked successfully"})
}

func (h *PostHandler) UnlikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.interactions.Unlike(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Post unliked successfully"})
}

func (h *PostHandler) CommentOnPost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.interactions.Comment(c.Request().Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"post": post})
}
