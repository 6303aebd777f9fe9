package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the follow graph: follow, unfollow, discovery and
// profiles.
type UserHandler struct {
	graph *services.GraphService
}

func NewUserHandler(graph *services.GraphService) *UserHandler {
	return &UserHandler{graph: graph}
}

func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users/follow/:userId", h.Follow)
	g.POST("/users/unfollow/:userId", h.Unfollow)
	g.GET("/users", h.Discover)
	g.GET("/users/:userId", h.GetProfile)
}

func (h *UserHandler) Follow(c echo.Context) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "userId", "user")
	if err != nil {
		return err
	}
	if err := h.graph.Follow(c.Request().Context(), actorID, targetID); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "User followed successfully"})
}

func (h *UserHandler) Unfollow(c echo.Context) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "userId", "user")
	if err != nil {
		return err
	}
	if err := h.graph.Unfollow(c.Request().Context(), actorID, targetID); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "User unfollowed successfully"})
}

func (h *UserHandler) Discover(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	users, err := h.graph.Discover(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	viewerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	userID, err := parseIDParam(c, "userId", "user")
	if err != nil {
		return err
	}
	profile, err := h.graph.Profile(c.Request().Context(), viewerID, userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user": profile})
}
