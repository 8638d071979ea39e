package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers account management routes. The "me" routes
// require a valid token outright; the admin routes rely on the access
// engine inside the service.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/me", requireAuth, h.Me)
	rg.PATCH("/me", requireAuth, h.UpdateMe)

	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:username", h.Get)
	rg.PATCH("/:username", h.Update)
	rg.DELETE("/:username", h.Delete)
}

// Me returns the caller's own profile
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	resp, err := h.userService.Me(middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMe applies a partial self-edit. A role value from a non-admin
// caller is silently dropped while the rest of the payload is applied.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var in dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.userService.UpdateMe(middleware.ActorFromContext(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns all accounts; admin only
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	resp, err := h.userService.GetAll(middleware.ActorFromContext(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create registers an account; admin only
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var in dto.CreateUserDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.userService.Create(middleware.ActorFromContext(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get returns an account by username; admin or self
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	resp, err := h.userService.GetByUsername(middleware.ActorFromContext(c), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update edits an account; admin only
// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var in dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.userService.UpdateByUsername(middleware.ActorFromContext(c), c.Param("username"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes an account; admin only
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.DeleteByUsername(middleware.ActorFromContext(c), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
