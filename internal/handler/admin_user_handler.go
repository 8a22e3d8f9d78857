package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tam_website/internal/middleware"
	"tam_website/internal/model"
	"tam_website/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminUserHandler serves the superuser account management endpoints
type AdminUserHandler struct {
	service service.UserService
	logger  *slog.Logger
}

func NewAdminUserHandler(s service.UserService, logger *slog.Logger) *AdminUserHandler {
	return &AdminUserHandler{service: s, logger: logger}
}

func userID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}

// Access tells the admin panel whether the caller may enter it.
func (h *AdminUserHandler) Access(c *gin.Context) {
	callerID, _ := middleware.UserID(c)
	user, err := h.service.GetUser(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !user.IsSuperuser && !user.IsAuthor && !user.IsSeller {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Access denied."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Access granted.", "user": user.Info()})
}

func (h *AdminUserHandler) List(c *gin.Context) {
	filters := model.UserFilters{
		UserType: queryPtr(c, "user_type"),
		Search:   queryPtr(c, "search"),
		Page:     parsePage(c),
	}
	if v, ok := c.GetQuery("is_active"); ok {
		if active, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			filters.IsActive = &active
		}
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, filters.Page, total, mapSlice(users, (*model.User).Info))
}

func (h *AdminUserHandler) FilterData(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_permissions": model.UserPermissionLabels})
}

func (h *AdminUserHandler) Get(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.Detail())
}

func (h *AdminUserHandler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req model.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.Detail())
}

func (h *AdminUserHandler) Create(c *gin.Context) {
	var req model.AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"detail": "کاربر با موفقیت ساخته شد!", "id": user.ID})
}

func (h *AdminUserHandler) ChangePassword(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req model.AdminChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), id, req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "گذرواژه با موفقیت تغییر کرد."})
}

func (h *AdminUserHandler) SetActive(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req model.DeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	callerID, _ := middleware.UserID(c)

	pending, err := h.service.SetActive(c.Request.Context(), callerID, id, *req.IsActive, queryBool(c, "force_deactivate"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if pending {
		c.JSON(http.StatusOK, gin.H{
			"detail":                    "You are trying to deactivate your own account. Please confirm in the next step.",
			"self_deactivation_pending": true,
		})
		return
	}

	detail := "User deactivated successfully."
	if *req.IsActive {
		detail = "User activated successfully."
	}
	c.JSON(http.StatusOK, gin.H{"detail": detail, "is_active": *req.IsActive})
}

// RegisterAdminUserRoutes registers /admin/access for any signed in user and the superuser user management
func (h *AdminUserHandler) RegisterAdminUserRoutes(rg *gin.RouterGroup, authMW, superuserMW gin.HandlerFunc) {
	adminGroup := rg.Group("/admin")
	adminGroup.Use(authMW)
	adminGroup.GET("/access", h.Access)

	users := adminGroup.Group("/users")
	users.Use(superuserMW)
	{
		users.GET("", h.List)
		users.POST("", h.Create)
		users.GET("/filter-data", h.FilterData)
		users.GET("/:id", h.Get)
		users.PATCH("/:id", h.Update)
		users.PATCH("/:id/password", h.ChangePassword)
		users.PATCH("/:id/deactivate", h.SetActive)
	}
}
