package handler

import (
	"log/slog"
	"net/http"

	"tam_website/internal/middleware"
	"tam_website/internal/model"
	"tam_website/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: s, logger: logger}
}

func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req model.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.service.SendOTP(c.Request.Context(), req.PhoneNumber, queryBool(c, "reset_password"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reset := queryBool(c, "reset_password")
	user, err := h.service.VerifyOTP(c.Request.Context(), req.PhoneNumber, req.Code, reset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if reset {
		c.JSON(http.StatusOK, gin.H{"message": "OTP code was correct!"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "User successfully registered!",
		"phone_number": user.PhoneNumber,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.Register(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"phone_number": req.PhoneNumber})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	access, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID, _ := middleware.UserID(c)

	user, err := h.service.ChangePassword(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "your password changed successfully!",
		"phone_number": user.PhoneNumber,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "your password successfully changed!"})
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.Info())
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID, _ := middleware.UserID(c)

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.Info())
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW, guestMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/otp/send", guestMW, h.SendOTP)
		authGroup.POST("/otp/verify", guestMW, h.VerifyOTP)
		authGroup.POST("/register", guestMW, h.Register)
		authGroup.POST("/reset-password", guestMW, h.ResetPassword)
		authGroup.POST("/token", h.Login)
		authGroup.POST("/token/refresh", h.Refresh)
		authGroup.PATCH("/change-password", authMW, h.ChangePassword)
		authGroup.GET("/user", authMW, h.GetUser)
		authGroup.PATCH("/profile", authMW, h.UpdateProfile)
	}
}
