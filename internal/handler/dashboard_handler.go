package handler

import (
	"log/slog"
	"net/http"

	"tam_website/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service service.DashboardService
	logger  *slog.Logger
}

func NewDashboardHandler(s service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, logger: logger}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) RegisterDashboardRoutes(rg *gin.RouterGroup, authMW, contentMW gin.HandlerFunc) {
	rg.GET("/admin/dashboard", authMW, contentMW, h.Stats)
}
