package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"tam_website/internal/middleware"
	"tam_website/internal/model"
	"tam_website/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminArticleHandler serves article management for superusers and authors
type AdminArticleHandler struct {
	articles service.ArticleService
	teams    service.TeamService
	logger   *slog.Logger
}

func NewAdminArticleHandler(articles service.ArticleService, teams service.TeamService, logger *slog.Logger) *AdminArticleHandler {
	return &AdminArticleHandler{articles: articles, teams: teams, logger: logger}
}

func (h *AdminArticleHandler) List(c *gin.Context) {
	lang := searchLanguage(c)
	filters := articleFilters(c, lang)
	filters.Status = queryPtr(c, "status")

	articles, total, err := h.articles.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, filters.Page, total, mapSlice(articles, func(a *model.Article) model.AdminArticleItem {
		return adminArticleItem(a, lang)
	}))
}

// FilterData returns the option maps of the admin article filters.
func (h *AdminArticleHandler) FilterData(c *gin.Context) {
	lang := searchLanguage(c)
	teamOptions := map[string]string{"": "همه تیم‌ها"}

	page := model.NewPage(1, model.MaxPageSize)
	for {
		teams, total, err := h.teams.List(c.Request.Context(), model.NameFilters{Lang: lang, Page: page})
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		for i := range teams {
			teamOptions[strconv.FormatInt(teams[i].ID, 10)] = teams[i].Name(lang)
		}
		if !page.HasNext(total) {
			break
		}
		page.Number++
	}

	c.JSON(http.StatusOK, gin.H{
		"status": model.ArticleStatusLabels,
		"type":   model.ArticleTypeLabels,
		"team":   teamOptions,
	})
}

func (h *AdminArticleHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, adminArticleDetail(article))
}

func (h *AdminArticleHandler) Create(c *gin.Context) {
	var req model.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	callerID, _ := middleware.UserID(c)

	article, err := h.articles.CreateArticle(c.Request.Context(), callerID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, adminArticleDetail(article))
}

func (h *AdminArticleHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	article, err := h.articles.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, adminArticleDetail(article))
}

func (h *AdminArticleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	article, err := h.articles.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Article '%s' deleted successfully", article.Title(model.DefaultLanguage))})
}

// RegisterAdminArticleRoutes registers article management
func (h *AdminArticleHandler) RegisterAdminArticleRoutes(rg *gin.RouterGroup, authMW, contentMW gin.HandlerFunc) {
	articles := rg.Group("/admin/articles")
	articles.Use(authMW, contentMW)
	{
		articles.GET("", h.List)
		articles.POST("", h.Create)
		articles.GET("/filter-data", h.FilterData)
		articles.GET("/:id", h.Get)
		articles.PATCH("/:id", h.Update)
		articles.DELETE("/:id", h.Delete)
	}
}
