package handler

import (
	"log/slog"
	"net/http"
	"time"

	"tam_website/internal/middleware"
	"tam_website/internal/model"
	"tam_website/internal/service"

	"github.com/gin-gonic/gin"
)

// BlogHandler serves the public site and the author article endpoints
type BlogHandler struct {
	articles   service.ArticleService
	teams      service.TeamService
	categories service.CategoryService
	logger     *slog.Logger
	now        func() time.Time
}

func NewBlogHandler(articles service.ArticleService, teams service.TeamService, categories service.CategoryService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{articles: articles, teams: teams, categories: categories, logger: logger, now: time.Now}
}

func articleFilters(c *gin.Context, lang string) model.ArticleFilters {
	return model.ArticleFilters{
		Type:   queryPtr(c, "type"),
		TeamID: queryInt64Ptr(c, "team"),
		Search: queryPtr(c, "search"),
		Lang:   lang,
		Page:   parsePage(c),
	}
}

func (h *BlogHandler) ListArticles(c *gin.Context) {
	lang := middleware.Lang(c)
	filters := articleFilters(c, lang)

	articles, total, err := h.articles.ListPublished(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	now := h.now()
	respondPage(c, filters.Page, total, mapSlice(articles, func(a *model.Article) model.ArticleListItem {
		return articleListItem(a, lang, now, false)
	}))
}

func (h *BlogHandler) GetArticle(c *gin.Context) {
	article, err := h.articles.GetPublished(c.Request.Context(), c.Param("slug"), c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, articleView(article, middleware.Lang(c), h.now(), false))
}

func (h *BlogHandler) ToggleLike(c *gin.Context) {
	res, err := h.articles.ToggleLike(c.Request.Context(), c.Param("slug"), c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BlogHandler) ListTeams(c *gin.Context) {
	lang := middleware.Lang(c)
	filters := model.NameFilters{Search: queryPtr(c, "search"), Lang: lang, Page: parsePage(c)}

	teams, total, err := h.teams.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, filters.Page, total, mapSlice(teams, func(t *model.Team) model.TeamListItem {
		return t.ListItem(lang)
	}))
}

func (h *BlogHandler) ListCategories(c *gin.Context) {
	lang := middleware.Lang(c)
	filters := model.NameFilters{Search: queryPtr(c, "search"), Lang: lang, Page: parsePage(c)}

	categories, total, err := h.categories.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, filters.Page, total, mapSlice(categories, func(cat *model.Category) model.CategoryListItem {
		return cat.ListItem(lang)
	}))
}

// Author endpoints

func (h *BlogHandler) ListOwnArticles(c *gin.Context) {
	lang := middleware.Lang(c)
	filters := articleFilters(c, lang)
	filters.Status = queryPtr(c, "status")
	authorID, _ := middleware.UserID(c)

	articles, total, err := h.articles.ListByAuthor(c.Request.Context(), authorID, filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	now := h.now()
	respondPage(c, filters.Page, total, mapSlice(articles, func(a *model.Article) model.ArticleListItem {
		return articleListItem(a, lang, now, true)
	}))
}

func (h *BlogHandler) PreviewOwnArticle(c *gin.Context) {
	authorID, _ := middleware.UserID(c)
	article, err := h.articles.GetOwn(c.Request.Context(), authorID, c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, articleView(article, middleware.Lang(c), h.now(), true))
}

func (h *BlogHandler) CreateArticle(c *gin.Context) {
	var req model.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	authorID, _ := middleware.UserID(c)

	article, err := h.articles.CreateArticle(c.Request.Context(), authorID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, articleView(article, middleware.Lang(c), h.now(), true))
}

func (h *BlogHandler) UpdateArticle(c *gin.Context) {
	var req model.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	authorID, _ := middleware.UserID(c)

	article, err := h.articles.UpdateOwn(c.Request.Context(), authorID, c.Param("slug"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, articleView(article, middleware.Lang(c), h.now(), true))
}

func (h *BlogHandler) DeleteArticle(c *gin.Context) {
	authorID, _ := middleware.UserID(c)
	if err := h.articles.DeleteOwn(c.Request.Context(), authorID, c.Param("slug")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BlogHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"image": "No file was submitted."}})
		return
	}
	authorID, _ := middleware.UserID(c)

	image, err := h.articles.UploadImage(c.Request.Context(), authorID, c.Param("slug"), file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

// RegisterBlogRoutes registers the public site and the author endpoints
func (h *BlogHandler) RegisterBlogRoutes(rg *gin.RouterGroup, authMW, authorMW gin.HandlerFunc) {
	blog := rg.Group("/blog")
	{
		blog.GET("/articles", h.ListArticles)
		blog.GET("/articles/:slug", h.GetArticle)
		blog.POST("/articles/:slug/like", h.ToggleLike)
		blog.GET("/teams", h.ListTeams)
		blog.GET("/categories", h.ListCategories)
	}

	authorRoutes := blog.Group("")
	authorRoutes.Use(authMW, authorMW)
	{
		authorRoutes.POST("/articles", h.CreateArticle)
		authorRoutes.PATCH("/articles/:slug", h.UpdateArticle)
		authorRoutes.DELETE("/articles/:slug", h.DeleteArticle)
		authorRoutes.POST("/articles/:slug/images", h.UploadImage)
		authorRoutes.GET("/author/articles", h.ListOwnArticles)
		authorRoutes.GET("/author/articles/:slug", h.PreviewOwnArticle)
	}
}
