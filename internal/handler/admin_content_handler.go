package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"tam_website/internal/model"
	"tam_website/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminContentHandler serves team, player and category management
type AdminContentHandler struct {
	teams      service.TeamService
	players    service.PlayerService
	categories service.CategoryService
	logger     *slog.Logger
}

func NewAdminContentHandler(teams service.TeamService, players service.PlayerService, categories service.CategoryService, logger *slog.Logger) *AdminContentHandler {
	return &AdminContentHandler{teams: teams, players: players, categories: categories, logger: logger}
}

// optionalImage returns the uploaded "image" file, or nil when none was sent.
func optionalImage(c *gin.Context) (*multipart.FileHeader, bool) {
	file, err := c.FormFile("image")
	if err == nil {
		return file, true
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	badRequest(c, err)
	return nil, false
}

func nameFilters(c *gin.Context) model.NameFilters {
	return model.NameFilters{
		Search: queryPtr(c, "search"),
		Lang:   searchLanguage(c),
		Page:   parsePage(c),
	}
}

// Teams

func (h *AdminContentHandler) ListTeams(c *gin.Context) {
	filters := nameFilters(c)
	teams, total, err := h.teams.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, filters.Page, total, mapSlice(teams, func(t *model.Team) model.TeamListItem {
		return t.ListItem(filters.Lang)
	}))
}

func (h *AdminContentHandler) GetTeam(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	team, err := h.teams.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, team.Detail())
}

func (h *AdminContentHandler) CreateTeam(c *gin.Context) {
	var req model.TeamRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, ok := optionalImage(c)
	if !ok {
		return
	}

	team, err := h.teams.Create(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, team.Detail())
}

func (h *AdminContentHandler) UpdateTeam(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.TeamRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, ok := optionalImage(c)
	if !ok {
		return
	}

	team, err := h.teams.Update(c.Request.Context(), id, req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, team.Detail())
}

func (h *AdminContentHandler) DeleteTeam(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	team, err := h.teams.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Team '%s' deleted successfully", team.Name(model.DefaultLanguage))})
}

// Players

func (h *AdminContentHandler) ListPlayers(c *gin.Context) {
	filters := nameFilters(c)
	filters.Position = queryPtr(c, "position")
	players, total, err := h.players.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, filters.Page, total, mapSlice(players, func(p *model.Player) model.PlayerListItem {
		return p.ListItem(filters.Lang)
	}))
}

func (h *AdminContentHandler) Positions(c *gin.Context) {
	options := map[string]string{"": "همه‌ی پست‌ها"}
	for k, v := range model.PositionLabelsFa {
		options[k] = v
	}
	c.JSON(http.StatusOK, options)
}

func (h *AdminContentHandler) GetPlayer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	player, err := h.players.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, player.Detail())
}

func (h *AdminContentHandler) CreatePlayer(c *gin.Context) {
	var req model.PlayerRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, ok := optionalImage(c)
	if !ok {
		return
	}

	player, err := h.players.Create(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, player.Detail())
}

func (h *AdminContentHandler) UpdatePlayer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.PlayerRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, ok := optionalImage(c)
	if !ok {
		return
	}

	player, err := h.players.Update(c.Request.Context(), id, req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, player.Detail())
}

func (h *AdminContentHandler) DeletePlayer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	player, err := h.players.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Player '%s' deleted successfully", player.Name(model.DefaultLanguage))})
}

// Categories

func (h *AdminContentHandler) ListCategories(c *gin.Context) {
	filters := nameFilters(c)
	categories, total, err := h.categories.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, filters.Page, total, mapSlice(categories, func(cat *model.Category) model.CategoryListItem {
		return cat.ListItem(filters.Lang)
	}))
}

func (h *AdminContentHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, category.Detail())
}

func (h *AdminContentHandler) CreateCategory(c *gin.Context) {
	var req model.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, ok := optionalImage(c)
	if !ok {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, category.Detail())
}

func (h *AdminContentHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, ok := optionalImage(c)
	if !ok {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, category.Detail())
}

func (h *AdminContentHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	category, err := h.categories.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	name, _ := category.Translations.Get(model.DefaultLanguage)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Category '%s' deleted successfully", name.Name)})
}

// RegisterAdminContentRoutes registers team, player and category management
func (h *AdminContentHandler) RegisterAdminContentRoutes(rg *gin.RouterGroup, authMW, contentMW gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(authMW, contentMW)

	teams := admin.Group("/teams")
	{
		teams.GET("", h.ListTeams)
		teams.POST("", h.CreateTeam)
		teams.GET("/:id", h.GetTeam)
		teams.PATCH("/:id", h.UpdateTeam)
		teams.DELETE("/:id", h.DeleteTeam)
	}

	players := admin.Group("/players")
	{
		players.GET("", h.ListPlayers)
		players.POST("", h.CreatePlayer)
		players.GET("/positions", h.Positions)
		players.GET("/:id", h.GetPlayer)
		players.PATCH("/:id", h.UpdatePlayer)
		players.DELETE("/:id", h.DeletePlayer)
	}

	categories := admin.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PATCH("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}
