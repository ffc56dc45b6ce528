package api

import (
	"net/http"
	"strconv"
	"strings"

	"CatalogSync/internal/repository"
	"CatalogSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GameHandler 提供给前端的游戏查询接口
type GameHandler struct {
	gameService *service.GameService
	logger      *logrus.Logger
}

func NewGameHandler(db *gorm.DB, logger *logrus.Logger) *GameHandler {
	repo := repository.NewGameRepository(db)
	svc := service.NewGameService(repo, logger)
	return &GameHandler{
		gameService: svc,
		logger:      logger,
	}
}

// ListGames 游戏列表接口
// GET /api/games?genre=Shooter&platform=PC&search=halo&page=1&page_size=20&include_inactive=false
func (h *GameHandler) ListGames(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	includeInactive := strings.EqualFold(c.Query("include_inactive"), "true")

	filter := repository.GameFilter{
		Genre:      c.Query("genre"),
		Platform:   c.Query("platform"),
		Search:     c.Query("search"),
		ActiveOnly: !includeInactive,
	}

	result, err := h.gameService.ListGames(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListGames failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGameDetail 游戏详情。:id 为数字时即本地ID，否则按slug解析
// GET /api/games/:id
func (h *GameHandler) GetGameDetail(c *gin.Context) {
	idOrSlug := c.Param("id")
	if idOrSlug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id or slug is required"})
		return
	}

	result, err := h.gameService.GetGameDetail(c.Request.Context(), idOrSlug)
	if err != nil {
		h.logger.WithError(err).Error("GetGameDetail failed")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
