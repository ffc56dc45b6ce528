package api

import (
	"net/http"

	"CatalogSync/internal/igdb"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CatalogHandler 目录参考数据与缓存管理接口
type CatalogHandler struct {
	client *igdb.Client
	logger *logrus.Logger
}

func NewCatalogHandler(client *igdb.Client, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		client: client,
		logger: logger,
	}
}

// ListGenres 类型列表（来自上游，长TTL缓存）
// GET /api/catalog/genres
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	if !h.client.IsConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "IGDB凭证未配置"})
		return
	}
	items, err := h.client.Genres(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListGenres failed")
		c.JSON(statusForCatalogError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListPlatforms 平台列表（来自上游，长TTL缓存）
// GET /api/catalog/platforms
func (h *CatalogHandler) ListPlatforms(c *gin.Context) {
	if !h.client.IsConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "IGDB凭证未配置"})
		return
	}
	items, err := h.client.Platforms(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListPlatforms failed")
		c.JSON(statusForCatalogError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CacheStats 响应缓存自省
// GET /api/catalog/cache
func (h *CatalogHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.CacheStats())
}

// ClearCache 清空响应缓存（幂等）
// DELETE /api/catalog/cache
func (h *CatalogHandler) ClearCache(c *gin.Context) {
	h.client.ClearCache()
	c.JSON(http.StatusOK, gin.H{"message": "缓存已清空"})
}
