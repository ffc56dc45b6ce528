package api

import (
	"errors"
	"net/http"
	"strconv"

	"CatalogSync/internal/config"
	"CatalogSync/internal/igdb"
	"CatalogSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler 目录同步管理接口
type SyncHandler struct {
	syncService *service.SyncService
	cfg         *config.Config
	logger      *logrus.Logger
}

func NewSyncHandler(syncService *service.SyncService, cfg *config.Config, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		cfg:         cfg,
		logger:      logger,
	}
}

// SyncCatalogHandler 触发一次目录同步
// @Summary 按模式同步外部游戏目录
// @Param mode path string true "同步模式（popular/search/genre/platform）"
// @Param query query string false "search模式的搜索词"
// @Param genre_id query int false "genre模式的类型ID"
// @Param platform_id query int false "platform模式的平台ID"
// @Param limit query int false "拉取条数"
// @Success 200 {object} service.SyncResult
// @Failure 503 {object} map[string]string
// @Router /sync/catalog/{mode} [post]
func (h *SyncHandler) SyncCatalogHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.cfg.Sync.DefaultLimit)))
	if limit > h.cfg.Sync.MaxLimit {
		limit = h.cfg.Sync.MaxLimit
	}
	genreID, _ := strconv.ParseUint(c.Query("genre_id"), 10, 64)
	platformID, _ := strconv.ParseUint(c.Query("platform_id"), 10, 64)

	opts := service.SyncOptions{
		Mode:       service.SyncMode(c.Param("mode")),
		Query:      c.Query("query"),
		GenreID:    genreID,
		PlatformID: platformID,
		Limit:      limit,
	}

	result, err := h.syncService.Sync(c.Request.Context(), opts)
	if err != nil {
		h.logger.Errorf("同步%s失败: %v", opts.Mode, err)
		c.JSON(statusForCatalogError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncStatsHandler 同步覆盖率统计
// @Summary 本地目录的同步覆盖率
// @Success 200 {object} service.SyncStats
// @Router /sync/catalog/stats [get]
func (h *SyncHandler) SyncStatsHandler(c *gin.Context) {
	stats, err := h.syncService.Stats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("SyncStats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// statusForCatalogError 错误种类→HTTP状态码。
// 运维需要把"配置缺失"与瞬时故障区分开：前者修配置，后者可重试。
func statusForCatalogError(err error) int {
	var cfgErr *igdb.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusServiceUnavailable
	}
	var upErr *igdb.UpstreamError
	if errors.As(err, &upErr) {
		if upErr.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	}
	var transErr *igdb.TransportError
	if errors.As(err, &transErr) {
		return http.StatusBadGateway
	}
	var parseErr *igdb.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
