package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CatalogSync/internal/interfaces"
	"CatalogSync/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SyncMode 同步模式。运行时拿到未知模式直接报错，不走默认分支兜底。
type SyncMode string

const (
	SyncModePopular  SyncMode = "popular"  // 按上游热度拉取
	SyncModeSearch   SyncMode = "search"   // 按名称搜索拉取
	SyncModeGenre    SyncMode = "genre"    // 按类型拉取
	SyncModePlatform SyncMode = "platform" // 按平台拉取
)

// SyncOptions 一次同步的参数
type SyncOptions struct {
	Mode       SyncMode `json:"mode"`
	Query      string   `json:"query"`       // search模式的搜索词
	GenreID    uint64   `json:"genre_id"`    // genre模式的类型ID
	PlatformID uint64   `json:"platform_id"` // platform模式的平台ID
	Limit      int      `json:"limit"`       // 拉取条数
}

// SyncRecordError 单条记录的失败信息
type SyncRecordError struct {
	ExternalID uint64 `json:"external_id"`
	Reason     string `json:"reason"`
}

// SyncResult 一次同步的聚合结果。仅构造返回，不落库。
// Failed非零不代表整次同步失败：失败记录已被隔离，由调用方裁决。
type SyncResult struct {
	RunID       string            `json:"run_id"`
	Mode        SyncMode          `json:"mode"`
	Total       int               `json:"total"`        // 观察到的记录总数
	Created     int               `json:"created"`      // 新建条数
	Updated     int               `json:"updated"`      // 更新条数
	Failed      int               `json:"total_errors"` // 失败条数
	TotalSynced int               `json:"total_synced"` // created+updated
	Errors      []SyncRecordError `json:"errors"`
}

// SyncStats 同步覆盖率统计
type SyncStats struct {
	TotalGames          int64   `json:"total_games"`
	GamesWithExternalID int64   `json:"games_with_external_id"`
	SyncPercentage      float64 `json:"sync_percentage"`
}

// SyncService 目录同步服务：从目录客户端拉取一页外部记录，
// 逐条与本地games表做幂等的创建或更新，并按条归因失败。
type SyncService struct {
	client interfaces.CatalogClient
	repo   interfaces.GameRepository
	logger *logrus.Logger
}

func NewSyncService(client interfaces.CatalogClient, repo interfaces.GameRepository, logger *logrus.Logger) *SyncService {
	return &SyncService{
		client: client,
		repo:   repo,
		logger: logger,
	}
}

// Sync 执行一次同步。页面拉取失败（凭证缺失/网络/上游错误）立即返回，
// 零落库；拉取成功后单条记录失败不阻塞整次运行，失败累积进结果。
func (s *SyncService) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	records, err := s.fetchPage(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		RunID:  uuid.NewString(),
		Mode:   opts.Mode,
		Errors: []SyncRecordError{},
	}

	// 按页内顺序逐条处理，保证失败归因与测试的确定性
	for _, rec := range records {
		result.Total++
		created, err := s.reconcile(ctx, rec)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, SyncRecordError{
				ExternalID: rec.ExternalID,
				Reason:     err.Error(),
			})
			s.logger.WithError(err).WithFields(logrus.Fields{
				"run_id":      result.RunID,
				"external_id": rec.ExternalID,
			}).Warn("单条记录同步失败，跳过")
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	result.TotalSynced = result.Created + result.Updated

	s.logger.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"mode":    opts.Mode,
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  result.Failed,
	}).Info("目录同步完成")
	return result, nil
}

// fetchPage 按模式向目录客户端拉取一页记录
func (s *SyncService) fetchPage(ctx context.Context, opts SyncOptions) ([]*model.GameRecord, error) {
	switch opts.Mode {
	case SyncModePopular:
		return s.client.PopularGames(ctx, opts.Limit)
	case SyncModeSearch:
		if opts.Query == "" {
			return nil, fmt.Errorf("search模式缺少query参数")
		}
		return s.client.SearchGames(ctx, opts.Query, opts.Limit)
	case SyncModeGenre:
		if opts.GenreID == 0 {
			return nil, fmt.Errorf("genre模式缺少genre_id参数")
		}
		return s.client.GamesByGenre(ctx, opts.GenreID, opts.Limit)
	case SyncModePlatform:
		if opts.PlatformID == 0 {
			return nil, fmt.Errorf("platform模式缺少platform_id参数")
		}
		return s.client.GamesByPlatform(ctx, opts.PlatformID, opts.Limit)
	default:
		return nil, fmt.Errorf("未支持的同步模式: %s", opts.Mode)
	}
}

// reconcile 单条记录的创建或更新，返回是否新建。
// 查找顺序：外部标识 → slug（防外部标识漂移的兜底，命中空external_id时回填）→ 新建。
// 同页两条记录落到同一slug时，后者经slug查到前者转为更新：
// 身份先写者胜，可变字段后写者胜。
func (s *SyncService) reconcile(ctx context.Context, rec *model.GameRecord) (bool, error) {
	if rec.Name == "" {
		return false, fmt.Errorf("记录缺少name字段")
	}
	slug := rec.Slug
	if slug == "" {
		slug = Slugify(rec.Name)
	}

	existing, err := s.repo.GetByExternalID(ctx, rec.ExternalID)
	if err != nil {
		return false, fmt.Errorf("按外部标识查询失败: %w", err)
	}
	if existing == nil {
		existing, err = s.repo.GetBySlug(ctx, slug)
		if err != nil {
			return false, fmt.Errorf("按slug查询失败: %w", err)
		}
	}

	if existing == nil {
		game := &model.Game{
			ExternalID:    &rec.ExternalID,
			Slug:          slug,
			Name:          rec.Name,
			Description:   rec.Summary,
			Genre:         strings.Join(rec.Genres, ", "),
			Platform:      strings.Join(rec.Platforms, ", "),
			Rating:        rec.Rating,
			RatingCount:   rec.RatingCount,
			ReleasedAt:    rec.ReleasedAt,
			CoverURL:      rec.CoverURL,
			IsActive:      true,  // 新同步的游戏默认上架
			IsMultiplayer: false, // 待独立分类流程判定
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := s.repo.Create(ctx, game); err != nil {
			return false, fmt.Errorf("创建游戏失败: %w", err)
		}
		return true, nil
	}

	// 回填：slug命中的老数据没有外部标识时补上，避免建出重复实体
	if existing.ExternalID == nil {
		externalID := rec.ExternalID
		existing.ExternalID = &externalID
	}
	// 只刷新可变字段，身份字段（本地ID、slug）永不变更
	existing.Rating = rec.Rating
	existing.RatingCount = rec.RatingCount
	existing.Genre = strings.Join(rec.Genres, ", ")
	existing.Platform = strings.Join(rec.Platforms, ", ")
	if rec.CoverURL != "" {
		existing.CoverURL = rec.CoverURL
	}
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return false, fmt.Errorf("更新游戏失败: %w", err)
	}
	return false, nil
}

// Stats 同步覆盖率：本地游戏总数、已关联外部标识的条数及占比
func (s *SyncService) Stats(ctx context.Context) (*SyncStats, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计游戏总数失败: %w", err)
	}
	synced, err := s.repo.CountWithExternalID(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计已同步数失败: %w", err)
	}
	stats := &SyncStats{
		TotalGames:          total,
		GamesWithExternalID: synced,
	}
	if total > 0 {
		stats.SyncPercentage = float64(synced) / float64(total) * 100
	}
	return stats, nil
}

// Slugify 从名称确定性地派生slug：小写、非字母数字折叠为单个连字符
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // 抑制前导连字符
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
