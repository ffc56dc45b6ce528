package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"CatalogSync/internal/model"
	"CatalogSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// GameService 面向前端的游戏查询服务
type GameService struct {
	repo   repository.GameStore
	logger *logrus.Logger
}

func NewGameService(repo repository.GameStore, logger *logrus.Logger) *GameService {
	return &GameService{
		repo:   repo,
		logger: logger,
	}
}

// GameSummary 列表页单个游戏信息
type GameSummary struct {
	ID          uint64   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Genre       string   `json:"genre"`
	Platform    string   `json:"platform"`
	Rating      *float64 `json:"rating"`
	RatingCount int      `json:"rating_count"`
	CoverURL    string   `json:"cover_url"`
	ReleasedAt  int64    `json:"released_at,omitempty"` // 发行时间戳（毫秒），未知为0
	IsActive    bool     `json:"is_active"`
}

// GameListResult 列表返回
type GameListResult struct {
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
	Items    []GameSummary `json:"items"`
}

// GameDetail 详情页返回（含媒体资源与同步溯源信息）
type GameDetail struct {
	GameSummary
	ExternalID    *uint64  `json:"external_id"`
	Description   string   `json:"description"`
	Screenshots   []string `json:"screenshots"`
	Videos        []string `json:"videos"`
	IsMultiplayer bool     `json:"is_multiplayer"`
	UpdatedAt     int64    `json:"updated_at"`
}

// ListGames 按条件分页返回游戏列表
func (s *GameService) ListGames(ctx context.Context, filter repository.GameFilter, page, pageSize int) (*GameListResult, error) {
	games, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	result := &GameListResult{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    make([]GameSummary, 0, len(games)),
	}
	for _, g := range games {
		result.Items = append(result.Items, toSummary(g))
	}
	return result, nil
}

// GetGameDetail 获取单个游戏详情。idOrSlug为数字时当作本地ID，否则当作slug查询。
func (s *GameService) GetGameDetail(ctx context.Context, idOrSlug string) (*GameDetail, error) {
	if idOrSlug == "" {
		return nil, fmt.Errorf("id or slug is required")
	}

	var game *model.Game
	var err error
	if n, parseErr := strconv.ParseUint(idOrSlug, 10, 64); parseErr == nil {
		game, err = s.repo.GetByID(ctx, n)
	} else {
		game, err = s.repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("游戏不存在: %s", idOrSlug)
	}

	detail := &GameDetail{
		GameSummary:   toSummary(game),
		ExternalID:    game.ExternalID,
		Description:   game.Description,
		Screenshots:   decodeURLList(game.Screenshots),
		Videos:        decodeURLList(game.Videos),
		IsMultiplayer: game.IsMultiplayer,
		UpdatedAt:     game.UpdatedAt.UnixMilli(),
	}
	return detail, nil
}

func toSummary(g *model.Game) GameSummary {
	summary := GameSummary{
		ID:          g.ID,
		Slug:        g.Slug,
		Name:        g.Name,
		Genre:       g.Genre,
		Platform:    g.Platform,
		Rating:      g.Rating,
		RatingCount: g.RatingCount,
		CoverURL:    g.CoverURL,
		IsActive:    g.IsActive,
	}
	if g.ReleasedAt != nil {
		summary.ReleasedAt = g.ReleasedAt.UnixMilli()
	}
	return summary
}

// decodeURLList JSONB列转字符串列表，坏数据返回空列表兜底
func decodeURLList(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return []string{}
	}
	return urls
}
