package interfaces

import (
	"context"

	"CatalogSync/internal/model"
)

// CatalogClient 外部游戏目录的只读访问接口（带缓存与凭证管理）
type CatalogClient interface {
	// IsConfigured 凭证是否就绪（不发起网络调用），供调用方在操作前短路
	IsConfigured() bool
	// SearchGames 按名称搜索，排除DLC/扩展包/合集及版本变体
	SearchGames(ctx context.Context, term string, limit int) ([]*model.GameRecord, error)
	// PopularGames 按上游热度信号排序返回
	PopularGames(ctx context.Context, limit int) ([]*model.GameRecord, error)
	// GamesByGenre 按类型ID筛选
	GamesByGenre(ctx context.Context, genreID uint64, limit int) ([]*model.GameRecord, error)
	// GamesByPlatform 按平台ID筛选
	GamesByPlatform(ctx context.Context, platformID uint64, limit int) ([]*model.GameRecord, error)
	// Genres 静态参考数据（长TTL缓存）
	Genres(ctx context.Context) ([]model.RefItem, error)
	// Platforms 静态参考数据（长TTL缓存）
	Platforms(ctx context.Context) ([]model.RefItem, error)
}

// GameRepository 本地games表的单条操作接口。
// 约定：查不到返回(nil, nil)而非错误，同步端据此走创建分支。
type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	GetByExternalID(ctx context.Context, externalID uint64) (*model.Game, error)
	GetBySlug(ctx context.Context, slug string) (*model.Game, error)
	Update(ctx context.Context, game *model.Game) error
	// CountAll / CountWithExternalID 同步覆盖率统计
	CountAll(ctx context.Context) (int64, error)
	CountWithExternalID(ctx context.Context) (int64, error)
}
