package repository

import (
	"context"
	"errors"

	"CatalogSync/internal/interfaces"
	"CatalogSync/internal/model"

	"gorm.io/gorm"
)

// GameFilter 游戏列表筛选
type GameFilter struct {
	Genre      string // 类型名（模糊匹配）
	Platform   string // 平台名（模糊匹配）
	Search     string // 名称模糊搜索
	ActiveOnly bool   // 仅上架游戏
}

// GameStore games表完整仓储接口：同步边界（interfaces.GameRepository）
// 之上再加查询接口需要的列表/详情操作
type GameStore interface {
	interfaces.GameRepository
	GetByID(ctx context.Context, id uint64) (*model.Game, error)
	List(ctx context.Context, filter GameFilter, page, pageSize int) ([]*model.Game, int64, error)
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameStore {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

// GetByExternalID 按外部标识查询，不存在返回(nil, nil)
func (r *gameRepository) GetByExternalID(ctx context.Context, externalID uint64) (*model.Game, error) {
	var game model.Game
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

// GetBySlug 按slug查询，不存在返回(nil, nil)
func (r *gameRepository) GetBySlug(ctx context.Context, slug string) (*model.Game, error) {
	var game model.Game
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) Update(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}

func (r *gameRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Game{}).Count(&total).Error
	return total, err
}

func (r *gameRepository) CountWithExternalID(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Game{}).Where("external_id IS NOT NULL").Count(&total).Error
	return total, err
}

// List 分页查询游戏列表（给前端查询接口用，同步路径不依赖）
func (r *gameRepository) List(ctx context.Context, filter GameFilter, page, pageSize int) ([]*model.Game, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.Game{})
	if filter.Genre != "" {
		db = db.Where("genre ILIKE ?", "%"+filter.Genre+"%")
	}
	if filter.Platform != "" {
		db = db.Where("platform ILIKE ?", "%"+filter.Platform+"%")
	}
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.Game
	if err := db.Order("rating_count DESC, name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// GetByID 按本地ID查询，不存在返回(nil, nil)
func (r *gameRepository) GetByID(ctx context.Context, id uint64) (*model.Game, error) {
	var game model.Game
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}
