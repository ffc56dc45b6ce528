package model

import (
	"time"

	"gorm.io/datatypes"
)

// Game 本地游戏实体（games表）。同步入库的唯一目标表。
// 外部标识external_id可空：目录接入之前的历史数据没有该字段。
// 去重依赖同步端的先查后建策略，不在可空列上建唯一约束。
type Game struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	ExternalID    *uint64        `gorm:"column:external_id;type:bigint;index;comment:IGDB原生ID，可空"`
	Slug          string         `gorm:"column:slug;type:varchar(128);uniqueIndex;not null;comment:唯一slug"`
	Name          string         `gorm:"column:name;type:varchar(256);not null;comment:游戏名称"`
	Description   string         `gorm:"column:description;type:text;comment:游戏简介"`
	Genre         string         `gorm:"column:genre;type:varchar(128);comment:类型，多个用逗号分隔"`
	Platform      string         `gorm:"column:platform;type:varchar(256);comment:平台，多个用逗号分隔"`
	Rating        *float64       `gorm:"column:rating;type:numeric(5,2);comment:评分0-100，可空"`
	RatingCount   int            `gorm:"column:rating_count;type:int;default:0;comment:评分人数"`
	ReleasedAt    *time.Time     `gorm:"column:released_at;type:timestamp;comment:发行时间，可空"`
	CoverURL      string         `gorm:"column:cover_url;type:varchar(512);comment:封面图URL"`
	Screenshots   datatypes.JSON `gorm:"column:screenshots;type:jsonb;comment:截图URL列表"`
	Videos        datatypes.JSON `gorm:"column:videos;type:jsonb;comment:视频URL列表"`
	IsActive      bool           `gorm:"column:is_active;type:boolean;default:true;comment:是否上架"`
	IsMultiplayer bool           `gorm:"column:is_multiplayer;type:boolean;default:false;comment:是否多人游戏，由独立分类流程维护"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (Game) TableName() string { return "games" }
