package model

import "time"

// ========== IGDB 原始响应模型（wire层） ==========

// IGDBTokenResponse Twitch client_credentials 凭证交换响应
type IGDBTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // 有效期（秒）
	TokenType   string `json:"token_type"`
}

// IGDBNamed IGDB引用对象（genre/platform等），字段缺省即"未设置"
type IGDBNamed struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// IGDBCover 封面图引用（url为协议相对地址，如 //images.igdb.com/...t_thumb...）
type IGDBCover struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
}

// IGDBGame games接口返回的单条记录
type IGDBGame struct {
	ID               uint64      `json:"id"`
	Name             string      `json:"name"`
	Slug             string      `json:"slug"`
	Summary          string      `json:"summary"`
	Rating           *float64    `json:"rating"`             // 0-100，可空
	RatingCount      int         `json:"rating_count"`       // 评分人数
	TotalRatingCount int         `json:"total_rating_count"` // 上游聚合热度信号
	FirstReleaseDate *int64      `json:"first_release_date"` // Unix秒，可空
	Cover            *IGDBCover  `json:"cover"`
	Genres           []IGDBNamed `json:"genres"`
	Platforms        []IGDBNamed `json:"platforms"`
}

// RefItem 参考数据条目（genre/platform列表）
type RefItem struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ========== 同步层通用模型 ==========

// GameRecord 从目录服务拉取的只读游戏记录，仅在一次同步内瞬时存在。
// 由igdb包从IGDBGame转换而来，同步服务不感知wire层细节。
type GameRecord struct {
	ExternalID  uint64
	Name        string
	Slug        string
	Summary     string
	Rating      *float64
	RatingCount int
	PopScore    int // 上游热度信号（total_rating_count），仅用于排序，不落库
	ReleasedAt  *time.Time
	CoverURL    string
	Genres      []string
	Platforms   []string
}

// ToRecord 转换为同步层通用记录（封面URL归一化由调用方负责）
func (g *IGDBGame) ToRecord() *GameRecord {
	rec := &GameRecord{
		ExternalID:  g.ID,
		Name:        g.Name,
		Slug:        g.Slug,
		Summary:     g.Summary,
		Rating:      g.Rating,
		RatingCount: g.RatingCount,
		PopScore:    g.TotalRatingCount,
	}
	if g.FirstReleaseDate != nil {
		t := time.Unix(*g.FirstReleaseDate, 0).UTC()
		rec.ReleasedAt = &t
	}
	if g.Cover != nil {
		rec.CoverURL = g.Cover.URL
	}
	for _, ge := range g.Genres {
		if ge.Name != "" {
			rec.Genres = append(rec.Genres, ge.Name)
		}
	}
	for _, p := range g.Platforms {
		if p.Name != "" {
			rec.Platforms = append(rec.Platforms, p.Name)
		}
	}
	return rec
}
