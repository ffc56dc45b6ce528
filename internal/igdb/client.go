package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"CatalogSync/internal/config"
	"CatalogSync/internal/interfaces"
	"CatalogSync/internal/model"
	"CatalogSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// tokenSafetyMargin 令牌临期安全余量：剩余有效期不足该值时触发续期，
// 避免把一个即将过期的令牌交给调用方
const tokenSafetyMargin = 60 * time.Second

// upstreamErrBodyLimit UpstreamError携带的响应体截断长度
const upstreamErrBodyLimit = 512

// Client IGDB目录客户端：凭证管理 + 查询构造 + 响应缓存。
// 进程内构造一次、按引用传给所有调用方；令牌与缓存是其内部共享状态。
type Client struct {
	cfg        *config.IGDBConfig
	httpClient *http.Client
	logger     *logrus.Logger
	cache      *responseCache
	cacheTTL   time.Duration // 游戏查询缓存TTL
	refTTL     time.Duration // genre/platform参考数据缓存TTL

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg *config.IGDBConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
		cache:      newResponseCache(),
		cacheTTL:   time.Duration(cfg.CacheTTL) * time.Minute,
		refTTL:     time.Duration(cfg.RefCacheTTL) * time.Minute,
	}
}

var _ interfaces.CatalogClient = (*Client)(nil)

// IsConfigured 凭证是否就绪（不发起网络调用）
func (c *Client) IsConfigured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// Authenticate 获取或续期访问令牌（Twitch client_credentials交换）。
// 凭证缺失返回*ConfigError（终态，调用方不应重试）；网络失败返回*TransportError。
func (c *Client) Authenticate(ctx context.Context) error {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	return c.renewTokenLocked(ctx)
}

// ensureToken 返回一个剩余有效期大于安全余量的令牌，必要时先续期
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" && time.Until(c.tokenExpiry) > tokenSafetyMargin {
		return c.token, nil
	}
	if err := c.renewTokenLocked(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

// renewTokenLocked 实际执行凭证交换，调用方须持有tokenMu
func (c *Client) renewTokenLocked(ctx context.Context) error {
	if cfgErr := c.configError(); cfgErr != nil {
		return cfgErr
	}

	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &TransportError{Op: "token", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "token", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Errorf("关闭凭证响应体失败: %v", err)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "token", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: truncate(string(payload), upstreamErrBodyLimit)}
	}

	var token model.IGDBTokenResponse
	if err := json.Unmarshal(payload, &token); err != nil {
		return &ParseError{Endpoint: "token", Err: err}
	}
	if token.AccessToken == "" {
		return &ParseError{Endpoint: "token", Err: fmt.Errorf("响应缺少access_token")}
	}

	c.token = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	c.logger.WithField("expires_in", token.ExpiresIn).Info("IGDB访问令牌已更新")
	return nil
}

// configError 凭证缺失时构造携带缺失项名称的错误
func (c *Client) configError() *ConfigError {
	var missing []string
	if c.cfg.ClientID == "" {
		missing = append(missing, "IGDB_CLIENT_ID")
	}
	if c.cfg.ClientSecret == "" {
		missing = append(missing, "IGDB_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// Query 对endpoint发起结构化查询并解码到out。
// 缓存key=(endpoint, 归一化查询体)：命中且未过期则零网络调用；
// 未命中时确保令牌有效后请求，成功先入缓存再返回。本层不做重试。
func (c *Client) Query(ctx context.Context, endpoint, body string, out interface{}) error {
	return c.query(ctx, endpoint, body, out, c.cacheTTL)
}

func (c *Client) query(ctx context.Context, endpoint, body string, out interface{}, ttl time.Duration) error {
	cacheKey := endpoint + "|" + body

	if payload, ok := c.cache.Get(cacheKey); ok {
		c.logger.WithField("endpoint", endpoint).Debug("IGDB缓存命中")
		if err := json.Unmarshal(payload, out); err != nil {
			// 缓存内容入库前已验证过，走到这里说明out类型不匹配
			return &ParseError{Endpoint: endpoint, Err: err}
		}
		return nil
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body))
	if err != nil {
		return &TransportError{Op: endpoint, Err: err}
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 超时也归入传输错误，由调用方决定退避重试
		return &TransportError{Op: endpoint, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Errorf("关闭IGDB响应体失败: %v", err)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: truncate(string(payload), upstreamErrBodyLimit)}
	}

	// 先验证可解析再入缓存，坏响应不得污染缓存
	if err := json.Unmarshal(payload, out); err != nil {
		return &ParseError{Endpoint: endpoint, Err: err}
	}
	c.cache.Set(cacheKey, payload, ttl)
	return nil
}

// ========== 游戏查询便捷方法 ==========

// SearchGames 按名称搜索，排除非主体游戏（DLC/扩展包/合集）与版本变体
func (c *Client) SearchGames(ctx context.Context, term string, limit int) ([]*model.GameRecord, error) {
	q := NewQuery().
		Fields(gameFields).
		Search(term).
		Where(baseGameFilter).
		Limit(clampLimit(limit))
	return c.fetchGames(ctx, q)
}

// PopularGames 按上游聚合热度信号（total_rating_count）降序返回。
// 排序完全由上游计算，本地只做截断。
func (c *Client) PopularGames(ctx context.Context, limit int) ([]*model.GameRecord, error) {
	q := NewQuery().
		Fields(gameFields).
		Where(baseGameFilter).
		Where("total_rating_count > 0").
		Sort("total_rating_count desc").
		Limit(clampLimit(limit))
	return c.fetchGames(ctx, q)
}

// GamesByGenre 按类型ID筛选
func (c *Client) GamesByGenre(ctx context.Context, genreID uint64, limit int) ([]*model.GameRecord, error) {
	q := NewQuery().
		Fields(gameFields).
		Where(baseGameFilter).
		Where(fmt.Sprintf("genres = (%d)", genreID)).
		Sort("total_rating_count desc").
		Limit(clampLimit(limit))
	return c.fetchGames(ctx, q)
}

// GamesByPlatform 按平台ID筛选
func (c *Client) GamesByPlatform(ctx context.Context, platformID uint64, limit int) ([]*model.GameRecord, error) {
	q := NewQuery().
		Fields(gameFields).
		Where(baseGameFilter).
		Where(fmt.Sprintf("platforms = (%d)", platformID)).
		Sort("total_rating_count desc").
		Limit(clampLimit(limit))
	return c.fetchGames(ctx, q)
}

func (c *Client) fetchGames(ctx context.Context, q *Query) ([]*model.GameRecord, error) {
	var games []model.IGDBGame
	if err := c.Query(ctx, "games", q.Build(), &games); err != nil {
		return nil, err
	}
	records := make([]*model.GameRecord, 0, len(games))
	for i := range games {
		rec := games[i].ToRecord()
		rec.CoverURL = NormalizeCoverURL(rec.CoverURL)
		records = append(records, rec)
	}
	return records, nil
}

// ========== 参考数据 ==========

// Genres 类型列表（长TTL缓存）
func (c *Client) Genres(ctx context.Context) ([]model.RefItem, error) {
	var items []model.RefItem
	body := NewQuery().Fields("id,name").Sort("name asc").Limit(100).Build()
	if err := c.query(ctx, "genres", body, &items, c.refTTL); err != nil {
		return nil, err
	}
	return items, nil
}

// Platforms 平台列表（长TTL缓存）
func (c *Client) Platforms(ctx context.Context) ([]model.RefItem, error) {
	var items []model.RefItem
	body := NewQuery().Fields("id,name").Sort("name asc").Limit(500).Build()
	if err := c.query(ctx, "platforms", body, &items, c.refTTL); err != nil {
		return nil, err
	}
	return items, nil
}

// ========== 缓存管理 ==========

// CacheStats 缓存自省
func (c *Client) CacheStats() CacheStats {
	return c.cache.Stats()
}

// ClearCache 无条件清空缓存（幂等）
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.logger.Info("IGDB响应缓存已清空")
}

// ========== 工具函数 ==========

// NormalizeCoverURL IGDB返回协议相对的缩略图地址，
// 归一化为https并换用大图规格（t_thumb → t_cover_big）
func NormalizeCoverURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	return strings.Replace(raw, "t_thumb", "t_cover_big", 1)
}

// clampLimit 限制单页拉取条数，0或负数回退默认值
func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
