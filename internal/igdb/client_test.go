package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CatalogSync/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUpstream 模拟Twitch凭证端点与IGDB查询端点的测试桩
type stubUpstream struct {
	tokenCalls int64
	gameCalls  int64
	expiresIn  int64
	gamesBody  string // /games 的响应体
	gamesCode  int
}

func newStubUpstream() *stubUpstream {
	return &stubUpstream{
		expiresIn: 3600,
		gamesBody: `[]`,
		gamesCode: http.StatusOK,
	}
}

func (s *stubUpstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "test-id", r.Form.Get("client_id"))
		fmt.Fprintf(w, `{"access_token":"stub-token","expires_in":%d,"token_type":"bearer"}`, s.expiresIn)
	})
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.gameCalls, 1)
		assert.Equal(t, "test-id", r.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer stub-token", r.Header.Get("Authorization"))
		w.WriteHeader(s.gamesCode)
		_, _ = io.WriteString(w, s.gamesBody)
	})
	mux.HandleFunc("/genres", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":5,"name":"Shooter"},{"id":12,"name":"RPG"}]`)
	})
	return mux
}

func newTestClient(t *testing.T, stub *stubUpstream) *Client {
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)

	cfg := &config.IGDBConfig{
		BaseURL:      srv.URL,
		AuthURL:      srv.URL + "/oauth2/token",
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		Timeout:      5,
		CacheTTL:     5,
		RefCacheTTL:  60,
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(cfg, logger)
}

func TestIsConfigured(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := NewClient(&config.IGDBConfig{ClientID: "a", ClientSecret: "b"}, logger)
	assert.True(t, c.IsConfigured())

	c = NewClient(&config.IGDBConfig{ClientID: "a"}, logger)
	assert.False(t, c.IsConfigured())
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewClient(&config.IGDBConfig{Timeout: 5}, logger)

	err := c.Authenticate(context.Background())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	// 错误须点名缺失的配置项，运维据此修配置而不是重试
	assert.Contains(t, err.Error(), "IGDB_CLIENT_ID")
	assert.Contains(t, err.Error(), "IGDB_CLIENT_SECRET")

	// 凭证缺失时任何查询都不应发起网络调用
	_, err = c.SearchGames(context.Background(), "halo", 5)
	require.ErrorAs(t, err, &cfgErr)
}

func TestTokenReusedAcrossQueries(t *testing.T) {
	stub := newStubUpstream()
	stub.gamesBody = `[{"id":1,"name":"Halo 3","slug":"halo-3"}]`
	c := newTestClient(t, stub)
	ctx := context.Background()

	_, err := c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)
	_, err = c.SearchGames(ctx, "gears", 5)
	require.NoError(t, err)

	// 两次不同查询共用一个令牌
	assert.EqualValues(t, 1, atomic.LoadInt64(&stub.tokenCalls))
	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.gameCalls))
}

func TestTokenRenewedWithinSafetyMargin(t *testing.T) {
	stub := newStubUpstream()
	stub.expiresIn = 30 // 小于60s安全余量，下次查询必须续期
	c := newTestClient(t, stub)
	ctx := context.Background()

	_, err := c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)
	_, err = c.SearchGames(ctx, "gears", 5)
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.tokenCalls))
}

func TestQueryCacheHit(t *testing.T) {
	stub := newStubUpstream()
	stub.gamesBody = `[{"id":1,"name":"Halo 3","slug":"halo-3"}]`
	c := newTestClient(t, stub)
	ctx := context.Background()

	first, err := c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)
	second, err := c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)

	// TTL窗口内相同查询只打一次上游
	assert.EqualValues(t, 1, atomic.LoadInt64(&stub.gameCalls))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.CacheStats().Size)
}

func TestQueryCacheExpiry(t *testing.T) {
	stub := newStubUpstream()
	c := newTestClient(t, stub)
	c.cacheTTL = 20 * time.Millisecond
	ctx := context.Background()

	_, err := c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)
	_, err = c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)

	// TTL过后相同查询触发第二次上游调用
	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.gameCalls))
}

func TestClearCacheForcesRefetch(t *testing.T) {
	stub := newStubUpstream()
	c := newTestClient(t, stub)
	ctx := context.Background()

	_, err := c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)
	c.ClearCache()
	_, err = c.SearchGames(ctx, "halo", 5)
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.gameCalls))
}

func TestQueryUpstreamError(t *testing.T) {
	stub := newStubUpstream()
	stub.gamesCode = http.StatusTooManyRequests
	stub.gamesBody = `{"message":"rate limited"}`
	c := newTestClient(t, stub)

	_, err := c.PopularGames(context.Background(), 10)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	// 状态码必须透出，调用方依据它决定是否退避重试
	assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "rate limited")
}

func TestQueryParseErrorNotCached(t *testing.T) {
	stub := newStubUpstream()
	stub.gamesBody = `{"not":"an array"` // 截断的JSON
	c := newTestClient(t, stub)
	ctx := context.Background()

	_, err := c.PopularGames(ctx, 10)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	// 坏响应不得污染缓存
	assert.Equal(t, 0, c.CacheStats().Size)

	_, err = c.PopularGames(ctx, 10)
	require.ErrorAs(t, err, &parseErr)
	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.gameCalls))
}

func TestQueryTransportError(t *testing.T) {
	stub := newStubUpstream()
	srv := httptest.NewServer(stub.handler(t))
	cfg := &config.IGDBConfig{
		BaseURL:      srv.URL,
		AuthURL:      srv.URL + "/oauth2/token",
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		Timeout:      5,
		CacheTTL:     5,
		RefCacheTTL:  60,
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewClient(cfg, logger)
	srv.Close() // 上游不可达

	_, err := c.SearchGames(context.Background(), "halo", 5)
	var transErr *TransportError
	require.ErrorAs(t, err, &transErr)
}

func TestFetchGamesFieldMapping(t *testing.T) {
	released := time.Date(2007, 9, 25, 0, 0, 0, 0, time.UTC)
	game := map[string]interface{}{
		"id":                 999,
		"name":               "Halo 3",
		"slug":               "halo-3",
		"summary":            "Finish the fight.",
		"rating":             93.5,
		"rating_count":       1800,
		"total_rating_count": 2400,
		"first_release_date": released.Unix(),
		"cover":              map[string]interface{}{"id": 1, "url": "//images.igdb.com/igdb/image/upload/t_thumb/co1x7z.jpg"},
		"genres":             []map[string]interface{}{{"id": 5, "name": "Shooter"}},
		"platforms":          []map[string]interface{}{{"id": 11, "name": "Xbox 360"}, {"id": 6, "name": "PC"}},
	}
	body, err := json.Marshal([]interface{}{game})
	require.NoError(t, err)

	stub := newStubUpstream()
	stub.gamesBody = string(body)
	c := newTestClient(t, stub)

	records, err := c.SearchGames(context.Background(), "halo", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.EqualValues(t, 999, rec.ExternalID)
	assert.Equal(t, "Halo 3", rec.Name)
	assert.Equal(t, "halo-3", rec.Slug)
	assert.Equal(t, "Finish the fight.", rec.Summary)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 93.5, *rec.Rating, 0.001)
	assert.Equal(t, 1800, rec.RatingCount)
	assert.Equal(t, 2400, rec.PopScore)
	require.NotNil(t, rec.ReleasedAt)
	assert.True(t, released.Equal(*rec.ReleasedAt))
	assert.Equal(t, "https://images.igdb.com/igdb/image/upload/t_cover_big/co1x7z.jpg", rec.CoverURL)
	assert.Equal(t, []string{"Shooter"}, rec.Genres)
	assert.Equal(t, []string{"Xbox 360", "PC"}, rec.Platforms)
}

func TestGenres(t *testing.T) {
	stub := newStubUpstream()
	c := newTestClient(t, stub)

	items, err := c.Genres(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 5, items[0].ID)
	assert.Equal(t, "Shooter", items[0].Name)
}

func TestNormalizeCoverURL(t *testing.T) {
	assert.Equal(t, "", NormalizeCoverURL(""))
	assert.Equal(t,
		"https://images.igdb.com/igdb/image/upload/t_cover_big/abc.jpg",
		NormalizeCoverURL("//images.igdb.com/igdb/image/upload/t_thumb/abc.jpg"))
	// 已是https的地址只换规格
	assert.Equal(t,
		"https://images.igdb.com/igdb/image/upload/t_cover_big/abc.jpg",
		NormalizeCoverURL("https://images.igdb.com/igdb/image/upload/t_thumb/abc.jpg"))
}
