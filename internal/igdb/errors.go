package igdb

import (
	"fmt"
	"strings"
)

// 错误分类：调用方依据错误种类决定是否重试。
// ConfigError 终态不可重试；TransportError 可带退避重试；
// UpstreamError 携带状态码由调用方裁决（429类可退避）；ParseError 属于契约破坏。

// ConfigError 凭证缺失，整次同步的致命错误
type ConfigError struct {
	Missing []string // 缺失的配置项名
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("IGDB凭证未配置，缺少: %s", strings.Join(e.Missing, ", "))
}

// TransportError 网络/超时类错误，可由调用方重试
type TransportError struct {
	Op  string // 出错的操作（token/query等）
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("IGDB请求失败(%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError 目录服务返回非2xx状态
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("IGDB返回错误状态%d: %s", e.StatusCode, e.Body)
}

// ParseError 响应体JSON解析失败（上游契约破坏，不可重试）
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("解析IGDB响应失败(%s): %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
