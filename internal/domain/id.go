package domain

import (
	"net/url"
	"strings"
)

// ID 是页面 query string 中选中单条记录的标识（anime 用 ?id=，news 用 ?news=）。
//
// 约束：只区分“有/无”，不做格式校验；空串即缺失。
type ID string

const (
	// AnimeParam / NewsParam 是两类页面约定的 query 参数名。
	AnimeParam = "id"
	NewsParam  = "news"
)

// ParseID 去掉首尾空白后返回标识；ok=false 表示缺失。
func ParseID(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return ID(s), true
}

// IDFromQuery 从 URL 的 query string 读取 param 对应的标识（多值时取第一个，与浏览器 URLSearchParams.get 一致）。
func IDFromQuery(u *url.URL, param string) (ID, bool) {
	if u == nil {
		return "", false
	}
	return ParseID(u.Query().Get(param))
}

// PathSegment 返回可直接拼进 URL path 的转义形式。
func (id ID) PathSegment() string { return url.PathEscape(string(id)) }
