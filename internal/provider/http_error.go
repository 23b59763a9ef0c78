package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示上游返回了非 2xx 的 HTTP 状态码。
// 文案沿用页面上一直展示的 "HTTP error! status: <code>"。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d location=%s", e.StatusCode, loc)
}

// NotFoundError 表示请求成功但响应里没有目标记录（例如 Jikan 的 data 为空）。
type NotFoundError struct {
	What string // "Anime" / "News"
}

func (e *NotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.What) == "" {
		return "record not found"
	}
	return e.What + " not found"
}
