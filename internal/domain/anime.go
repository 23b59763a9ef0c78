package domain

import (
	"strings"
	"time"
)

const (
	// NotAvailable 是列表/日期等字段缺失时统一显示的占位。
	NotAvailable = "N/A"

	DefaultSynopsis = "No synopsis available."

	// DefaultSiteName 是 site.name 未配置时 head 文案里的站点名。
	DefaultSiteName = "Blogspot"
)

// Anime 是从 Jikan 详情接口解析出的结构化记录。
//
// 所有字段都可能缺失：零值即“缺失”，展示时通过 *Or 方法取默认值，
// 不在渲染层散落判空逻辑。
type Anime struct {
	MalID     int
	Title     string
	Synopsis  string
	AiredFrom time.Time
	Genres    []string
	ImageURL  string
	URL       string
}

// SynopsisOr 返回简介；缺失时回退 DefaultSynopsis。
func (a Anime) SynopsisOr() string {
	if strings.TrimSpace(a.Synopsis) == "" {
		return DefaultSynopsis
	}
	return a.Synopsis
}

// GenreList 以 ", " 连接类型名；为空返回 N/A。
func (a Anime) GenreList() string {
	return JoinOr(a.Genres, NotAvailable)
}

// JoinOr 以 ", " 连接非空项；全部为空时返回 fallback。
func JoinOr(items []string, fallback string) string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return fallback
	}
	return strings.Join(out, ", ")
}
