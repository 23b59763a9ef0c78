package view

import (
	"strings"

	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/page"
)

// AnimeError 是详情加载失败时写入容器的片段。
func AnimeError(cause string) string {
	return execute("anime_error", struct{ Title, Cause string }{MsgAnimeFailed, cause})
}

// AnimeDetail 生成详情片段：标题、简介段落、上映日期、类型。
func AnimeDetail(a domain.Anime) string {
	return execute("anime_detail", struct {
		Title    string
		Synopsis []string
		Released string
		Genres   string
	}{
		Title:    a.Title,
		Synopsis: Paragraphs(a.SynopsisOr()),
		Released: FormatAnimeDate(a.AiredFrom, domain.NotAvailable),
		Genres:   a.GenreList(),
	})
}

// AnimeHead 计算详情页的 head 元信息；canonical 固定为当前页面 URL。
// siteName 为空时使用 domain.DefaultSiteName。
func AnimeHead(a domain.Anime, pageURL, siteName string) HeadMeta {
	title := a.Title
	if siteName = strings.TrimSpace(siteName); siteName == "" {
		siteName = domain.DefaultSiteName
	}
	m := HeadMeta{
		Title: title + " | Anime Details",
		Metas: []MetaValue{
			{page.Property("og:url"), pageURL},
			{page.Property("og:title"), title},
			{page.Property("og:description"), a.SynopsisOr()},
			{page.Name("keywords"), title + ", anime"},
			{page.Name("twitter:card"), "summary_large_image"},
			{page.Property("twitter:title"), title},
			{page.Property("twitter:url"), pageURL},
			{page.Property("twitter:description"), title + " - " + siteName},
		},
		Canonical: pageURL,
	}
	if img := strings.TrimSpace(a.ImageURL); img != "" {
		m.Metas = append(m.Metas,
			MetaValue{page.Property("og:image"), img},
			MetaValue{page.Property("twitter:image"), img},
		)
	}
	return m
}
