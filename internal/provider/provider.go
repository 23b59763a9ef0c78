package provider

import (
	"context"
	"net/http"
	"net/url"

	"github.com/John-Robertt/blogrender/internal/domain"
)

// Source 把“上游 API 差异”限制在 provider 包内部；渲染流程只依赖统一接口与稳定的 domain 记录。
//
// 约束：
// - Fetch* 只发一次请求：不做缓存、不做重试
// - Parse* 必须是纯函数：相同输入 => 相同输出
// - Fetch* 返回的 apiURL 仅用于日志与报告追溯
type Source interface {
	Name() string
}

// AnimeSource 提供单条 anime 记录。
type AnimeSource interface {
	Source
	FetchAnime(ctx context.Context, id domain.ID, c *http.Client) (body []byte, apiURL string, err error)
	ParseAnime(id domain.ID, body []byte) (domain.Anime, error)
}

// NewsSource 同时提供新闻列表与单篇详情。
type NewsSource interface {
	Source
	FetchArticle(ctx context.Context, id domain.ID, c *http.Client) (body []byte, apiURL string, err error)
	ParseArticle(id domain.ID, body []byte) (domain.Article, error)
	FetchList(ctx context.Context, c *http.Client) (body []byte, apiURL string, err error)
	ParseList(body []byte) ([]domain.ArticleSummary, error)
	Profile() NewsProfile
}

// NewsProfile 描述某个新闻站点在页面侧的差异（链接前缀、是否输出 JSON-LD）。
type NewsProfile struct {
	// LinkBase 是 ?news=<id> 前面的页面路径，例如 "" 或 "index.html"。
	LinkBase string
	// JSONLD 为 true 时详情页会写入 NewsArticle 结构化数据。
	JSONLD bool
}

// ArticleLink 返回站内详情页链接：<LinkBase>?news=<id>。
func (p NewsProfile) ArticleLink(id string) string {
	return p.LinkBase + "?" + domain.NewsParam + "=" + url.QueryEscape(id)
}
