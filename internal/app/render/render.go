// Package render 编排一次页面渲染：守卫 → 标识 → 单次上游请求 → 解码 → 改写 DOM 与 head。
//
// 所有失败都在这里降级为页面上的一行错误文案，并记录到 RenderReport；
// 渲染函数不会向调用方返回 error。
package render

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/provider"
)

// DefaultAnimePagePath 是 anime 详情页的约定路径。
const DefaultAnimePagePath = "/p/anime.html"

// 页面上约定的元素 id。
const (
	IDAnimeContainer = "anime-container"
	IDNews           = "news"
	IDNewsList       = "news-list"
	IDNewsTitle      = "news-title"
	IDNewsImage      = "news-image"
	IDNewsDesc       = "news-description"
	IDNewsAuthor     = "news-author"
	IDNewsPublisher  = "news-publisher"
	IDNewsPublished  = "news-published_date"
	IDNewsContent    = "news-content"
	IDNewsKeywords   = "news-keywords"
	IDRelatedList    = "related-news-list"
)

// Env 是渲染所需的全部外部依赖，由调用方显式构造。
type Env struct {
	Client *http.Client

	AnimeSource provider.AnimeSource
	NewsSource  provider.NewsSource

	// AnimePagePath 为空时使用 DefaultAnimePagePath。
	AnimePagePath string
	// SiteName 出现在 head 文案中；为空时使用 domain.DefaultSiteName。
	SiteName string

	Log      *zap.Logger
	Observer Observer
}

func (e Env) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e Env) observer() Observer {
	if e.Observer == nil {
		return nopObserver{}
	}
	return e.Observer
}

func (e Env) animePagePath() string {
	if p := strings.TrimSpace(e.AnimePagePath); p != "" {
		return p
	}
	return DefaultAnimePagePath
}

func sourceName(s provider.Source) string {
	if s == nil {
		return ""
	}
	return s.Name()
}

func (e Env) begin(kind string, pageURL *url.URL) domain.RenderReport {
	rep := domain.RenderReport{
		PageURL:   pageURL.String(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
	e.observer().OnStart(kind, rep.PageURL)
	return rep
}

func (e Env) finish(rep domain.RenderReport) domain.RenderReport {
	rep.FinishedAt = time.Now()
	rep.Finalize()
	e.observer().OnDone(rep)
	return rep
}

// fillSourceError 把 provider 错误归类为 report 的 error_code，并返回展示给读者的原因。
func fillSourceError(rep *domain.RenderReport, err error) string {
	rep.Status = domain.StatusFailed

	var nf *provider.NotFoundError
	var pe *provider.Error
	switch {
	case errors.As(err, &nf):
		rep.ErrorCode = domain.ErrCodeNotFound
	case errors.As(err, &pe) && pe.Stage == provider.StageParse:
		rep.ErrorCode = domain.ErrCodeParseFailed
	default:
		rep.ErrorCode = domain.ErrCodeFetchFailed
	}
	msg := provider.Cause(err).Error()
	rep.ErrorMsg = msg
	return msg
}
