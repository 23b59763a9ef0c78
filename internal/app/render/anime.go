package render

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/page"
	"github.com/John-Robertt/blogrender/internal/provider"
	"github.com/John-Robertt/blogrender/internal/view"
)

// AnimeTargets 是 anime 详情页会改写的元素。Container 为 nil 表示页面上没有容器。
type AnimeTargets struct {
	Container page.Element
	Head      page.Head
}

// Anime 渲染 anime 详情页。
//
// 顺序固定：容器缺失 → 路径守卫 → ?id 缺失 → 单次请求。前三种情况都不会访问上游。
func (e Env) Anime(ctx context.Context, pageURL *url.URL, t AnimeTargets) domain.RenderReport {
	rep := e.begin(domain.KindAnimeDetail, pageURL)
	rep.Source = sourceName(e.AnimeSource)

	if t.Container == nil {
		e.log().Warn("anime container not found", zap.String("element_id", IDAnimeContainer), zap.String("page_url", rep.PageURL))
		rep.Status = domain.StatusSkipped
		rep.ErrorCode = domain.ErrCodeMissingContainer
		return e.finish(rep)
	}

	if !strings.Contains(pageURL.Path, e.animePagePath()) {
		t.Container.SetHTML(view.Notice(view.MsgWrongPage))
		rep.Status = domain.StatusPrecondition
		rep.ErrorCode = domain.ErrCodeWrongPage
		rep.ErrorMsg = view.MsgWrongPage
		return e.finish(rep)
	}

	id, ok := domain.IDFromQuery(pageURL, domain.AnimeParam)
	if !ok {
		t.Container.SetHTML(view.Notice(view.MsgMissingAnimeID))
		rep.Status = domain.StatusPrecondition
		rep.ErrorCode = domain.ErrCodeMissingID
		rep.ErrorMsg = view.MsgMissingAnimeID
		return e.finish(rep)
	}
	rep.ID = string(id)

	a, apiURL, err := provider.FetchAnime(ctx, e.AnimeSource, id, e.Client)
	if err != nil {
		msg := fillSourceError(&rep, err)
		e.log().Error("fetch anime data", zap.String("api_url", apiURL), zap.Error(err))
		t.Container.SetHTML(view.AnimeError(msg))
		return e.finish(rep)
	}

	view.AnimeHead(a, rep.PageURL, e.SiteName).Apply(t.Head)
	t.Container.SetHTML(view.AnimeDetail(a))
	rep.Status = domain.StatusRendered
	return e.finish(rep)
}
