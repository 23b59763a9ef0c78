package render

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/page"
	"github.com/John-Robertt/blogrender/internal/provider"
	"github.com/John-Robertt/blogrender/internal/view"
)

// NewsTargets 是新闻页会改写的元素；每个字段都可以为 nil（页面上没有就跳过）。
type NewsTargets struct {
	Root        page.Element // #news
	List        page.Element // #news-list
	Title       page.Element
	Image       page.Element
	Description page.Element
	Author      page.Element
	Publisher   page.Element
	Published   page.Element
	Content     page.Element
	Keywords    page.Element
	Related     page.Element

	Head page.Head
}

func (t NewsTargets) empty() bool {
	return t.List == nil && t.Title == nil
}

// News 根据 ?news 选择详情或列表渲染。
func (e Env) News(ctx context.Context, pageURL *url.URL, t NewsTargets) domain.RenderReport {
	if id, ok := domain.IDFromQuery(pageURL, domain.NewsParam); ok {
		return e.NewsDetail(ctx, pageURL, id, t)
	}
	return e.NewsList(ctx, pageURL, t.List)
}

// NewsDetail 渲染单篇新闻。失败时只改写 #news-title。
func (e Env) NewsDetail(ctx context.Context, pageURL *url.URL, id domain.ID, t NewsTargets) domain.RenderReport {
	rep := e.begin(domain.KindNewsDetail, pageURL)
	rep.Source = sourceName(e.NewsSource)
	rep.ID = string(id)

	if t.empty() {
		e.log().Warn("news elements not found", zap.String("page_url", rep.PageURL))
		rep.Status = domain.StatusSkipped
		rep.ErrorCode = domain.ErrCodeMissingContainer
		return e.finish(rep)
	}

	a, apiURL, err := provider.FetchArticle(ctx, e.NewsSource, id, e.Client)
	if err != nil {
		msg := fillSourceError(&rep, err)
		e.log().Error("fetch news data", zap.String("api_url", apiURL), zap.Error(err))
		setText(t.Title, view.MsgNewsDetailFailed+" Error: "+msg)
		return e.finish(rep)
	}

	profile := e.NewsSource.Profile()
	view.ArticleHead(a, rep.PageURL).Apply(t.Head)
	if profile.JSONLD && t.Head != nil {
		if err := t.Head.ReplaceJSONLD(view.ArticleJSONLD(a, rep.PageURL)); err != nil {
			e.log().Warn("write json-ld", zap.Error(err))
		}
	}

	f := view.Article(a)
	setText(t.Title, f.Title)
	if t.Image != nil {
		t.Image.SetAttr("src", f.ImageSrc)
		t.Image.SetStyle("display", f.ImageDisplay)
	}
	setText(t.Description, f.Description)
	setText(t.Author, f.Author)
	setText(t.Publisher, f.Publisher)
	setText(t.Published, f.PublishedDate)
	if t.Content != nil {
		t.Content.SetHTML(f.ContentHTML)
	}
	setText(t.Keywords, f.Keywords)
	if t.Related != nil {
		t.Related.SetHTML(view.RelatedNews(a.Related, profile))
	}

	if t.Root != nil {
		t.Root.SetStyle("display", "block")
		if a.IsBot != nil && !*a.IsBot {
			t.Root.SetAttr("data-next-load", "true")
		}
	}
	if t.List != nil {
		t.List.SetStyle("display", "none")
	}

	rep.Status = domain.StatusRendered
	return e.finish(rep)
}

// NewsList 渲染新闻列表，按发布时间倒序。
func (e Env) NewsList(ctx context.Context, pageURL *url.URL, list page.Element) domain.RenderReport {
	rep := e.begin(domain.KindNewsList, pageURL)
	rep.Source = sourceName(e.NewsSource)

	if list == nil {
		e.log().Warn("news list container not found", zap.String("element_id", IDNewsList), zap.String("page_url", rep.PageURL))
		rep.Status = domain.StatusSkipped
		rep.ErrorCode = domain.ErrCodeMissingContainer
		return e.finish(rep)
	}

	items, apiURL, err := provider.FetchList(ctx, e.NewsSource, e.Client)
	if err != nil {
		msg := fillSourceError(&rep, err)
		e.log().Error("fetch news list", zap.String("api_url", apiURL), zap.Error(err))
		list.SetText(view.MsgNewsListFailed + " Error: " + msg)
		return e.finish(rep)
	}

	domain.SortByPublishedDesc(items)
	list.SetHTML(view.NewsCards(items, e.NewsSource.Profile()))
	rep.Items = len(items)
	rep.Status = domain.StatusRendered
	return e.finish(rep)
}

func setText(el page.Element, text string) {
	if el != nil {
		el.SetText(text)
	}
}
