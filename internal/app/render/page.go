package render

import (
	"context"
	"net/url"

	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/page"
)

// Page 检测文档里存在哪些容器，并依次运行对应的渲染器。
// 返回的 report 顺序为 anime 在前、news 在后；没有任何容器时返回空切片。
func (e Env) Page(ctx context.Context, doc *page.Document, pageURL *url.URL) []domain.RenderReport {
	var reps []domain.RenderReport
	head := doc.Head()

	if c, ok := doc.Element(IDAnimeContainer); ok {
		reps = append(reps, e.Anime(ctx, pageURL, AnimeTargets{Container: c, Head: head}))
	}

	nt := NewsTargetsFrom(doc)
	if !nt.empty() {
		reps = append(reps, e.News(ctx, pageURL, nt))
	}
	return reps
}

// NewsTargetsFrom 从文档中收集新闻页的全部元素。
func NewsTargetsFrom(doc *page.Document) NewsTargets {
	el := func(id string) page.Element {
		if x, ok := doc.Element(id); ok {
			return x
		}
		return nil
	}
	return NewsTargets{
		Root:        el(IDNews),
		List:        el(IDNewsList),
		Title:       el(IDNewsTitle),
		Image:       el(IDNewsImage),
		Description: el(IDNewsDesc),
		Author:      el(IDNewsAuthor),
		Publisher:   el(IDNewsPublisher),
		Published:   el(IDNewsPublished),
		Content:     el(IDNewsContent),
		Keywords:    el(IDNewsKeywords),
		Related:     el(IDRelatedList),
		Head:        doc.Head(),
	}
}
