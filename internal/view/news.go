package view

import (
	"net/url"
	"strings"

	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/page"
	"github.com/John-Robertt/blogrender/internal/provider"
)

type card struct {
	TopImage    string
	Link        string
	Title       string
	Description string
	Date        string
}

// NewsCards 按给定顺序生成列表卡片（排序由调用方负责）。
func NewsCards(items []domain.ArticleSummary, profile provider.NewsProfile) string {
	cards := make([]card, 0, len(items))
	for _, it := range items {
		cards = append(cards, card{
			TopImage:    it.TopImage,
			Link:        profile.ArticleLink(it.ID),
			Title:       it.Title,
			Description: it.DescriptionOr(),
			Date:        FormatNewsDate(it.PublishedAt, domain.DefaultSummaryDate),
		})
	}
	return execute("news_cards", cards)
}

type relatedLink struct {
	Href   string
	Target string
	Title  string
}

// RelatedNews 生成相关新闻列表：带 URL 的是外站链接（新窗口），否则走站内详情页。
func RelatedNews(items []domain.RelatedArticle, profile provider.NewsProfile) string {
	links := make([]relatedLink, 0, len(items))
	for _, it := range items {
		l := relatedLink{Title: it.Title}
		if u := strings.TrimSpace(it.URL); u != "" {
			l.Href = u + "?" + domain.NewsParam + "=" + url.QueryEscape(it.ID)
			l.Target = "_blank"
		} else {
			l.Href = profile.ArticleLink(it.ID)
			l.Target = "_self"
		}
		links = append(links, l)
	}
	return execute("related", links)
}

// ArticleFields 是详情页各元素的文本（或片段）内容，键为元素 id。
type ArticleFields struct {
	Title         string
	ImageSrc      string
	ImageDisplay  string
	Description   string
	Author        string
	Publisher     string
	PublishedDate string
	ContentHTML   string
	Keywords      string
}

// Article 计算详情页各元素的展示值（已套用默认文案）。
func Article(a domain.Article) ArticleFields {
	f := ArticleFields{
		Title:         a.TitleOr(domain.DefaultArticleTitle),
		ImageSrc:      a.TopImage,
		ImageDisplay:  "none",
		Description:   a.DescriptionOr(domain.DefaultArticleDescription),
		Author:        "Author: " + a.AuthorList(),
		Publisher:     "Publisher: " + a.PublisherTitle,
		PublishedDate: "Published Date: " + FormatNewsDate(a.PublishedAt, domain.DefaultDateMissing),
		ContentHTML:   domain.DefaultArticleContent,
		Keywords:      "Keywords: " + a.KeywordList(domain.NotAvailable),
	}
	if strings.TrimSpace(a.TopImage) != "" {
		f.ImageDisplay = "block"
	}
	if strings.TrimSpace(a.NewsHTML) != "" {
		if clean := strings.TrimSpace(SanitizeHTML(a.NewsHTML)); clean != "" {
			f.ContentHTML = clean
		}
	}
	return f
}

// ArticleHead 计算新闻详情页的 head 元信息。
func ArticleHead(a domain.Article, pageURL string) HeadMeta {
	title := a.TitleOr(domain.DefaultDocumentTitle)
	desc := a.DescriptionOr(domain.DefaultMetaDescription)
	img := a.TopImageOr(domain.DefaultMetaImage)
	return HeadMeta{
		Title: title,
		Metas: []MetaValue{
			{page.Name("description"), desc},
			{page.Property("og:title"), title},
			{page.Property("og:description"), desc},
			{page.Property("og:url"), pageURL},
			{page.Property("og:image"), img},
			{page.Name("twitter:card"), "summary_large_image"},
			{page.Name("twitter:title"), title},
			{page.Name("twitter:description"), desc},
			{page.Name("twitter:image"), img},
			{page.Name("keywords"), a.KeywordList(domain.DefaultMetaKeywords)},
		},
		Canonical: pageURL,
	}
}

// ArticleJSONLD 生成 schema.org NewsArticle。缺失的文本字段与发布时间直接省略，不输出空串。
func ArticleJSONLD(a domain.Article, pageURL string) map[string]any {
	author := map[string]any{"@type": "Person"}
	putText(author, "name", a.AuthorList())
	logo := map[string]any{"@type": "ImageObject"}
	putText(logo, "url", a.PublisherLogo)
	publisher := map[string]any{"@type": "Organization", "logo": logo}
	putText(publisher, "name", a.PublisherTitle)

	m := map[string]any{
		"@context":  "https://schema.org",
		"@type":     "NewsArticle",
		"author":    author,
		"publisher": publisher,
		"mainEntityOfPage": map[string]any{
			"@type": "WebPage",
			"@id":   pageURL,
		},
		"url": pageURL,
	}
	putText(m, "headline", a.Title)
	putText(m, "description", a.Description)
	putText(m, "keywords", a.KeywordList(""))
	putText(m, "articleBody", a.NewsText)
	if img := strings.TrimSpace(a.TopImage); img != "" {
		m["image"] = []string{img}
	}
	if !a.PublishedAt.IsZero() {
		ts := a.PublishedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
		m["datePublished"] = ts
		m["dateModified"] = ts
	}
	return m
}

func putText(m map[string]any, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		m[key] = v
	}
}
