package domain

import (
	"sort"
	"strings"
	"time"
)

// 页面正文中使用的默认文案。
const (
	DefaultArticleTitle       = "Title not available"
	DefaultArticleDescription = "Description not available."
	DefaultArticleContent     = "No content available"
	DefaultSummaryDescription = "No description available."
	DefaultDateMissing        = "Not available"
	DefaultSummaryDate        = "Date not available"
)

// head 元信息中使用的默认文案。
const (
	DefaultDocumentTitle   = "News Article"
	DefaultMetaDescription = "Read the latest news update."
	DefaultMetaImage       = "default-image.jpg"
	DefaultMetaKeywords    = "news, article"
)

// Article 是 findById 返回的单篇新闻。
type Article struct {
	ID             string
	Title          string
	Description    string
	TopImage       string
	Authors        []string
	PublisherTitle string
	PublisherLogo  string
	PublishedAt    time.Time
	NewsHTML       string
	NewsText       string
	Keywords       []string

	// IsBot 为 nil 表示上游没有给出该字段。
	IsBot *bool

	Related []RelatedArticle
}

// RelatedArticle 是详情页底部的相关新闻。URL 非空表示外站链接。
type RelatedArticle struct {
	ID    string
	Title string
	URL   string
}

// ArticleSummary 是列表接口中的一条摘要。
type ArticleSummary struct {
	ID          string
	Title       string
	Description string
	TopImage    string
	PublishedAt time.Time
}

func (a Article) TitleOr(fallback string) string       { return or(a.Title, fallback) }
func (a Article) DescriptionOr(fallback string) string { return or(a.Description, fallback) }
func (a Article) TopImageOr(fallback string) string    { return or(a.TopImage, fallback) }
func (a Article) AuthorList() string                   { return JoinOr(a.Authors, "") }

// KeywordList 以 ", " 连接关键词；为空返回 fallback。
func (a Article) KeywordList(fallback string) string { return JoinOr(a.Keywords, fallback) }

func (s ArticleSummary) DescriptionOr() string { return or(s.Description, DefaultSummaryDescription) }

// SortByPublishedDesc 按发布时间倒序稳定排序。
// 没有时间戳的条目一律排在有时间戳的条目之后，且彼此保持上游顺序。
func SortByPublishedDesc(items []ArticleSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
