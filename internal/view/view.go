// Package view 把 domain 记录格式化为 HTML 片段与 head 元信息。
//
// 这里的函数都是纯函数：不读网络、不碰 DOM，只产出字符串与结构，
// 由 app/render 决定写到哪个元素上。
package view

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/John-Robertt/blogrender/internal/page"
)

// 页面提示文案。
const (
	MsgWrongPage        = "Anime information can only be viewed on the designated anime page."
	MsgMissingAnimeID   = "No anime ID provided in URL. Add ?id=<anime_id> to the URL."
	MsgAnimeFailed      = "Failed to load anime data."
	MsgNewsDetailFailed = "Error loading news data."
	MsgNewsListFailed   = "Error loading news list."
)

const (
	// AnimeDateLayout 对应浏览器 en-US 下 toLocaleDateString 的形态。
	AnimeDateLayout = "1/2/2006"
	// NewsDateLayout 对应 Date.prototype.toUTCString 的形态。
	NewsDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
)

var tmpl = template.Must(template.New("view").Parse(`
{{- define "notice"}}<p>{{.}}</p>{{end -}}
{{- define "anime_error"}}<div class="error"><p>{{.Title}}</p><p>Error: {{.Cause}}</p></div>{{end -}}
{{- define "anime_detail"}}<h1>{{.Title}}</h1>{{range .Synopsis}}<p>{{.}}</p>{{end}}<p>Release Date: {{.Released}}</p><p>Genres: {{.Genres}}</p>{{end -}}
{{- define "news_cards"}}{{range .}}<div class="news-item"><img src="{{.TopImage}}" alt="News Image"><div class="news-info"><h2 class="title"><a href="{{.Link}}">{{.Title}}</a></h2><div class="description">{{.Description}}</div><div class="published-date">{{.Date}}</div></div></div>{{end}}{{end -}}
{{- define "related"}}{{range .}}<div class="news-item"><h3 class="title"><a href="{{.Href}}" target="{{.Target}}">{{.Title}}</a></h3></div>{{end}}{{end -}}
`))

func execute(name string, data any) string {
	var b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		// 模板在包初始化时已校验，这里只可能是数据类型错误（编程错误）。
		panic("view: execute " + name + ": " + err.Error())
	}
	return b.String()
}

// Notice 返回一段 <p> 提示，文本会被转义。
func Notice(text string) string { return execute("notice", text) }

// FormatAnimeDate 缺失时返回 fallback。
func FormatAnimeDate(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.UTC().Format(AnimeDateLayout)
}

// FormatNewsDate 缺失时返回 fallback。
func FormatNewsDate(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.UTC().Format(NewsDateLayout)
}

// HeadMeta 是一次渲染需要写入 <head> 的全部元信息。
type HeadMeta struct {
	Title     string
	Metas     []MetaValue
	Canonical string
}

type MetaValue struct {
	Tag     page.MetaTag
	Content string
}

// Apply 按顺序 upsert 到 head。
func (m HeadMeta) Apply(h page.Head) {
	if h == nil {
		return
	}
	h.SetTitle(m.Title)
	for _, mv := range m.Metas {
		h.UpsertMeta(mv.Tag, mv.Content)
	}
	if strings.TrimSpace(m.Canonical) != "" {
		h.UpsertLink("canonical", m.Canonical)
	}
}

// Content 返回 tag 对应的 content（测试与日志使用）。
func (m HeadMeta) Content(tag page.MetaTag) (string, bool) {
	for _, mv := range m.Metas {
		if mv.Tag == tag {
			return mv.Content, true
		}
	}
	return "", false
}
