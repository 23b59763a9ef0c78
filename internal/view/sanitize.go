package view

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicy = newContentPolicy()
	blankLine     = regexp.MustCompile(`\n[ \t\r]*\n`)
)

// newContentPolicy 用于上游返回的新闻正文 HTML：允许常见排版标签，外链统一 nofollow。
func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "div")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// SanitizeHTML 清洗不可信的 HTML 片段。
func SanitizeHTML(s string) string {
	return contentPolicy.Sanitize(s)
}

// Paragraphs 按空行把纯文本切成段落；文本原样保留，转义交给模板。
func Paragraphs(text string) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}
	var out []string
	for _, p := range blankLine.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
