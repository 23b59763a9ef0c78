// Package page 把博客页面模板解析为可操作的 DOM，并以“元素句柄”的形式交给渲染层。
//
// 渲染函数只接收句柄（Element / Head），不直接接触整个文档，
// 这样测试时可以只构造需要的元素。
package page

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element 是页面中一个可被改写内容的容器。
type Element interface {
	ID() string
	// SetHTML 用 HTML 片段替换子节点（调用方负责片段已转义/已清洗）。
	SetHTML(fragment string)
	// SetText 用纯文本替换子节点（输出时自动转义）。
	SetText(text string)
	SetAttr(name, value string)
	// SetStyle 改写 style 属性中的单个声明，例如 SetStyle("display", "none")。
	SetStyle(prop, value string)
}

// Head 是 <head> 的元信息句柄。
type Head interface {
	SetTitle(title string)
	UpsertMeta(tag MetaTag, content string)
	UpsertLink(rel, href string)
	// ReplaceJSONLD 删除已有的全部 ld+json 脚本，并追加一段新的。
	ReplaceJSONLD(v any) error
}

// MetaTag 用 name 或 property 定位一个 <meta>（两者只取其一）。
type MetaTag struct {
	Name     string
	Property string
}

func Name(n string) MetaTag     { return MetaTag{Name: n} }
func Property(p string) MetaTag { return MetaTag{Property: p} }

func (m MetaTag) attr() (key, val string) {
	if m.Name != "" {
		return "name", m.Name
	}
	return "property", m.Property
}

// Document 是一次请求独占的页面 DOM；不可跨 goroutine 共享。
type Document struct {
	doc *goquery.Document
}

// Parse 读取完整 HTML 页面。缺失的 <html>/<head>/<body> 会由 HTML5 解析器补齐。
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString 是 Parse 的字符串版本，主要给测试与 CLI 使用。
func ParseString(s string) (*Document, error) { return Parse(strings.NewReader(s)) }

// Element 按 id 查找元素；不存在时 ok=false。
func (d *Document) Element(id string) (Element, bool) {
	sel := d.doc.Find("#" + cssEscapeID(id)).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &element{id: id, sel: sel}, true
}

// Head 返回 <head> 句柄。
func (d *Document) Head() Head {
	return &head{doc: d.doc, sel: d.doc.Find("head").First()}
}

// HTML 输出整个文档（含 doctype）。
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Find 暴露只读查询，主要给测试断言使用。
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

type element struct {
	id  string
	sel *goquery.Selection
}

func (e *element) ID() string                  { return e.id }
func (e *element) SetHTML(fragment string)     { e.sel.SetHtml(fragment) }
func (e *element) SetText(text string)         { e.sel.SetText(text) }
func (e *element) SetAttr(name, value string)  { e.sel.SetAttr(name, value) }
func (e *element) SetStyle(prop, value string) { e.sel.SetAttr("style", setStyleDecl(e.sel.AttrOr("style", ""), prop, value)) }

type head struct {
	doc *goquery.Document
	sel *goquery.Selection
}

func (h *head) SetTitle(title string) {
	t := h.sel.Find("title").First()
	if t.Length() == 0 {
		h.sel.PrependNodes(newElement(atom.Title))
		t = h.sel.Find("title").First()
	}
	t.SetText(title)
}

func (h *head) UpsertMeta(tag MetaTag, content string) {
	key, val := tag.attr()
	if val == "" {
		return
	}
	m := h.doc.Find(fmt.Sprintf(`meta[%s=%q]`, key, val)).First()
	if m.Length() == 0 {
		h.insert(newElement(atom.Meta, html.Attribute{Key: key, Val: val}, html.Attribute{Key: "content", Val: content}))
		return
	}
	m.SetAttr("content", content)
}

func (h *head) UpsertLink(rel, href string) {
	l := h.doc.Find(fmt.Sprintf(`link[rel=%q]`, rel)).First()
	if l.Length() == 0 {
		h.insert(newElement(atom.Link, html.Attribute{Key: "rel", Val: rel}, html.Attribute{Key: "href", Val: href}))
		return
	}
	l.SetAttr("href", href)
}

func (h *head) ReplaceJSONLD(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json-ld: %w", err)
	}
	h.doc.Find(`script[type="application/ld+json"]`).Remove()

	// script 是 raw text 元素：子文本节点按原样输出。
	// json.Marshal 默认会转义 < > &（\u003c 等），不会提前闭合标签。
	n := newElement(atom.Script, html.Attribute{Key: "type", Val: "application/ld+json"})
	n.AppendChild(&html.Node{Type: html.TextNode, Data: string(b)})
	h.sel.AppendNodes(n)
	return nil
}

// insert 把新建的标签放在 <head> 内第一个 <style> 之前；没有 <style> 时追加到末尾。
func (h *head) insert(n *html.Node) {
	if st := h.sel.ChildrenFiltered("style").First(); st.Length() > 0 {
		st.BeforeNodes(n)
		return
	}
	h.sel.AppendNodes(n)
}

func newElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// setStyleDecl 替换（或追加）style 中名为 prop 的声明，保留其它声明的顺序。
func setStyleDecl(style, prop, value string) string {
	prop = strings.ToLower(strings.TrimSpace(prop))
	decls := make([]string, 0, 4)
	replaced := false
	for _, d := range strings.Split(style, ";") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		k, _, _ := strings.Cut(d, ":")
		if strings.ToLower(strings.TrimSpace(k)) == prop {
			if !replaced {
				decls = append(decls, prop+": "+value)
				replaced = true
			}
			continue
		}
		decls = append(decls, d)
	}
	if !replaced {
		decls = append(decls, prop+": "+value)
	}
	return strings.Join(decls, "; ") + ";"
}

// cssEscapeID 转义 id 选择器中的特殊字符（例如 news-published_date 无需转义，但 a.b 需要）。
func cssEscapeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
