package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	providerx "github.com/John-Robertt/blogrender/internal/provider"
)

func TestParseArticle_ArrayFields(t *testing.T) {
	body := []byte(`{
	  "id": 42,
	  "title": "T",
	  "authors": ["A", "B"],
	  "keywords": ["k1", "k2"],
	  "published_date": 1700000000000,
	  "isBot": false,
	  "relatedNews": [{"id": 7, "title": "R"}, {"id": "", "title": "skip"}]
	}`)

	a, err := Source{}.ParseArticle("42", body)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if a.ID != "42" || a.AuthorList() != "A, B" || a.KeywordList("") != "k1, k2" {
		t.Fatalf("字段不一致：%+v", a)
	}
	if !a.PublishedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("published_date 不一致：%v", a.PublishedAt)
	}
	if a.IsBot == nil || *a.IsBot {
		t.Fatalf("isBot 应为 false：%v", a.IsBot)
	}
	if len(a.Related) != 1 || a.Related[0].ID != "7" {
		t.Fatalf("related 应跳过空 id：%+v", a.Related)
	}
}

func TestParseArticle_StringFields(t *testing.T) {
	// 公网版本：authors/keywords 是字符串。
	a, err := Source{}.ParseArticle("x", []byte(`{"authors":"Alice","keywords":"a, b","published_date":"1700000000000"}`))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if a.AuthorList() != "Alice" || a.KeywordList("") != "a, b" {
		t.Fatalf("字符串字段不一致：%+v", a)
	}
	if a.PublishedAt.IsZero() {
		t.Fatalf("数字字符串时间戳应被解析")
	}
	if a.ID != "x" {
		t.Fatalf("缺失 id 时应回退为请求 id：%q", a.ID)
	}
	if a.IsBot != nil {
		t.Fatalf("缺失 isBot 应为 nil")
	}
}

func TestParseArticle_NullIsNotFound(t *testing.T) {
	_, err := Source{}.ParseArticle("1", []byte("null"))
	var nf *providerx.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("期望 NotFoundError，实际：%v", err)
	}
}

func TestParseList(t *testing.T) {
	items, err := Source{}.ParseList([]byte(`[
	  {"id": 1, "title": "a", "published_date": 1000},
	  {"id": "2", "title": "b", "published_date": null},
	  {"id": 3, "title": "c", "published_date": "2024-01-02T03:04:05Z"}
	]`))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(items) != 3 || items[1].ID != "2" {
		t.Fatalf("列表不一致：%+v", items)
	}
	if !items[1].PublishedAt.IsZero() {
		t.Fatalf("null 时间戳应为零值")
	}
	if !items[2].PublishedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("RFC3339 时间不一致：%v", items[2].PublishedAt)
	}

	if _, err := (Source{}).ParseList([]byte(`{"error":"x"}`)); err == nil {
		t.Fatalf("非数组应返回错误")
	}
}

func TestFetch_RequestsCarryHeadersAndBody(t *testing.T) {
	type seen struct {
		method, path, ctype, bypass string
		body                        map[string]string
	}
	var got []seen

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, path: r.URL.Path, ctype: r.Header.Get("Content-Type"), bypass: r.Header.Get("bypass-tunnel-reminder")}
		if r.Method == http.MethodPost {
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, &s.body)
		}
		got = append(got, s)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	src := New("tunnel", srv.URL+"/", map[string]string{"bypass-tunnel-reminder": "1"}, providerx.NewsProfile{LinkBase: "index.html"})
	if src.Name() != "tunnel" || src.Profile().ArticleLink("9") != "index.html?news=9" {
		t.Fatalf("name/profile 不一致：%q %+v", src.Name(), src.Profile())
	}

	if _, apiURL, err := src.FetchList(context.Background(), srv.Client()); err != nil || apiURL != srv.URL+"/news/" {
		t.Fatalf("FetchList 失败：%v apiURL=%q", err, apiURL)
	}
	if _, _, err := src.FetchArticle(context.Background(), "abc", srv.Client()); err != nil {
		t.Fatalf("FetchArticle 失败：%v", err)
	}

	if len(got) != 2 {
		t.Fatalf("期望 2 次请求，实际 %d", len(got))
	}
	if got[0].method != http.MethodGet || got[0].path != "/news/" || got[0].bypass != "1" {
		t.Fatalf("列表请求不一致：%+v", got[0])
	}
	if got[1].method != http.MethodPost || got[1].path != "/news/findById" || got[1].ctype != "application/json" || got[1].body["id"] != "abc" {
		t.Fatalf("详情请求不一致：%+v", got[1])
	}
}

func TestFetchList_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := New("begono", srv.URL, nil, providerx.NewsProfile{}).FetchList(context.Background(), srv.Client())
	var hs *providerx.HTTPStatusError
	if !errors.As(err, &hs) || hs.StatusCode != http.StatusBadGateway {
		t.Fatalf("期望 HTTPStatusError(502)，实际：%v", err)
	}
}

func TestLookupPreset(t *testing.T) {
	p, ok := LookupPreset(" Tunnel ")
	if !ok {
		t.Fatalf("tunnel 应为内置站点")
	}
	if p.Headers["bypass-tunnel-reminder"] != "1" || p.Profile.LinkBase != "index.html" || p.Profile.JSONLD {
		t.Fatalf("tunnel preset 不符合预期：%+v", p)
	}
	p.Headers["x"] = "y"
	again, _ := LookupPreset("tunnel")
	if _, leaked := again.Headers["x"]; leaked {
		t.Fatalf("LookupPreset 应返回 headers 副本")
	}

	b, ok := LookupPreset(DefaultPreset)
	if !ok || !b.Profile.JSONLD || b.Source().Name() != "begono" {
		t.Fatalf("begono preset 不符合预期：%+v", b)
	}
	if _, ok := LookupPreset("nope"); ok {
		t.Fatalf("未知站点应返回 ok=false")
	}
	if got := PresetNames(); len(got) != 2 || got[0] != "begono" || got[1] != "tunnel" {
		t.Fatalf("PresetNames=%v", got)
	}
}
