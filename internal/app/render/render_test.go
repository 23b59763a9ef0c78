package render

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/page"
	"github.com/John-Robertt/blogrender/internal/provider"
	"github.com/John-Robertt/blogrender/internal/provider/jikan"
	"github.com/John-Robertt/blogrender/internal/provider/newsapi"
)

const animePage = `<!doctype html><html><head><title>Anime</title><style>body{}</style></head>
<body><div id="anime-container">loading</div></body></html>`

const newsPage = `<!doctype html><html><head><title>News</title></head><body>
<div id="news" style="display:none">
  <h1 id="news-title"></h1><img id="news-image"><p id="news-description"></p>
  <p id="news-author"></p><p id="news-publisher"></p><p id="news-published_date"></p>
  <div id="news-content"></div><p id="news-keywords"></p><div id="related-news-list"></div>
</div>
<div id="news-list"></div>
</body></html>`

const jikanBody = `{"data":{"mal_id":1,"title":"Cowboy Bebop","synopsis":"Space.","aired":{"from":"1998-04-03T00:00:00+00:00"},
"genres":[{"name":"Action"},{"name":"Sci-Fi"}],"images":{"jpg":{"image_url":"https://img.test/s.jpg","large_image_url":"https://img.test/l.jpg"}}}}`

type recordObserver struct {
	mu     sync.Mutex
	starts []string
	done   []domain.RenderReport
}

func (o *recordObserver) OnStart(kind, pageURL string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts = append(o.starts, kind)
}

func (o *recordObserver) OnDone(rep domain.RenderReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = append(o.done, rep)
}

// upstream 统计请求次数，并按路径返回固定响应。
func upstream(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func jsonBody(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func status(code int) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(code) }
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("解析 URL 失败：%v", err)
	}
	return u
}

func mustDoc(t *testing.T, s string) *page.Document {
	t.Helper()
	doc, err := page.ParseString(s)
	if err != nil {
		t.Fatalf("解析页面失败：%v", err)
	}
	return doc
}

func animeEnv(srv *httptest.Server, obs Observer) Env {
	return Env{Client: srv.Client(), AnimeSource: jikan.Source{BaseURL: srv.URL}, Observer: obs}
}

func TestAnime_MissingID_NoRequest(t *testing.T) {
	srv, calls := upstream(t, nil)
	doc := mustDoc(t, animePage)

	reps := animeEnv(srv, nil).Page(context.Background(), doc, mustURL(t, "https://blog.test/p/anime.html"))
	if len(reps) != 1 {
		t.Fatalf("report 数=%d, want 1", len(reps))
	}
	if reps[0].Status != domain.StatusPrecondition || reps[0].ErrorCode != domain.ErrCodeMissingID {
		t.Fatalf("report 不符合预期：%+v", reps[0])
	}
	if atomic.LoadInt64(calls) != 0 {
		t.Fatalf("缺少 id 时不应访问上游，实际 %d 次", atomic.LoadInt64(calls))
	}
	if got := doc.Find("#anime-container").Text(); !strings.Contains(got, "No anime ID provided in URL. Add ?id=<anime_id> to the URL.") {
		t.Fatalf("容器文案不符合预期：%q", got)
	}
}

func TestAnime_WrongPage_NoRequest(t *testing.T) {
	srv, calls := upstream(t, nil)
	doc := mustDoc(t, animePage)

	rep := animeEnv(srv, nil).Anime(context.Background(), mustURL(t, "https://blog.test/p/other.html?id=1"),
		AnimeTargets{Container: mustElement(t, doc, IDAnimeContainer), Head: doc.Head()})
	if rep.ErrorCode != domain.ErrCodeWrongPage || rep.OK() {
		t.Fatalf("report 不符合预期：%+v", rep)
	}
	if atomic.LoadInt64(calls) != 0 {
		t.Fatalf("路径不匹配时不应访问上游，实际 %d 次", atomic.LoadInt64(calls))
	}
	if got := doc.Find("#anime-container").Text(); got != "Anime information can only be viewed on the designated anime page." {
		t.Fatalf("容器文案=%q", got)
	}
}

func TestAnime_CustomPagePath(t *testing.T) {
	srv, _ := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /anime/1": jsonBody(jikanBody),
	})
	env := animeEnv(srv, nil)
	env.AnimePagePath = "/anime/"
	doc := mustDoc(t, animePage)

	reps := env.Page(context.Background(), doc, mustURL(t, "https://blog.test/anime/detail?id=1"))
	if len(reps) != 1 || reps[0].Status != domain.StatusRendered {
		t.Fatalf("自定义路径应能渲染：%+v", reps)
	}
}

func TestAnime_HTTPError(t *testing.T) {
	srv, calls := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /anime/9": status(http.StatusNotFound),
	})
	obs := &recordObserver{}
	doc := mustDoc(t, animePage)

	reps := animeEnv(srv, obs).Page(context.Background(), doc, mustURL(t, "https://blog.test/p/anime.html?id=9"))
	rep := reps[0]
	if rep.Status != domain.StatusFailed || rep.ErrorCode != domain.ErrCodeFetchFailed || rep.ErrorMsg != "HTTP error! status: 404" {
		t.Fatalf("report 不符合预期：%+v", rep)
	}
	if atomic.LoadInt64(calls) != 1 {
		t.Fatalf("应只请求一次（不重试），实际 %d 次", atomic.LoadInt64(calls))
	}
	c := doc.Find("#anime-container .error")
	if c.Length() != 1 || c.Find("p").Eq(1).Text() != "Error: HTTP error! status: 404" {
		t.Fatalf("错误片段不符合预期：%q", c.Text())
	}
	if len(obs.starts) != 1 || len(obs.done) != 1 || obs.done[0].Kind != domain.KindAnimeDetail {
		t.Fatalf("observer 事件不符合预期：%+v", obs)
	}
}

func TestAnime_NotFoundAndParseFailed(t *testing.T) {
	srv, _ := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /anime/2": jsonBody(`{"data":null}`),
		"GET /anime/3": jsonBody(`not json`),
	})

	doc := mustDoc(t, animePage)
	rep := animeEnv(srv, nil).Page(context.Background(), doc, mustURL(t, "https://blog.test/p/anime.html?id=2"))[0]
	if rep.ErrorCode != domain.ErrCodeNotFound || rep.ErrorMsg != "Anime not found" {
		t.Fatalf("not found report 不符合预期：%+v", rep)
	}

	doc = mustDoc(t, animePage)
	rep = animeEnv(srv, nil).Page(context.Background(), doc, mustURL(t, "https://blog.test/p/anime.html?id=3"))[0]
	if rep.ErrorCode != domain.ErrCodeParseFailed {
		t.Fatalf("parse report 不符合预期：%+v", rep)
	}
}

func TestAnime_Success(t *testing.T) {
	srv, _ := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /anime/1": jsonBody(jikanBody),
	})
	doc := mustDoc(t, animePage)
	pageURL := "https://blog.test/p/anime.html?id=1"

	rep := animeEnv(srv, nil).Page(context.Background(), doc, mustURL(t, pageURL))[0]
	if rep.Status != domain.StatusRendered || rep.ID != "1" || rep.Source != "jikan" {
		t.Fatalf("report 不符合预期：%+v", rep)
	}

	c := doc.Find("#anime-container")
	if c.Find("h1").Text() != "Cowboy Bebop" {
		t.Fatalf("标题=%q", c.Find("h1").Text())
	}
	for _, want := range []string{"Space.", "Release Date: 4/3/1998", "Genres: Action, Sci-Fi"} {
		if !strings.Contains(c.Text(), want) {
			t.Fatalf("容器缺少 %q：%q", want, c.Text())
		}
	}

	if got := doc.Find("head title").Text(); got != "Cowboy Bebop | Anime Details" {
		t.Fatalf("<title>=%q", got)
	}
	if got, _ := doc.Find(`head link[rel="canonical"]`).Attr("href"); got != pageURL {
		t.Fatalf("canonical=%q", got)
	}
	if got, _ := doc.Find(`head meta[property="og:image"]`).Attr("content"); got != "https://img.test/l.jpg" {
		t.Fatalf("og:image=%q", got)
	}
	if got, _ := doc.Find(`head meta[name="keywords"]`).Attr("content"); got != "Cowboy Bebop, anime" {
		t.Fatalf("keywords=%q", got)
	}
	if got, _ := doc.Find(`head meta[property="twitter:description"]`).Attr("content"); got != "Cowboy Bebop - Blogspot" {
		t.Fatalf("twitter:description=%q", got)
	}
}

func TestAnime_SiteNameInHead(t *testing.T) {
	srv, _ := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /anime/1": jsonBody(jikanBody),
	})
	doc := mustDoc(t, animePage)
	env := animeEnv(srv, nil)
	env.SiteName = "Anime Notes"

	env.Page(context.Background(), doc, mustURL(t, "https://blog.test/p/anime.html?id=1"))
	if got, _ := doc.Find(`head meta[property="twitter:description"]`).Attr("content"); got != "Cowboy Bebop - Anime Notes" {
		t.Fatalf("twitter:description=%q", got)
	}
}

func TestAnime_MissingContainerSkipped(t *testing.T) {
	srv, calls := upstream(t, nil)
	rep := animeEnv(srv, nil).Anime(context.Background(), mustURL(t, "https://blog.test/p/anime.html?id=1"), AnimeTargets{})
	if rep.Status != domain.StatusSkipped || !rep.OK() {
		t.Fatalf("report 不符合预期：%+v", rep)
	}
	if atomic.LoadInt64(calls) != 0 {
		t.Fatalf("缺少容器时不应访问上游")
	}
}

func mustElement(t *testing.T, doc *page.Document, id string) page.Element {
	t.Helper()
	el, ok := doc.Element(id)
	if !ok {
		t.Fatalf("页面缺少 #%s", id)
	}
	return el
}

func newsEnv(srv *httptest.Server, profile provider.NewsProfile) Env {
	return Env{Client: srv.Client(), NewsSource: newsapi.New("begono", srv.URL, nil, profile)}
}

const articleBody = `{"id":"5","title":"Big <News>","description":"D","top_image":"https://img.test/n.jpg",
"authors":["A","B"],"publisher_title":"P","publisher_logo":"https://img.test/logo.png",
"published_date":1700000000000,"news_html":"<p>Body</p><script>x()</script>","news_text":"Body",
"keywords":"k1, k2","isBot":false,
"relatedNews":[{"id":"6","title":"ext","url":"https://other.test/p"},{"id":"7","title":"int"}]}`

func TestNewsDetail_Success(t *testing.T) {
	srv, calls := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /news/findById": jsonBody(articleBody),
	})
	doc := mustDoc(t, newsPage)
	pageURL := "https://news.test/?news=5"

	reps := newsEnv(srv, provider.NewsProfile{JSONLD: true}).Page(context.Background(), doc, mustURL(t, pageURL))
	if len(reps) != 1 || reps[0].Kind != domain.KindNewsDetail || reps[0].Status != domain.StatusRendered {
		t.Fatalf("report 不符合预期：%+v", reps)
	}
	if atomic.LoadInt64(calls) != 1 {
		t.Fatalf("上游请求次数=%d, want 1", atomic.LoadInt64(calls))
	}

	texts := map[string]string{
		"#news-title":          "Big <News>",
		"#news-description":    "D",
		"#news-author":         "Author: A, B",
		"#news-publisher":      "Publisher: P",
		"#news-published_date": "Published Date: Tue, 14 Nov 2023 22:13:20 GMT",
		"#news-keywords":       "Keywords: k1, k2",
	}
	for sel, want := range texts {
		if got := doc.Find(sel).Text(); got != want {
			t.Fatalf("%s=%q, want %q", sel, got, want)
		}
	}
	if got, _ := doc.Find("#news-image").Attr("src"); got != "https://img.test/n.jpg" {
		t.Fatalf("image src=%q", got)
	}
	if style, _ := doc.Find("#news-image").Attr("style"); !strings.Contains(style, "display: block") {
		t.Fatalf("image style=%q", style)
	}
	if h, _ := doc.Find("#news-content").Html(); h != "<p>Body</p>" {
		t.Fatalf("content=%q", h)
	}
	if doc.Find(`#related-news-list a[target="_blank"]`).Length() != 1 || doc.Find(`#related-news-list a[target="_self"]`).Length() != 1 {
		t.Fatalf("相关新闻链接不符合预期")
	}
	if style, _ := doc.Find("#news").Attr("style"); !strings.Contains(style, "display: block") {
		t.Fatalf("#news style=%q", style)
	}
	if v, _ := doc.Find("#news").Attr("data-next-load"); v != "true" {
		t.Fatalf("isBot=false 时应标记 data-next-load")
	}
	if style, _ := doc.Find("#news-list").Attr("style"); !strings.Contains(style, "display: none") {
		t.Fatalf("#news-list style=%q", style)
	}

	if got := doc.Find("head title").Text(); got != "Big <News>" {
		t.Fatalf("<title>=%q", got)
	}
	if got, _ := doc.Find(`head link[rel="canonical"]`).Attr("href"); got != pageURL {
		t.Fatalf("canonical=%q", got)
	}
	ld := doc.Find(`head script[type="application/ld+json"]`)
	if ld.Length() != 1 || !strings.Contains(ld.Text(), `"@type":"NewsArticle"`) {
		t.Fatalf("JSON-LD 不符合预期：%q", ld.Text())
	}
}

func TestNewsDetail_NoJSONLDForProfile(t *testing.T) {
	srv, _ := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /news/findById": jsonBody(`{"id":"5","title":"T"}`),
	})
	doc := mustDoc(t, newsPage)
	newsEnv(srv, provider.NewsProfile{LinkBase: "index.html"}).Page(context.Background(), doc, mustURL(t, "https://news.test/index.html?news=5"))

	if n := doc.Find(`script[type="application/ld+json"]`).Length(); n != 0 {
		t.Fatalf("profile 关闭 JSON-LD 时不应写入，实际 %d 个", n)
	}
	if _, ok := doc.Find("#news").Attr("data-next-load"); ok {
		t.Fatalf("isBot 缺失时不应标记 data-next-load")
	}
	if got := doc.Find("#news-content").Text(); got != "No content available" {
		t.Fatalf("content=%q", got)
	}
}

func TestNewsDetail_HTTPError(t *testing.T) {
	srv, calls := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /news/findById": status(http.StatusInternalServerError),
	})
	doc := mustDoc(t, newsPage)

	rep := newsEnv(srv, provider.NewsProfile{}).Page(context.Background(), doc, mustURL(t, "https://news.test/?news=5"))[0]
	if rep.ErrorCode != domain.ErrCodeFetchFailed {
		t.Fatalf("report 不符合预期：%+v", rep)
	}
	if got := doc.Find("#news-title").Text(); got != "Error loading news data. Error: HTTP error! status: 500" {
		t.Fatalf("#news-title=%q", got)
	}
	if atomic.LoadInt64(calls) != 1 {
		t.Fatalf("上游请求次数=%d, want 1", atomic.LoadInt64(calls))
	}
}

func TestNewsList_SortedCards(t *testing.T) {
	srv, _ := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /news/": jsonBody(`[
			{"id":"1","title":"old","published_date":1600000000000},
			{"id":"2","title":"undated"},
			{"id":"3","title":"new","published_date":"1700000000000"}
		]`),
	})
	doc := mustDoc(t, newsPage)

	reps := newsEnv(srv, provider.NewsProfile{LinkBase: "index.html"}).Page(context.Background(), doc, mustURL(t, "https://news.test/index.html"))
	if len(reps) != 1 || reps[0].Kind != domain.KindNewsList || reps[0].Items != 3 {
		t.Fatalf("report 不符合预期：%+v", reps)
	}

	var titles, links []string
	doc.Find("#news-list .news-item h2 a").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
		href, _ := s.Attr("href")
		links = append(links, href)
	})
	if strings.Join(titles, ",") != "new,old,undated" {
		t.Fatalf("排序不符合预期：%v", titles)
	}
	if links[0] != "index.html?news=3" {
		t.Fatalf("链接=%q", links[0])
	}
	if got := doc.Find("#news-list .news-item").Eq(2).Find(".published-date").Text(); got != "Date not available" {
		t.Fatalf("无日期文案=%q", got)
	}
}

func TestNewsList_Error(t *testing.T) {
	srv, _ := upstream(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /news/": status(http.StatusBadGateway),
	})
	doc := mustDoc(t, `<div id="news-list"></div>`)

	rep := newsEnv(srv, provider.NewsProfile{}).Page(context.Background(), doc, mustURL(t, "https://news.test/"))[0]
	if rep.Status != domain.StatusFailed {
		t.Fatalf("report 不符合预期：%+v", rep)
	}
	if got := doc.Find("#news-list").Text(); got != "Error loading news list. Error: HTTP error! status: 502" {
		t.Fatalf("#news-list=%q", got)
	}
}

func TestPage_NoContainers(t *testing.T) {
	srv, calls := upstream(t, nil)
	env := animeEnv(srv, nil)
	env.NewsSource = newsapi.New("begono", srv.URL, nil, provider.NewsProfile{})

	reps := env.Page(context.Background(), mustDoc(t, `<p>static</p>`), mustURL(t, "https://blog.test/p/anime.html?id=1&news=2"))
	if len(reps) != 0 || atomic.LoadInt64(calls) != 0 {
		t.Fatalf("没有容器时不应渲染：reps=%v calls=%d", reps, atomic.LoadInt64(calls))
	}
}
