package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/John-Robertt/blogrender/internal/domain"
	providerx "github.com/John-Robertt/blogrender/internal/provider"
)

// Source 实现新闻站点 API：
//   - 列表：GET  <base>/news/
//   - 详情：POST <base>/news/findById，body {"id": "<id>"}
//
// 同一套接口部署在不同入口（公网域名 / localtunnel），差异只体现在
// BaseURL、额外请求头与 NewsProfile 上。
type Source struct {
	name    string
	BaseURL string
	Headers map[string]string
	profile providerx.NewsProfile
}

// New 构造一个命名的新闻 source；headers 会附加到每个请求上。
func New(name, baseURL string, headers map[string]string, profile providerx.NewsProfile) Source {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return Source{
		name:    strings.ToLower(strings.TrimSpace(name)),
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Headers: h,
		profile: profile,
	}
}

func (s Source) Name() string                    { return s.name }
func (s Source) Profile() providerx.NewsProfile { return s.profile }

func (s Source) FetchList(ctx context.Context, c *http.Client) ([]byte, string, error) {
	if s.BaseURL == "" {
		return nil, "", errors.New("news base url is empty")
	}
	apiURL := s.BaseURL + "/news/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, apiURL, err
	}
	s.decorate(req)
	b, err := providerx.Do(c, req)
	return b, apiURL, err
}

func (s Source) FetchArticle(ctx context.Context, id domain.ID, c *http.Client) ([]byte, string, error) {
	if s.BaseURL == "" {
		return nil, "", errors.New("news base url is empty")
	}
	if id == "" {
		return nil, "", errors.New("id must not be empty")
	}
	apiURL := s.BaseURL + "/news/findById"
	payload, err := json.Marshal(map[string]string{"id": string(id)})
	if err != nil {
		return nil, apiURL, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apiURL, err
	}
	req.Header.Set("Content-Type", "application/json")
	s.decorate(req)
	b, err := providerx.Do(c, req)
	return b, apiURL, err
}

func (s Source) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	// map 遍历无序；按 key 排序只是为了让请求在抓包/日志里稳定。
	keys := make([]string, 0, len(s.Headers))
	for k := range s.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		req.Header.Set(k, s.Headers[k])
	}
}

// ParseArticle 解析 findById 的响应；响应为 null 视为 NotFoundError。
func (Source) ParseArticle(id domain.ID, body []byte) (domain.Article, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return domain.Article{}, errors.New("empty response body")
	}
	if string(body) == "null" {
		return domain.Article{}, &providerx.NotFoundError{What: "News"}
	}
	var w article
	if err := json.Unmarshal(body, &w); err != nil {
		return domain.Article{}, err
	}

	out := domain.Article{
		ID:             strings.TrimSpace(string(w.ID)),
		Title:          strings.TrimSpace(w.Title),
		Description:    strings.TrimSpace(w.Description),
		TopImage:       strings.TrimSpace(w.TopImage),
		Authors:        []string(w.Authors),
		PublisherTitle: strings.TrimSpace(w.PublisherTitle),
		PublisherLogo:  strings.TrimSpace(w.PublisherLogo),
		PublishedAt:    w.PublishedDate.Time(),
		NewsHTML:       w.NewsHTML,
		NewsText:       w.NewsText,
		Keywords:       []string(w.Keywords),
		IsBot:          w.IsBot,
	}
	if out.ID == "" {
		out.ID = string(id)
	}
	for _, r := range w.RelatedNews {
		rid := strings.TrimSpace(string(r.ID))
		if rid == "" {
			continue
		}
		out.Related = append(out.Related, domain.RelatedArticle{
			ID:    rid,
			Title: strings.TrimSpace(r.Title),
			URL:   strings.TrimSpace(r.URL),
		})
	}
	return out, nil
}

// ParseList 解析列表接口返回的 JSON 数组；null 视为空列表。
func (Source) ParseList(body []byte) ([]domain.ArticleSummary, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	var ws []summary
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, err
	}
	out := make([]domain.ArticleSummary, 0, len(ws))
	for _, w := range ws {
		out = append(out, domain.ArticleSummary{
			ID:          strings.TrimSpace(string(w.ID)),
			Title:       strings.TrimSpace(w.Title),
			Description: strings.TrimSpace(w.Description),
			TopImage:    strings.TrimSpace(w.TopImage),
			PublishedAt: w.PublishedDate.Time(),
		})
	}
	return out, nil
}
