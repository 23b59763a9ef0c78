package jikan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/John-Robertt/blogrender/internal/domain"
	providerx "github.com/John-Robertt/blogrender/internal/provider"
)

// DefaultBaseURL 是 Jikan v4 的公开入口。
const DefaultBaseURL = "https://api.jikan.moe/v4"

// Source 实现 Jikan 的 anime 详情抓取与 JSON 解析。
//
// 约束：
// - 详情 URL 直接拼接：<base>/anime/<id>
// - Fetch/Parse 不做缓存/重试（单次尽力而为）
type Source struct {
	// BaseURL 允许指向镜像或自建的 Jikan 实例；为空时使用 DefaultBaseURL。
	BaseURL string
}

func (Source) Name() string { return "jikan" }

func (s Source) baseURL() string {
	u := strings.TrimSpace(s.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func (s Source) FetchAnime(ctx context.Context, id domain.ID, c *http.Client) ([]byte, string, error) {
	if id == "" {
		return nil, "", errors.New("id must not be empty")
	}
	apiURL := s.baseURL() + "/anime/" + id.PathSegment()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, apiURL, err
	}
	req.Header.Set("Accept", "application/json")
	b, err := providerx.Do(c, req)
	return b, apiURL, err
}

type envelope struct {
	Data *anime `json:"data"`
}

type anime struct {
	MalID    int     `json:"mal_id"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Synopsis *string `json:"synopsis"`
	Aired    struct {
		From *string `json:"from"`
	} `json:"aired"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Images struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
}

// ParseAnime 把 {"data": {...}} 解析为 domain.Anime；data 缺失视为 NotFoundError。
func (Source) ParseAnime(id domain.ID, body []byte) (domain.Anime, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Anime{}, errors.New("empty response body")
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Anime{}, err
	}
	if env.Data == nil {
		return domain.Anime{}, &providerx.NotFoundError{What: "Anime"}
	}
	w := env.Data

	out := domain.Anime{
		MalID: w.MalID,
		Title: strings.TrimSpace(w.Title),
		URL:   strings.TrimSpace(w.URL),
	}
	if w.Synopsis != nil {
		out.Synopsis = strings.TrimSpace(*w.Synopsis)
	}
	if w.Aired.From != nil {
		// 日期不合法时按缺失处理（展示 N/A），不让整页失败。
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(*w.Aired.From)); err == nil {
			out.AiredFrom = t.UTC()
		}
	}
	for _, g := range w.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			out.Genres = append(out.Genres, name)
		}
	}
	out.ImageURL = strings.TrimSpace(w.Images.JPG.LargeImageURL)
	if out.ImageURL == "" {
		out.ImageURL = strings.TrimSpace(w.Images.JPG.ImageURL)
	}
	return out, nil
}
