package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/John-Robertt/blogrender/internal/domain"
)

const (
	StageFetch = "fetch"
	StageParse = "parse"
)

// Error 是 source 阶段的可追溯错误。
// 上层据此把失败归类为 fetch_failed / parse_failed / not_found，并写入 report。
type Error struct {
	Source string
	Stage  string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source=%s stage=%s: %v", e.Source, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cause 剥掉 *Error 的 source/stage 前缀，返回适合直接展示给读者的原因。
func Cause(err error) error {
	var pe *Error
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err
	}
	return err
}

// FetchAnime 抓取并解析单条 anime；返回值 apiURL 为实际请求的上游地址。
func FetchAnime(ctx context.Context, src AnimeSource, id domain.ID, c *http.Client) (domain.Anime, string, error) {
	if src == nil {
		return domain.Anime{}, "", errors.New("anime source is not configured")
	}
	return fetchParse(src.Name(),
		func() ([]byte, string, error) { return src.FetchAnime(ctx, id, c) },
		func(b []byte) (domain.Anime, error) { return src.ParseAnime(id, b) },
	)
}

// FetchArticle 抓取并解析单篇新闻。
func FetchArticle(ctx context.Context, src NewsSource, id domain.ID, c *http.Client) (domain.Article, string, error) {
	if src == nil {
		return domain.Article{}, "", errors.New("news source is not configured")
	}
	return fetchParse(src.Name(),
		func() ([]byte, string, error) { return src.FetchArticle(ctx, id, c) },
		func(b []byte) (domain.Article, error) { return src.ParseArticle(id, b) },
	)
}

// FetchList 抓取并解析新闻列表（未排序，保持上游顺序）。
func FetchList(ctx context.Context, src NewsSource, c *http.Client) ([]domain.ArticleSummary, string, error) {
	if src == nil {
		return nil, "", errors.New("news source is not configured")
	}
	return fetchParse(src.Name(),
		func() ([]byte, string, error) { return src.FetchList(ctx, c) },
		src.ParseList,
	)
}

func fetchParse[T any](name string, fetch func() ([]byte, string, error), parse func([]byte) (T, error)) (T, string, error) {
	var zero T
	body, apiURL, err := fetch()
	if err != nil {
		return zero, apiURL, &Error{Source: name, Stage: StageFetch, Err: err}
	}
	v, err := parse(body)
	if err != nil {
		return zero, apiURL, &Error{Source: name, Stage: StageParse, Err: err}
	}
	return v, apiURL, nil
}

// Do 发送请求并读取完整响应体；非 2xx 返回 *HTTPStatusError。
func Do(c *http.Client, req *http.Request) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client must not be nil")
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return io.ReadAll(resp.Body)
}
