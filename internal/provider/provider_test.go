package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/John-Robertt/blogrender/internal/domain"
)

type stubAnime struct {
	name     string
	fetchErr error
	parseErr error
	anime    domain.Anime

	fetchCalls int
}

func (s *stubAnime) Name() string { return s.name }

func (s *stubAnime) FetchAnime(ctx context.Context, id domain.ID, c *http.Client) ([]byte, string, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, "https://api.test/anime/" + string(id), s.fetchErr
	}
	return []byte("{}"), "https://api.test/anime/" + string(id), nil
}

func (s *stubAnime) ParseAnime(id domain.ID, body []byte) (domain.Anime, error) {
	if s.parseErr != nil {
		return domain.Anime{}, s.parseErr
	}
	return s.anime, nil
}

func TestFetchAnime_StageErrors(t *testing.T) {
	src := &stubAnime{name: "jikan", fetchErr: &HTTPStatusError{StatusCode: 500}}
	_, apiURL, err := FetchAnime(context.Background(), src, "1", nil)

	var pe *Error
	if !errors.As(err, &pe) || pe.Stage != StageFetch || pe.Source != "jikan" {
		t.Fatalf("期望 fetch 阶段错误，实际：%v", err)
	}
	if apiURL != "https://api.test/anime/1" {
		t.Fatalf("失败时也应返回 apiURL：%q", apiURL)
	}
	if Cause(err).Error() != "HTTP error! status: 500" {
		t.Fatalf("Cause 应剥掉前缀：%q", Cause(err).Error())
	}

	src2 := &stubAnime{name: "jikan", parseErr: &NotFoundError{What: "Anime"}}
	_, _, err = FetchAnime(context.Background(), src2, "1", nil)
	if !errors.As(err, &pe) || pe.Stage != StageParse {
		t.Fatalf("期望 parse 阶段错误，实际：%v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("NotFoundError 应可穿透 Unwrap")
	}
}

func TestFetchAnime_OK(t *testing.T) {
	src := &stubAnime{name: "jikan", anime: domain.Anime{Title: "T"}}
	a, _, err := FetchAnime(context.Background(), src, "1", nil)
	if err != nil || a.Title != "T" {
		t.Fatalf("结果不一致：%+v err=%v", a, err)
	}
	if src.fetchCalls != 1 {
		t.Fatalf("只允许一次请求，实际 %d", src.fetchCalls)
	}
}

func TestFetchAnime_NilSource(t *testing.T) {
	if _, _, err := FetchAnime(context.Background(), nil, "1", nil); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestRegistry_TypedLookup(t *testing.T) {
	reg, err := NewRegistry(&stubAnime{name: "Jikan"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, ok := reg.Anime(" jikan "); !ok {
		t.Fatalf("名称应大小写/空白不敏感")
	}
	if _, ok := reg.News("jikan"); ok {
		t.Fatalf("anime source 不应作为 news source 返回")
	}

	if _, err := NewRegistry(&stubAnime{name: "a"}, &stubAnime{name: "A"}); err == nil {
		t.Fatalf("重复名称应报错")
	}
	if _, err := NewRegistry(&stubAnime{name: " "}); err == nil {
		t.Fatalf("空名称应报错")
	}
}

func TestNewsProfile_ArticleLink(t *testing.T) {
	if got := (NewsProfile{}).ArticleLink("5"); got != "?news=5" {
		t.Fatalf("链接不一致：%q", got)
	}
	if got := (NewsProfile{LinkBase: "index.html"}).ArticleLink("a&b#c d"); got != "index.html?news=a%26b%23c+d" {
		t.Fatalf("id 应做 query 转义：%q", got)
	}
}
