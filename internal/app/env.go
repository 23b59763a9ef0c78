// Package app 把最终配置装配成可直接渲染的 render.Env。
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/app/render"
	"github.com/John-Robertt/blogrender/internal/config"
	"github.com/John-Robertt/blogrender/internal/infra/httpx"
	"github.com/John-Robertt/blogrender/internal/provider"
	"github.com/John-Robertt/blogrender/internal/provider/jikan"
	"github.com/John-Robertt/blogrender/internal/provider/newsapi"
)

// NewRegistry 注册配置选中的 anime / news source。
func NewRegistry(eff config.EffectiveConfig) (provider.Registry, error) {
	news := newsapi.New(eff.News.Source, eff.News.BaseURL, eff.News.Headers, provider.NewsProfile{
		LinkBase: eff.News.LinkBase,
		JSONLD:   eff.News.JSONLD,
	})
	return provider.NewRegistry(jikan.Source{BaseURL: eff.Anime.BaseURL}, news)
}

// NewEnv 构造出站 client 与 source，返回的 Env 可被多个请求并发使用。
func NewEnv(eff config.EffectiveConfig, log *zap.Logger) (render.Env, error) {
	if log == nil {
		log = zap.NewNop()
	}

	client, err := httpx.NewAPIClient(httpx.Options{ProxyURL: eff.ProxyURL, Timeout: eff.Timeout})
	if err != nil {
		return render.Env{}, &config.Error{Code: config.ErrCodeInvalid, Path: eff.ConfigPath, Err: err}
	}

	reg, err := NewRegistry(eff)
	if err != nil {
		return render.Env{}, fmt.Errorf("register sources: %w", err)
	}
	anime, ok := reg.Anime(eff.Anime.Source)
	if !ok {
		return render.Env{}, fmt.Errorf("anime source %q is not registered", eff.Anime.Source)
	}
	news, ok := reg.News(eff.News.Source)
	if !ok {
		return render.Env{}, fmt.Errorf("news source %q is not registered", eff.News.Source)
	}

	return render.Env{
		Client:        client,
		AnimeSource:   anime,
		NewsSource:    news,
		AnimePagePath: eff.Anime.PagePath,
		SiteName:      eff.SiteName,
		Log:           log,
		Observer:      render.NewLogObserver(log),
	}, nil
}
