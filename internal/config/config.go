package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/blogrender/internal/app/render"
	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/provider/jikan"
	"github.com/John-Robertt/blogrender/internal/provider/newsapi"
)

// FileName 是 cwd 下自动发现的配置文件名。JSON 也是合法的 YAML，可以直接使用。
const FileName = "blogrender.yaml"

const (
	// ErrCodeNotFound 表示显式指定的 --config 不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultAddr        = ":8080"
	DefaultTemplates   = "templates"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultAnimeSource = "jikan"
	DefaultTimeout     = 20 * time.Second
)

// CLIArgs 是 CLI 能覆盖的字段，并保留“是否显式指定”的信息。
type CLIArgs struct {
	// ConfigPath 非空时必须存在；为空时尝试 <cwd>/blogrender.yaml（可选）。
	ConfigPath string

	Addr    string
	AddrSet bool

	Templates    string
	TemplatesSet bool
}

// FileConfig 对应 blogrender.yaml 的解析结构。未知字段忽略。
type FileConfig struct {
	Addr      string       `yaml:"addr"`
	Templates string       `yaml:"templates"`
	Proxy     *ProxyConfig `yaml:"proxy"`
	Timeout   string       `yaml:"timeout"`
	Log       LogConfig    `yaml:"log"`
	Anime     AnimeConfig  `yaml:"anime"`
	News      NewsConfig   `yaml:"news"`
	Site      SiteConfig   `yaml:"site"`
}

type ProxyConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AnimeConfig struct {
	Source   string `yaml:"source"`
	BaseURL  string `yaml:"base_url"`
	PagePath string `yaml:"page_path"`
}

// NewsConfig 中的指针字段区分“未配置”（沿用站点预设）与“显式置空/false”。
type NewsConfig struct {
	Source   string            `yaml:"source"`
	BaseURL  string            `yaml:"base_url"`
	LinkBase *string           `yaml:"link_base"`
	Headers  map[string]string `yaml:"headers"`
	JSONLD   *bool             `yaml:"jsonld"`
}

type SiteConfig struct {
	Name string `yaml:"name"`
}

// EffectiveConfig 是合并并规范化后的最终配置。
type EffectiveConfig struct {
	// ConfigPath 为实际读取的配置文件；未读取时为空。
	ConfigPath string

	Addr      string
	Templates string

	ProxyURL string
	Timeout  time.Duration

	LogLevel  string
	LogFormat string

	Anime AnimeSettings
	News  NewsSettings

	SiteName string
}

type AnimeSettings struct {
	Source   string
	BaseURL  string
	PagePath string
}

type NewsSettings struct {
	Source   string
	BaseURL  string
	LinkBase string
	Headers  map[string]string
	JSONLD   bool
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) --config 给出路径：必须存在
// 2) 否则读取 <cwd>/blogrender.yaml（可选，不存在时全部使用默认值）
//
// 覆盖优先级：CLI > 配置文件 > 内置默认；news.* 的默认值来自所选站点预设。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}
	if !exists {
		cfgPath = ""
	}

	eff, err := merge(cwdAbs, cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff.ConfigPath = cfgPath
	return eff, nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		Addr:      firstNonEmpty(fc.Addr, DefaultAddr),
		Templates: firstNonEmpty(fc.Templates, DefaultTemplates),
		LogLevel:  strings.ToLower(firstNonEmpty(fc.Log.Level, DefaultLogLevel)),
		LogFormat: strings.ToLower(firstNonEmpty(fc.Log.Format, DefaultLogFormat)),
		SiteName:  firstNonEmpty(fc.Site.Name, domain.DefaultSiteName),
		Timeout:   DefaultTimeout,
	}
	if cli.AddrSet {
		eff.Addr = strings.TrimSpace(cli.Addr)
	}
	if cli.TemplatesSet {
		eff.Templates = cli.Templates
	}
	if eff.Addr == "" {
		return EffectiveConfig{}, errors.New("addr 不能为空")
	}
	eff.Templates = absCleanFrom(cwdAbs, eff.Templates)
	if eff.Templates == "" {
		return EffectiveConfig{}, errors.New("templates 不能为空")
	}

	if fc.Proxy != nil {
		eff.ProxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if eff.ProxyURL != "" {
		u, err := url.Parse(eff.ProxyURL)
		if err != nil || u.Host == "" {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 无效：%q", eff.ProxyURL)
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return EffectiveConfig{}, fmt.Errorf("proxy.url 只支持 http/https/socks5：%q", eff.ProxyURL)
		}
	}

	if s := strings.TrimSpace(fc.Timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return EffectiveConfig{}, fmt.Errorf("timeout 无效：%q（示例：20s）", s)
		}
		eff.Timeout = d
	}

	if _, err := zapcore.ParseLevel(eff.LogLevel); err != nil {
		return EffectiveConfig{}, fmt.Errorf("log.level 无效：%q", eff.LogLevel)
	}
	switch eff.LogFormat {
	case "console", "json":
	default:
		return EffectiveConfig{}, fmt.Errorf("log.format 只能是 console 或 json，实际是 %q", eff.LogFormat)
	}

	anime, err := mergeAnime(fc.Anime)
	if err != nil {
		return EffectiveConfig{}, err
	}
	eff.Anime = anime

	news, err := mergeNews(fc.News)
	if err != nil {
		return EffectiveConfig{}, err
	}
	eff.News = news
	return eff, nil
}

func mergeAnime(ac AnimeConfig) (AnimeSettings, error) {
	s := AnimeSettings{
		Source:   strings.ToLower(firstNonEmpty(ac.Source, DefaultAnimeSource)),
		BaseURL:  strings.TrimRight(firstNonEmpty(ac.BaseURL, jikan.DefaultBaseURL), "/"),
		PagePath: firstNonEmpty(ac.PagePath, render.DefaultAnimePagePath),
	}
	if s.Source != DefaultAnimeSource {
		return AnimeSettings{}, fmt.Errorf("anime.source 只能是 %s，实际是 %q", DefaultAnimeSource, s.Source)
	}
	if err := validateHTTPURL("anime.base_url", s.BaseURL); err != nil {
		return AnimeSettings{}, err
	}
	if !strings.HasPrefix(s.PagePath, "/") {
		return AnimeSettings{}, fmt.Errorf("anime.page_path 必须以 / 开头：%q", s.PagePath)
	}
	return s, nil
}

func mergeNews(nc NewsConfig) (NewsSettings, error) {
	name := strings.ToLower(firstNonEmpty(nc.Source, newsapi.DefaultPreset))
	preset, ok := newsapi.LookupPreset(name)
	if !ok {
		return NewsSettings{}, fmt.Errorf("news.source 只能是 %s，实际是 %q", strings.Join(newsapi.PresetNames(), " / "), name)
	}

	s := NewsSettings{
		Source:   preset.Name,
		BaseURL:  strings.TrimRight(firstNonEmpty(nc.BaseURL, preset.BaseURL), "/"),
		LinkBase: preset.Profile.LinkBase,
		Headers:  preset.Headers,
		JSONLD:   preset.Profile.JSONLD,
	}
	if nc.LinkBase != nil {
		s.LinkBase = strings.TrimSpace(*nc.LinkBase)
	}
	if nc.JSONLD != nil {
		s.JSONLD = *nc.JSONLD
	}
	// 配置中的 header 追加/覆盖预设；header 名大小写不敏感。
	keys := make([]string, 0, len(nc.Headers))
	for k := range nc.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hk := strings.TrimSpace(k)
		if hk == "" {
			return NewsSettings{}, errors.New("news.headers 不能包含空的 header 名")
		}
		for existing := range s.Headers {
			if strings.EqualFold(existing, hk) {
				delete(s.Headers, existing)
			}
		}
		s.Headers[hk] = nc.Headers[k]
	}

	if err := validateHTTPURL("news.base_url", s.BaseURL); err != nil {
		return NewsSettings{}, err
	}
	return s, nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return nil
}

func firstNonEmpty(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML（或 JSON）配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
