package newsapi

import (
	"sort"
	"strings"

	providerx "github.com/John-Robertt/blogrender/internal/provider"
)

// Preset 是内置新闻站点的默认参数；配置文件可以覆盖其中任意一项。
type Preset struct {
	Name    string
	BaseURL string
	Headers map[string]string
	Profile providerx.NewsProfile
}

var presets = map[string]Preset{
	"begono": {
		Name:    "begono",
		BaseURL: "https://api.begonoaja.site",
		Profile: providerx.NewsProfile{LinkBase: "", JSONLD: true},
	},
	// localtunnel 会先返回一个提示页，带上该头才会直接转发到后端。
	"tunnel": {
		Name:    "tunnel",
		BaseURL: "https://red-pears-carry.loca.lt",
		Headers: map[string]string{"bypass-tunnel-reminder": "1"},
		Profile: providerx.NewsProfile{LinkBase: "index.html", JSONLD: false},
	},
}

// DefaultPreset 是未配置 news.source 时使用的站点。
const DefaultPreset = "begono"

// LookupPreset 按名称（不区分大小写）查找内置站点。
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, false
	}
	h := make(map[string]string, len(p.Headers))
	for k, v := range p.Headers {
		h[k] = v
	}
	p.Headers = h
	return p, true
}

// PresetNames 返回排序后的内置站点名，用于错误提示。
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Source 用 preset 构造 source。
func (p Preset) Source() Source {
	return New(p.Name, p.BaseURL, p.Headers, p.Profile)
}
