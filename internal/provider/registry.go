package provider

import (
	"fmt"
	"strings"
)

// Registry 是 source 的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Source
}

func NewRegistry(sources ...Source) (Registry, error) {
	byName := make(map[string]Source, len(sources))
	for _, s := range sources {
		if s == nil {
			return Registry{}, fmt.Errorf("source must not be nil")
		}
		name := normName(s.Name())
		if name == "" {
			return Registry{}, fmt.Errorf("source name must not be empty")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("duplicate source %q", name)
		}
		byName[name] = s
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Source, bool) {
	if r.byName == nil {
		return nil, false
	}
	s, ok := r.byName[normName(name)]
	return s, ok
}

// Anime 返回名为 name 且实现了 AnimeSource 的 source。
func (r Registry) Anime(name string) (AnimeSource, bool) {
	s, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	a, ok := s.(AnimeSource)
	return a, ok
}

// News 返回名为 name 且实现了 NewsSource 的 source。
func (r Registry) News(name string) (NewsSource, bool) {
	s, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	n, ok := s.(NewsSource)
	return n, ok
}

func normName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
