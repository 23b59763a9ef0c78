// Package server 通过 HTTP 提供博客页面：每个 .html 模板在响应前先跑一遍对应的渲染器。
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/app/render"
	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/page"
)

// RequestTimeout 同时限制上游请求：请求 ctx 会传到 provider。
const RequestTimeout = 30 * time.Second

// ErrTemplateNotFound 表示请求路径没有对应的模板文件（或路径越界）。
var ErrTemplateNotFound = errors.New("template not found")

type Server struct {
	Templates string
	Env       render.Env
	Log       *zap.Logger
}

func New(templates string, env render.Env, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Templates: templates, Env: env, Log: log}
}

// Routes 返回完整的 chi 路由。
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/*", s.servePage)
	return r
}

// ListenAndServe 阻塞直到 ctx 结束，然后优雅关闭。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Info("listening", zap.String("addr", addr), zap.String("templates", s.Templates))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	file, err := ResolveTemplate(s.Templates, r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !isHTML(file) {
		http.ServeFile(w, r, file)
		return
	}

	b, err := os.ReadFile(file)
	if err != nil {
		s.Log.Error("read template", zap.String("file", file), zap.Error(err))
		http.Error(w, "template read failed", http.StatusInternalServerError)
		return
	}
	out, _, err := RenderPage(r.Context(), s.Env, b, PageURL(r))
	if err != nil {
		s.Log.Error("render template", zap.String("file", file), zap.String("error_code", domain.ErrCodeTemplateFailed), zap.Error(err))
		http.Error(w, "template render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// RenderPage 解析模板、运行页面上存在的渲染器，并输出完整 HTML。
// 渲染失败只体现在页面内容与 report 中；error 仅表示模板本身无法解析或序列化。
func RenderPage(ctx context.Context, env render.Env, tmpl []byte, pageURL *url.URL) (string, []domain.RenderReport, error) {
	doc, err := page.Parse(bytes.NewReader(tmpl))
	if err != nil {
		return "", nil, err
	}
	reps := env.Page(ctx, doc, pageURL)
	out, err := doc.HTML()
	if err != nil {
		return "", reps, fmt.Errorf("serialize page: %w", err)
	}
	return out, reps, nil
}

// ResolveTemplate 把请求路径映射到 root 下的文件。
//
// "/" 与以 "/" 结尾的目录映射到 index.html；清洗后的路径不会越出 root。
func ResolveTemplate(root, urlPath string) (string, error) {
	if strings.Contains(urlPath, "\x00") {
		return "", ErrTemplateNotFound
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", ErrTemplateNotFound
		}
	}
	clean := path.Clean("/" + urlPath)
	if strings.HasSuffix(urlPath, "/") || clean == "/" {
		clean = path.Join(clean, "index.html")
	}

	file := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrTemplateNotFound
	}

	fi, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrTemplateNotFound
		}
		return "", err
	}
	if fi.IsDir() {
		file = filepath.Join(file, "index.html")
		if fi, err = os.Stat(file); err != nil || !fi.Mode().IsRegular() {
			return "", ErrTemplateNotFound
		}
	}
	if !fi.Mode().IsRegular() {
		return "", ErrTemplateNotFound
	}
	return file, nil
}

// PageURL 还原读者看到的完整 URL（canonical 使用）。
func PageURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); p == "http" || p == "https" {
		scheme = p
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: r.URL.RawQuery,
	}
}

func isHTML(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}
