package domain

import "time"

const (
	KindAnimeDetail = "anime_detail"
	KindNewsDetail  = "news_detail"
	KindNewsList    = "news_list"
)

const (
	StatusRendered     = "rendered"
	StatusFailed       = "failed"
	StatusPrecondition = "precondition"
	StatusSkipped      = "skipped"
)

const (
	ErrCodeWrongPage         = "wrong_page"
	ErrCodeMissingID         = "missing_id"
	ErrCodeMissingContainer  = "missing_container"
	ErrCodeNotFound          = "not_found"
	ErrCodeFetchFailed       = "fetch_failed"
	ErrCodeParseFailed       = "parse_failed"
	ErrCodeTemplateFailed    = "template_failed"
	ErrCodeOutputConflict    = "output_conflict"
	ErrCodeOutputWriteFailed = "output_write_failed"
)

// RenderReport 是一次渲染的对外稳定输出（render 命令的 stdout JSON / serve 的日志字段）。
type RenderReport struct {
	PageURL string `json:"page_url"`
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Source  string `json:"source"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	// Items 仅对列表渲染有意义：实际渲染的卡片数。
	Items int `json:"items"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Finalize 把时间统一为 UTC（JSON 为 RFC3339 且后缀 Z），并保证 status 非空。
func (r *RenderReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Status == "" {
		if r.ErrorCode != "" {
			r.Status = StatusFailed
		} else {
			r.Status = StatusRendered
		}
	}
}

// OK 表示这次渲染不需要让调用方以失败退出。
func (r RenderReport) OK() bool {
	return r.Status == StatusRendered || r.Status == StatusSkipped
}

// Duration 是渲染耗时；未 Finalize 前可能为 0。
func (r RenderReport) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
