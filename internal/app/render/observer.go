package render

import (
	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/domain"
)

// Observer 把“渲染开始/结束”事件从渲染流程中解耦出来。
//
// 约束：
// - render 包只发事件，不直接输出（render 命令的 stdout 只留给 report JSON）。
// - 实现必须并发安全：serve 模式下多个请求会同时渲染。
type Observer interface {
	OnStart(kind, pageURL string)
	OnDone(rep domain.RenderReport)
}

// LogObserver 把事件写到 zap。rendered/skipped 记 info，其余记 warn。
type LogObserver struct {
	Log *zap.Logger
}

func NewLogObserver(log *zap.Logger) LogObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return LogObserver{Log: log}
}

func (o LogObserver) OnStart(kind, pageURL string) {
	o.logger().Debug("render start", zap.String("kind", kind), zap.String("page_url", pageURL))
}

func (o LogObserver) OnDone(rep domain.RenderReport) {
	fields := ReportFields(rep)
	if rep.OK() {
		o.logger().Info("render done", fields...)
		return
	}
	o.logger().Warn("render done", fields...)
}

func (o LogObserver) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// ReportFields 返回 report 的结构化日志字段。
func ReportFields(rep domain.RenderReport) []zap.Field {
	fields := []zap.Field{
		zap.String("page_url", rep.PageURL),
		zap.String("kind", rep.Kind),
		zap.String("status", rep.Status),
		zap.Duration("duration", rep.Duration()),
	}
	if rep.ID != "" {
		fields = append(fields, zap.String("id", rep.ID))
	}
	if rep.Source != "" {
		fields = append(fields, zap.String("source", rep.Source))
	}
	if rep.ErrorCode != "" {
		fields = append(fields, zap.String("error_code", rep.ErrorCode), zap.String("error_msg", rep.ErrorMsg))
	}
	if rep.Kind == domain.KindNewsList {
		fields = append(fields, zap.Int("items", rep.Items))
	}
	return fields
}

type nopObserver struct{}

func (nopObserver) OnStart(string, string)     {}
func (nopObserver) OnDone(domain.RenderReport) {}
