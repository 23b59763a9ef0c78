package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/app"
	"github.com/John-Robertt/blogrender/internal/config"
	"github.com/John-Robertt/blogrender/internal/domain"
	"github.com/John-Robertt/blogrender/internal/infra/fsx"
	"github.com/John-Robertt/blogrender/internal/server"
)

type renderArgs struct {
	PageURL  string
	Template string
	Out      string
	Force    bool
	Config   string
}

func newRenderCmd(st stdio) *cobra.Command {
	var ra renderArgs
	cmd := &cobra.Command{
		Use:   "render <page-url>",
		Short: "Render one page URL against a template file",
		Long: `render 按 page-url 的路径与 query（?id= / ?news=）渲染 --template 指定的页面。

不带 --out 时 HTML 写到 stdout；带 --out 时原子写入文件，已存在则需要 --force。
带 --out 且 stdout 不是终端时，stdout 只输出一个 RenderReport JSON。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ra.PageURL = args[0]
			rep := runRender(cmd, st, ra)
			emitReport(st, ra, rep)
			if !rep.OK() {
				return &exitError{code: exitFail}
			}
			return nil
		},
	}
	f := cmd.Flags()
	addConfigFlag(f, &ra.Config)
	f.StringVar(&ra.Template, "template", "", "页面模板文件（必填）")
	f.StringVar(&ra.Out, "out", "", "输出文件（默认写到 stdout）")
	f.BoolVar(&ra.Force, "force", false, "允许覆盖已存在的 --out 文件")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

// runRender 总是返回一个已 Finalize 的 report；失败信息写在 report 里。
func runRender(cmd *cobra.Command, st stdio, ra renderArgs) domain.RenderReport {
	started := time.Now()
	fail := func(code string, err error) domain.RenderReport {
		rep := domain.RenderReport{
			PageURL:    ra.PageURL,
			Status:     domain.StatusFailed,
			ErrorCode:  code,
			ErrorMsg:   err.Error(),
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
		rep.Finalize()
		return rep
	}

	pageURL, err := parsePageURL(ra.PageURL)
	if err != nil {
		return fail(config.ErrCodeInvalid, err)
	}

	eff, log, err := loadConfig(st, config.CLIArgs{ConfigPath: ra.Config})
	if err != nil {
		return fail(config.Code(err), err)
	}
	defer func() { _ = log.Sync() }()

	env, err := app.NewEnv(eff, log)
	if err != nil {
		code := config.Code(err)
		if code == "" {
			code = config.ErrCodeInvalid
		}
		return fail(code, err)
	}

	tmpl, err := os.ReadFile(ra.Template)
	if err != nil {
		return fail(domain.ErrCodeTemplateFailed, fmt.Errorf("读取模板失败：%w", err))
	}
	out, reps, err := server.RenderPage(cmd.Context(), env, tmpl, pageURL)
	if err != nil {
		return fail(domain.ErrCodeTemplateFailed, err)
	}
	rep := primaryReport(reps, pageURL.String(), started)

	if ra.Out == "" {
		if _, err := fmt.Fprint(st.Out, out); err != nil {
			return fail(domain.ErrCodeOutputWriteFailed, err)
		}
		return rep
	}
	if err := fsx.WriteFile(ra.Out, []byte(out), ra.Force); err != nil {
		code := domain.ErrCodeOutputWriteFailed
		if fsx.IsConflict(err) {
			code = domain.ErrCodeOutputConflict
		}
		log.Error("write output", zap.String("out", ra.Out), zap.Error(err))
		failed := fail(code, err)
		failed.Kind, failed.ID, failed.Source = rep.Kind, rep.ID, rep.Source
		return failed
	}
	return rep
}

// primaryReport 把页面上所有渲染器的结果收敛为一个：优先返回第一个失败的。
// 页面上没有任何容器时返回 skipped。
func primaryReport(reps []domain.RenderReport, pageURL string, started time.Time) domain.RenderReport {
	for _, r := range reps {
		if !r.OK() {
			return r
		}
	}
	if len(reps) > 0 {
		return reps[0]
	}
	rep := domain.RenderReport{
		PageURL:    pageURL,
		Status:     domain.StatusSkipped,
		ErrorCode:  domain.ErrCodeMissingContainer,
		ErrorMsg:   "页面上没有可渲染的容器",
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	rep.Finalize()
	return rep
}

func parsePageURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("page-url 无效：%w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("page-url 必须是完整 URL（含 scheme 与 host）：%q", raw)
	}
	return u, nil
}

// emitReport 输出最终结果。
//
// 带 --out 且 stdout 非 TTY：stdout 必须且仅输出一个 RenderReport JSON（摘要走 stderr）。
// 其它情况 stdout 要么是 HTML，要么是终端，report 只以摘要形式写到 stderr。
func emitReport(st stdio, ra renderArgs, rep domain.RenderReport) {
	if ra.Out != "" && !st.OutIsTTY {
		enc := json.NewEncoder(st.Out)
		_ = enc.Encode(rep)
	}
	fmt.Fprintf(st.Err, "完成：kind=%s status=%s", orDash(rep.Kind), rep.Status)
	if rep.ID != "" {
		fmt.Fprintf(st.Err, " id=%s", rep.ID)
	}
	if rep.Kind == domain.KindNewsList {
		fmt.Fprintf(st.Err, " items=%d", rep.Items)
	}
	fmt.Fprintln(st.Err)
	if rep.ErrorCode != "" && !rep.OK() {
		fmt.Fprintf(st.Err, "%s: %s\n", rep.ErrorCode, rep.ErrorMsg)
	}
	if ra.Out != "" && rep.ErrorCode != domain.ErrCodeOutputConflict && rep.ErrorCode != domain.ErrCodeOutputWriteFailed && st.ErrIsTTY {
		fmt.Fprintf(st.Err, "out: %s\n", ra.Out)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
