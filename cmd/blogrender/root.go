package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/blogrender/internal/config"
)

// 退出码：0 成功；1 渲染/配置失败；2 参数错误。
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// stdio 把进程级 IO 收拢成参数，测试可以在进程内驱动 CLI。
type stdio struct {
	Out      io.Writer
	Err      io.Writer
	OutIsTTY bool
	ErrIsTTY bool
	Getwd    func() (string, error)
}

// exitError 携带子命令决定的退出码（已经输出过用户可见的信息）。
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

func execute(ctx context.Context, args []string, st stdio) int {
	root := newRootCmd(st)
	root.SetArgs(args)
	root.SetOut(st.Out)
	root.SetErr(st.Err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra 的参数/flag 错误。
	fmt.Fprintf(st.Err, "参数错误：%v\n", err)
	return exitUsage
}

func newRootCmd(st stdio) *cobra.Command {
	root := &cobra.Command{
		Use:           "blogrender",
		Short:         "Render blog page templates with anime and news data",
		Long:          "blogrender 在服务端把 anime / 新闻数据写入博客页面模板：serve 提供 HTTP 服务，render 渲染单个页面。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(st), newRenderCmd(st))
	return root
}

// addConfigFlag 注册各子命令共用的 --config。
func addConfigFlag(fs *pflag.FlagSet, dst *string) {
	fs.StringVar(dst, "config", "", "配置文件路径（默认读取当前目录下的 "+config.FileName+"，可选）")
}

// newLogger 按配置构造写 stderr 的 zap logger。
// color 仅在 console 格式且 stderr 是终端时启用。
func newLogger(w io.Writer, level, format string, color bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if color {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}

// loadConfig 读取配置并构造 logger；失败时直接把错误写到 stderr。
func loadConfig(st stdio, cli config.CLIArgs) (config.EffectiveConfig, *zap.Logger, error) {
	cwd, err := st.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, nil, &config.Error{Code: config.ErrCodeInvalid, Path: ".", Err: fmt.Errorf("读取当前目录失败：%w", err)}
	}
	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		return config.EffectiveConfig{}, nil, err
	}
	log, err := newLogger(st.Err, eff.LogLevel, eff.LogFormat, st.ErrIsTTY)
	if err != nil {
		return config.EffectiveConfig{}, nil, &config.Error{Code: config.ErrCodeInvalid, Path: eff.ConfigPath, Err: err}
	}
	return eff, log, nil
}
