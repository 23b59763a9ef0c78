package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/blogrender/internal/app"
	"github.com/John-Robertt/blogrender/internal/config"
	"github.com/John-Robertt/blogrender/internal/server"
)

func newServeCmd(st stdio) *cobra.Command {
	var cli config.CLIArgs
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve page templates over HTTP, rendering each page per request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.AddrSet = cmd.Flags().Changed("addr")
			cli.TemplatesSet = cmd.Flags().Changed("templates")

			eff, log, err := loadConfig(st, cli)
			if err != nil {
				fmt.Fprintf(st.Err, "%v\n", err)
				return &exitError{code: exitFail}
			}
			defer func() { _ = log.Sync() }()

			env, err := app.NewEnv(eff, log)
			if err != nil {
				log.Error("init renderer", zap.Error(err))
				return &exitError{code: exitFail}
			}
			log.Info("config",
				zap.String("config", eff.ConfigPath),
				zap.String("anime_source", eff.Anime.Source),
				zap.String("news_source", eff.News.Source),
				zap.String("news_base_url", eff.News.BaseURL),
				zap.Duration("timeout", eff.Timeout),
				zap.String("site", eff.SiteName),
			)

			srv := server.New(eff.Templates, env, log)
			if err := srv.ListenAndServe(cmd.Context(), eff.Addr); err != nil {
				log.Error("serve", zap.Error(err))
				return &exitError{code: exitFail}
			}
			return nil
		},
	}
	f := cmd.Flags()
	addConfigFlag(f, &cli.ConfigPath)
	f.StringVar(&cli.Addr, "addr", config.DefaultAddr, "监听地址")
	f.StringVar(&cli.Templates, "templates", config.DefaultTemplates, "页面模板根目录")
	return cmd
}
