package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/logging"
	"marquee/internal/model"
	"marquee/internal/server"
	"marquee/internal/session"
	"marquee/internal/users"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			m, err := model.Load(cfg, logger)
			if err != nil {
				return err
			}
			svc, err := api.NewRecommendServiceFromConfig(cfg, m, logger)
			if err != nil {
				return err
			}
			store, err := users.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			srv, err := server.New(cfg, server.Dependencies{
				Recommend: svc,
				Users:     store,
				Sessions:  session.NewManager(cfg.SessionTTL()),
			}, logger)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
