package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/crewbase/gangplank/internal/assignment"
	"github.com/crewbase/gangplank/internal/notify"
	"github.com/crewbase/gangplank/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Gangplank API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(configPath string, port int) error {
	cfg, conn, err := openDB(configPath)
	if err != nil {
		return err
	}

	emitter, store, err := buildEmitter(conn, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Notify.DigestCron != "" {
		digest, err := notify.NewDigest(conn, emitter, assignment.Overdue, cfg.Notify.DigestCron)
		if err != nil {
			return err
		}
		digest.Start()
		defer digest.Stop()
	}

	if port == 0 {
		port = cfg.Server.Port
	}
	return server.Start(ctx, server.StartOpts{
		DB:      conn,
		Port:    port,
		Emitter: emitter,
		Store:   store,
	})
}
