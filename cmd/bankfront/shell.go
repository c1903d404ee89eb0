package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bankfront/internal/client/cli"
	"github.com/spf13/cobra"
)

func runShell(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	e, err := openEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	app, err := cli.NewApp(e.cfg, e.backend, e.logger)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
