package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/bankfront/internal/client/cli"
	"github.com/dmitrijs2005/bankfront/internal/client/config"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// env is what every subcommand needing storage starts from.
type env struct {
	cfg     *config.Config
	logger  logging.Logger
	backend *cli.Backend
}

// configArgs turns the persistent flags set on the command line back into
// the short form understood by config.LoadConfig.
func configArgs(fs *pflag.FlagSet) []string {
	args := []string{}
	fs.Visit(func(f *pflag.Flag) {
		args = append(args, "-"+f.Shorthand, f.Value.String())
	})
	return args
}

func loadConfig(cmd *cobra.Command) *config.Config {
	return config.LoadConfig(configArgs(cmd.Root().PersistentFlags()))
}

func openEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	cfg := loadConfig(cmd)

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	b, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, backend: b}, nil
}

func (e *env) Close() error {
	return e.backend.Close()
}
