package cli

import (
	"context"

	"github.com/m-mizutani/engram/pkg/service/mcp"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the memory tools over MCP (stdio)",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			logging.Default().Info("starting MCP server", "user", cfg.user, "bucket", cfg.bucket)

			return mcp.New(uc, cfg.user).Run(ctx)
		},
	}
}
