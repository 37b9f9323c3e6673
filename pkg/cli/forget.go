package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func forgetCommand() *cli.Command {
	var (
		cfg   config
		force bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "force",
			Aliases:     []string{"f"},
			Usage:       "Skip confirmation",
			Destination: &force,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "forget",
		Usage: "Permanently delete all memories of the user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			if !force {
				return goerr.New("deleting all memories cannot be undone; re-run with --force to proceed")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			result, err := uc.DeleteAll(ctx, cfg.user)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, result)
			return nil
		},
	}
}
