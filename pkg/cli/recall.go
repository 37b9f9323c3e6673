package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func recallCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of memories to return (1-20)",
			Value:       5,
			Sources:     cli.EnvVars("ENGRAM_RECALL_LIMIT"),
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "recall",
		Usage:     "Search memories by semantic similarity; without a query, starts an interactive session",
		ArgsUsage: "[query]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query != "" {
				return runQuery(ctx, c.Root().Writer, uc, cfg.user, query, int(limit))
			}

			return runInteractive(ctx, c.Root().Writer, uc, cfg.user, int(limit))
		},
	}
}

func runQuery(ctx context.Context, w io.Writer, uc *memory.UseCase, userKey, query string, limit int) error {
	stop := progress("Searching memories...")
	results, err := uc.Search(ctx, userKey, query, limit)
	stop()
	if err != nil {
		return err
	}

	printResults(w, results)
	return nil
}

// runInteractive reads queries line by line until EOF, interrupt, or
// an exit command
func runInteractive(ctx context.Context, w io.Writer, uc *memory.UseCase, userKey string, limit int) error {
	rl, err := readline.New("engram> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		query := strings.TrimSpace(line)
		switch query {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := runQuery(ctx, w, uc, userKey, query, limit); err != nil {
			return err
		}
	}
}

func printResults(w io.Writer, results []*model.MemoryData) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No memories found\n")
		return
	}

	fmt.Fprintf(w, "Found %d memories:\n\n", len(results))
	for i, data := range results {
		fmt.Fprintf(w, "%d. %s\n", i+1, data.Content)
		fmt.Fprintf(w, "   Category: %s\n", data.Category)
		fmt.Fprintf(w, "   Importance: %.2f\n", data.Importance)
		if len(data.Topics) > 0 {
			fmt.Fprintf(w, "   Topics: %s\n", strings.Join(data.Topics, ", "))
		}
		fmt.Fprintf(w, "\n")
	}
}
