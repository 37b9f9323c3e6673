package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

func rememberCommand() *cli.Command {
	var (
		cfg        config
		importance float64
		category   string
		topics     []string
	)

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "importance",
			Aliases:     []string{"i"},
			Usage:       "Importance score in [0, 1]; higher survives deduplication",
			Value:       0.5,
			Sources:     cli.EnvVars("ENGRAM_IMPORTANCE"),
			Destination: &importance,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Category of the fact (e.g. preferences, personal_info)",
			Value:       "general",
			Sources:     cli.EnvVars("ENGRAM_CATEGORY"),
			Destination: &category,
		},
		&cli.StringSliceFlag{
			Name:        "topic",
			Aliases:     []string{"t"},
			Usage:       "Topic tags for the fact (repeatable)",
			Destination: &topics,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "remember",
		Usage:     "Store a fact in long-term memory",
		ArgsUsage: "<fact>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			content := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if content == "" {
				return goerr.New("fact to remember is required")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			stop := progress("Storing memory...")
			result, err := uc.Add(ctx, cfg.user, memory.AddInput{
				Content:    content,
				Importance: importance,
				Category:   category,
				Topics:     topics,
			})
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, result)
			return nil
		},
	}
}

// progress starts a spinner on stderr when attached to a terminal and
// returns its stop function
func progress(message string) func() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}
