package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "results",
		Usage: "Browse the results written by the backtest command",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Root folder of the results",
				Value:   "results",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p := tea.NewProgram(NewModel(cmd.String("results")), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("results browser failed: %w", err)
			}

			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
