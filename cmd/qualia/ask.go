package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/qualia/internal/domain"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question in the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
	})
}

func runAsk(ctx context.Context, out io.Writer, question string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	turn, err := a.orchestrator.Submit(ctx, question, func(chunk domain.StreamChunk) {
		if chunk.Type == domain.ChunkThinking && chunk.Step != nil {
			fmt.Fprintf(out, "  … %s\n", chunk.Step.Content)
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n", turn.AssistantMessage.Content)
	if len(turn.SearchResults) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for i, r := range turn.SearchResults {
			fmt.Fprintf(out, "  [%d] %s - %s\n", i+1, r.Title, r.URL)
		}
	}
	if turn.Outcome != nil && turn.Outcome.Mocked() {
		fmt.Fprintf(out, "\n(mock answer: %s)\n", turn.Outcome.Source)
	}
	return nil
}
