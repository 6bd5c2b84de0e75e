package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
	"github.com/doeshing/cmdgen/internal/ports"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(source ContainerSource) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect interaction history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(source),
		newHistoryStatsCommand(source),
		newHistoryFeedbackCommand(source),
		newHistoryExportCommand(source),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(source ContainerSource) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd.Context(), source)
			if err != nil {
				return err
			}
			return ListHistory(cmd.Context(), cmd.OutOrStdout(), store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show (0 for all)")
	return cmd
}

// newHistoryStatsCommand creates the 'history stats' subcommand
func newHistoryStatsCommand(source ContainerSource) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show acceptance rate, ratings and top commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd.Context(), source)
			if err != nil {
				return err
			}
			records, err := store.LoadAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to retrieve history for analysis: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoHistoryRecorded)
				return nil
			}
			stats := helpers.AnalyzeHistory(records, DefaultTopCommands)
			helpers.NewRenderer(cmd.OutOrStdout()).Stats(stats, helpers.DeriveUndoHints(records))
			return nil
		},
	}
}

// newHistoryFeedbackCommand creates the 'history feedback' subcommand
func newHistoryFeedbackCommand(source ContainerSource) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <1-5>",
		Short: "Rate the most recent interaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[0])
			if err != nil || !domain.ValidFeedback(rating) {
				return domain.ErrInvalidFeedback.WithMessagef("rating must be %d-%d, got %q", domain.MinFeedback, domain.MaxFeedback, args[0])
			}
			store, err := historyStore(cmd.Context(), source)
			if err != nil {
				return err
			}
			if err := store.UpdateLastFeedback(cmd.Context(), rating); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded rating %d.\n", rating)
			return nil
		},
	}
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(source ContainerSource) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <path|->",
		Short: "Export history as JSONL or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd.Context(), source)
			if err != nil {
				return err
			}
			if args[0] == "-" {
				return ExportHistory(cmd.Context(), cmd.OutOrStdout(), store, format)
			}
			file, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.SecureFilePermissions)
			if err != nil {
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			if err := ExportHistory(cmd.Context(), file, store, format); err != nil {
				file.Close()
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			return file.Close()
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatJSONL, "Output format (jsonl|yaml)")
	return cmd
}

func historyStore(ctx context.Context, source ContainerSource) (ports.HistoryStore, error) {
	c, err := source(ctx)
	if err != nil {
		return nil, err
	}
	if c.HistoryStore == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return c.HistoryStore, nil
}

// ListHistory prints up to limit records, newest first.
func ListHistory(ctx context.Context, out io.Writer, store ports.HistoryStore, limit int) error {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	renderer := helpers.NewRenderer(out)
	shown := 0
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		renderer.HistoryLine(records[i])
		shown++
	}
	return nil
}

// ExportHistory writes every record to out in the given format.
func ExportHistory(ctx context.Context, out io.Writer, store ports.HistoryStore, format string) error {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(records)
	case FormatJSONL, "":
		w := bufio.NewWriter(out)
		enc := json.NewEncoder(w)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
