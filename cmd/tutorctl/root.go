package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"langbot-backend/internal/config"
	"langbot-backend/internal/store"
	"langbot-backend/internal/store/backend"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type cliOptions struct {
	output  string
	verbose bool
}

// newRootCmd assembles the admin CLI. Commands read the same environment
// (and .env file) as the server.
func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:          "tutorctl",
		Short:        "Inspect and maintain the LangBot store",
		Long:         `Administrative commands for the LangBot tutoring backend: schema migration and read-only inspection of users, conversations and messages.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.verbose {
				log.SetOutput(io.Discard)
			}
			if opts.output != outputTable && opts.output != outputJSON {
				return fmt.Errorf("unsupported output %q (want %s or %s)", opts.output, outputTable, outputJSON)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "show configuration and store logs")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUsersCmd(opts))
	root.AddCommand(newConversationsCmd(opts))
	root.AddCommand(newMessagesCmd(opts))
	return root
}

// withStore opens the configured store, runs fn and closes the store.
func withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	st, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  `Open the configured store, which applies the schema for users, conversations and messages.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
				return nil
			})
		},
	}
}

// render prints v as indented JSON or rows as a lipgloss table.
func render(w io.Writer, output string, v interface{}, headers []string, rows [][]string) error {
	if output == outputJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t)
	return nil
}
