// Package report implements the report command, which lists, runs and exports
// the field-sales reports without an MCP client.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	platformcmd "github.com/cbta/cbta-mcp/internal/platform/cmd"
	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/services/reporting/export"
	reports "github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage"
	"github.com/cbta/cbta-mcp/internal/services/reporting/storage/backend"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// Options wires the command to its environment.
type Options struct {
	Logger *zap.Logger
	// Open replaces backend.Open.
	Open func(context.Context, backend.Config) (storage.Store, error)
}

type command struct {
	opts    Options
	storage backend.Config
}

// NewRootCommand builds the report command tree. Storage settings come from
// the environment and may be overridden with --db-driver and --db-path.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Open == nil {
		opts.Open = backend.Open
	}
	c := &command{opts: opts}

	root := &cobra.Command{
		Use:           "report",
		Short:         "Run CBTA field-sales reports from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadStorageConfig(cmd)
		},
	}
	root.PersistentFlags().String("db-driver", "", "storage driver: mysql or sqlite (default from DB_DRIVER)")
	root.PersistentFlags().String("db-path", "", "SQLite database path (default from DB_PATH)")

	root.AddCommand(c.listCommand(), c.runCommand(), c.historyCommand(), c.performanceCommand(), c.exportCommand())
	return root
}

func (c *command) loadStorageConfig(cmd *cobra.Command) error {
	if err := platformcmd.ParseConfig(&c.storage); err != nil {
		return err
	}
	if driver, _ := cmd.Flags().GetString("db-driver"); driver != "" {
		c.storage.Driver = driver
	}
	if path, _ := cmd.Flags().GetString("db-path"); path != "" {
		c.storage.Path = path
	}
	return nil
}

// withService opens storage for the duration of fn.
func (c *command) withService(ctx context.Context, fn func(*reports.Service) error) error {
	store, err := c.opts.Open(ctx, c.storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			c.opts.Logger.Warn("close storage", zap.Error(err))
		}
	}()
	return fn(reports.NewService(store, c.opts.Logger))
}

func (c *command) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available reports",
		Args:  cobra.NoArgs,
		// Listing needs no database.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, entry := range reports.Catalog() {
				fmt.Fprintf(out, "%-45s %s\n", entry.Name, entry.Description)
			}
			return nil
		},
	}
}

func (c *command) runCommand() *cobra.Command {
	var format string
	var pretty bool
	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run one report and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != formatMarkdown && format != formatJSON {
				return platformerrors.New(platformerrors.CodeUnsupportedFormat, "--format must be markdown or json")
			}
			return c.withService(cmd.Context(), func(svc *reports.Service) error {
				table, err := svc.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), table)
				}
				return writeMarkdown(cmd.OutOrStdout(), table.Markdown(), pretty)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "output format: markdown or json")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render Markdown for the terminal")
	return cmd
}

func (c *command) historyCommand() *cobra.Command {
	var compare string
	cmd := &cobra.Command{
		Use:   "history <salesman>",
		Short: "Print a salesman's visit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *reports.Service) error {
				var text string
				var err error
				if compare != "" {
					text, err = svc.Comparison(cmd.Context(), args[0], compare)
				} else {
					text, err = svc.HistoryText(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&compare, "compare", "", "second salesman to compare against")
	return cmd
}

func (c *command) performanceCommand() *cobra.Command {
	var start, end string
	var pretty bool
	cmd := &cobra.Command{
		Use:   "performance",
		Short: "Print the best performers of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *reports.Service) error {
				perf, err := svc.BestPerformers(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				return writeMarkdown(cmd.OutOrStdout(), perf.Text(), pretty)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render Markdown for the terminal")
	return cmd
}

func (c *command) exportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [name...]",
		Short: "Export reports to an XLSX workbook, one sheet per report",
		Long:  "Export the named reports, or every report when none is named, to an XLSX workbook.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				return platformerrors.New(platformerrors.CodeArgumentMissing, "--out is required")
			}
			return c.withService(cmd.Context(), func(svc *reports.Service) error {
				sheets, err := export.Collect(cmd.Context(), svc, args)
				if err != nil {
					return err
				}
				return writeWorkbook(out, sheets)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination .xlsx file")
	return cmd
}

func writeWorkbook(path string, sheets []export.Sheet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return export.WriteXLSX(f, sheets)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeMarkdown(w io.Writer, text string, pretty bool) error {
	if pretty {
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		rendered, err := renderer.Render(text)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		text = rendered
	}
	_, err := io.WriteString(w, text)
	return err
}
