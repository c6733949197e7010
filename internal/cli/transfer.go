package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tradebook/internal/export"
	"github.com/MrJamesThe3rd/tradebook/internal/importer"
)

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		format string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import trades from a JSON backup, CSV or xlsx file",
		Long: `Import trades from a file. JSON files must be backups written by
"tradebook export --format json". CSV and xlsx files may use the flat export
layout or a hand-kept ledger with headings such as Supplier, Goods, Qty, Rate.

Trades whose id already exists are reported and left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if format == "" {
				format = path
			}

			f, err := importer.ParseFormat(format)
			if err != nil {
				return err
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer file.Close()

			out := cmd.OutOrStdout()

			if dryRun {
				txs, err := rootOpts.app.Importer.Parse(cmd.Context(), f, file)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%d trade(s) would be imported\n", len(txs))

				return writeTable(out, txs)
			}

			result, err := rootOpts.app.Importer.Import(cmd.Context(), f, file)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Imported %d trade(s)\n", len(result.Imported))

			for _, tx := range result.Conflicts {
				fmt.Fprintf(out, "Skipped %s (%s): id already exists\n", tx.ID, tx.Name)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json, csv or xlsx (default: from the file extension)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print without storing")

	return cmd
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filter filterFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected trades as json, csv, xlsx, pdf or a zip bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			c, err := filter.criteria()
			if err != nil {
				return err
			}

			if out == "-" {
				return rootOpts.app.Exporter.Export(cmd.Context(), f, c, cmd.OutOrStdout())
			}

			if out == "" {
				out = f.FileName(time.Now())
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}

			if err := rootOpts.app.Exporter.Export(cmd.Context(), f, c, file); err != nil {
				file.Close()
				os.Remove(out)

				return err
			}

			if err := file.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", out, err)
			}

			slog.Debug("export written", "format", f, "path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)

			return nil
		},
	}

	filter.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, csv, xlsx, pdf or zip")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default: transactions_<date>.<ext>)`)

	return cmd
}

func NewLearnCommand(rootOpts *RootOptions) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "learn <raw-pattern> <preferred-name>",
		Short: "Rewrite imported names containing a pattern to a preferred spelling",
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}

			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				mappings, err := rootOpts.app.Matching.Mappings(cmd.Context())
				if err != nil {
					return err
				}

				for _, m := range mappings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", m.RawPattern, m.PreferredName)
				}

				return nil
			}

			return rootOpts.app.Matching.Learn(cmd.Context(), args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print the learned mappings")

	return cmd
}
