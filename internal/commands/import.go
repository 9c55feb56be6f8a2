package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LebsNeo/mrmoney-sub000/internal/export"
	"github.com/LebsNeo/mrmoney-sub000/internal/importer"
	"github.com/LebsNeo/mrmoney-sub000/internal/ingest"
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
	"github.com/LebsNeo/mrmoney-sub000/internal/ota"
)

type scopeFlags struct {
	property     string
	organisation string
}

func (s *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.property, "property", "", "property id the rows belong to (required)")
	cmd.Flags().StringVar(&s.organisation, "organisation", "", "organisation id")
}

func (s *scopeFlags) scope() (model.Scope, error) {
	if err := requireFlag("property", s.property); err != nil {
		return model.Scope{}, err
	}
	return model.Scope{PropertyID: s.property, OrganisationID: s.organisation}, nil
}

func newImportCommand(opts *globalOptions) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements and OTA payout exports",
	}
	importCmd.AddCommand(newImportBankCommand(opts))
	importCmd.AddCommand(newImportForceCommand(opts))
	importCmd.AddCommand(newImportOTACommand(opts))
	importCmd.AddCommand(newImportFormatsCommand())
	return importCmd
}

func newImportBankCommand(opts *globalOptions) *cobra.Command {
	var (
		sf            scopeFlags
		dialect       string
		dryRun        bool
		out           string
		duplicatesOut string
	)

	cmd := &cobra.Command{
		Use:   "bank <file.csv>",
		Short: "Import a bank statement CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := sf.scope()
			if err != nil {
				return err
			}
			if _, err := importer.DefaultRegistry().Lookup(dialect); err != nil {
				return err
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}

			a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.svc.ImportBank(a.ctx, ingest.BankRequest{
				Dialect: dialect,
				Text:    string(text),
				Scope:   scope,
				Source:  filepath.Base(args[0]),
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}

			if err := writeCSV(out, func(w io.Writer) error { return export.WriteTransactions(w, res.Transactions) }); err != nil {
				return err
			}
			if err := writeCSV(duplicatesOut, func(w io.Writer) error { return export.WriteTransactions(w, res.PotentialDuplicates) }); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d transactions, %d potential duplicates, %d unrecognised lines\n",
				res.Dialect, len(res.Transactions), len(res.PotentialDuplicates), len(res.Unrecognised))
			for _, line := range res.Unrecognised {
				a.log.Debug().Str("line", line).Msg("unrecognised")
			}
			if dryRun {
				fmt.Fprintln(w, "Dry run: nothing persisted")
			} else {
				fmt.Fprintf(w, "Persisted %d transactions\n", res.Persisted)
			}
			if len(res.PotentialDuplicates) > 0 && duplicatesOut != "" {
				fmt.Fprintf(w, "Review %s and run `mrmoney import force` to import duplicates\n", duplicatesOut)
			}
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&dialect, "dialect", "", "bank dialect: "+strings.Join(importer.DefaultRegistry().Names(), ", ")+" (or a-e)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and check without persisting")
	cmd.Flags().StringVar(&out, "out", "", "write parsed transactions to this CSV file")
	cmd.Flags().StringVar(&duplicatesOut, "duplicates-out", "", "write potential duplicates to this CSV file")
	_ = cmd.MarkFlagRequired("dialect")

	return cmd
}

func newImportForceCommand(opts *globalOptions) *cobra.Command {
	var sf scopeFlags

	cmd := &cobra.Command{
		Use:   "force <duplicates.csv>",
		Short: "Persist reviewed potential duplicates without checking them again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := sf.scope()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			txns, err := export.ReadTransactions(f)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.svc.ForceImport(a.ctx, scope, txns, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Persisted %d transactions\n", n)
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}

func newImportOTACommand(opts *globalOptions) *cobra.Command {
	var (
		sf       scopeFlags
		platform string
		dryRun   bool
		out      string
	)

	cmd := &cobra.Command{
		Use:   "ota <export.csv>",
		Short: "Import an OTA payout export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ota.DefaultRegistry().Get(platform) == nil {
				return fmt.Errorf("%w: %q (known: %s)", ota.ErrUnknownPlatform, platform, strings.Join(ota.DefaultRegistry().Names(), ", "))
			}
			scope := model.Scope{PropertyID: sf.property, OrganisationID: sf.organisation}
			if !dryRun {
				var err error
				if scope, err = sf.scope(); err != nil {
					return err
				}
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading export: %w", err)
			}

			a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			w := cmd.OutOrStdout()
			var res model.OTAImportResult
			var pr model.PersistResult
			if dryRun {
				res, err = a.svc.ParseOTA(a.ctx, platform, string(text))
				if err != nil {
					return err
				}
			} else {
				outcome, err := a.svc.CommitOTA(a.ctx, ingest.OTARequest{
					Platform: platform, Text: string(text), Scope: scope, Source: filepath.Base(args[0]),
				})
				res, pr = outcome.Import, outcome.Persist
				if err != nil {
					printWarnings(w, pr.Warnings)
					return err
				}
			}

			if err := writeCSV(out, func(w io.Writer) error { return export.WritePayoutItems(w, res.Payouts) }); err != nil {
				return err
			}

			fmt.Fprintf(w, "%s: %d payouts, %d bookings, net %s (gross %s, commission %s, fees %s)\n",
				res.Platform, len(res.Payouts), res.BookingCount,
				res.TotalNet.StringFixed(2), res.TotalGross.StringFixed(2),
				res.TotalCommission.StringFixed(2), res.TotalServiceFees.StringFixed(2))
			if res.PeriodStart != nil && res.PeriodEnd != nil {
				fmt.Fprintf(w, "Period %s to %s\n", res.PeriodStart.Format("2006-01-02"), res.PeriodEnd.Format("2006-01-02"))
			}
			if dryRun {
				printWarnings(w, res.Warnings)
				fmt.Fprintln(w, "Dry run: nothing persisted")
				return nil
			}
			printWarnings(w, pr.Warnings)
			fmt.Fprintf(w, "Persisted %d payouts, %d line-items (%d matched to bookings)\n",
				pr.PayoutsCreated, pr.ItemsCreated, pr.ItemsMatched)
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&platform, "platform", "", "platform: "+strings.Join(ota.DefaultRegistry().Names(), ", ")+" (or a-c)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse without matching or persisting")
	cmd.Flags().StringVar(&out, "out", "", "write payout line-items to this CSV file")
	_ = cmd.MarkFlagRequired("platform")

	return cmd
}

func newImportFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported bank dialects and OTA platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Bank dialects: %s\n", strings.Join(importer.DefaultRegistry().Names(), ", "))
			fmt.Fprintf(w, "OTA platforms: %s\n", strings.Join(ota.DefaultRegistry().Names(), ", "))
			return nil
		},
	}
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}

// writeCSV creates path and hands it to write. An empty path is a no-op.
func writeCSV(path string, write func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
