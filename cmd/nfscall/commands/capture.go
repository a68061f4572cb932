package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/capture"
	"github.com/marmos91/nfscall/internal/cli/output"
	"github.com/marmos91/nfscall/internal/cli/timeutil"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Inspect calls recorded by the trace server",
}

var (
	captureLimit  int
	capturePath   string
	captureFormat string
)

var captureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded calls, newest first",
	Long: `List the calls recorded by "nfscall trace" with capture.enabled.

The capture store is locked while the trace server runs; stop it first.

Examples:
  nfscall capture list
  nfscall capture list --limit 0 -o json`,
	Args: cobra.NoArgs,
	RunE: runCaptureList,
}

func init() {
	captureListCmd.Flags().IntVarP(&captureLimit, "limit", "n", 20, "maximum records to show (0 for all)")
	captureListCmd.Flags().StringVar(&capturePath, "path", "", "capture store directory (default: capture.path)")
	captureListCmd.Flags().StringVarP(&captureFormat, "output", "o", "table", "output format (table, json, yaml)")
	captureCmd.AddCommand(captureListCmd)
}

// recordList renders capture records as a table.
type recordList struct {
	records []*capture.Record
	now     time.Time
}

func (l recordList) Headers() []string {
	return []string{"TIME", "AGE", "CLIENT", "XID", "PROC", "TARGET", "NAME"}
}

func (l recordList) Rows() [][]string {
	rows := make([][]string, 0, len(l.records))
	for _, r := range l.records {
		rows = append(rows, []string{
			timeutil.FormatLocal(r.Time),
			timeutil.FormatAge(r.Time, l.now),
			r.ClientAddr,
			fmt.Sprintf("%d", r.XID),
			r.Proc,
			r.Target,
			r.Name,
		})
	}
	return rows
}

func runCaptureList(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(captureFormat)
	if err != nil {
		return err
	}

	path := capturePath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Capture.Path
	}

	store, err := capture.OpenBadger(path)
	if err != nil {
		return fmt.Errorf("open capture store %s: %w", path, err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(cmd.Context(), captureLimit)
	if err != nil {
		return err
	}

	p := output.NewPrinter(cmd.OutOrStdout(), format)
	if format == output.FormatTable {
		if len(records) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No calls recorded.")
			return nil
		}
		return p.Print(recordList{records: records, now: time.Now()})
	}
	return p.Print(records)
}
