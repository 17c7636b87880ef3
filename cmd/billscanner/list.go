package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"BillScanner/internal/app"
	"BillScanner/internal/domain"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print tracked bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				collection, err := a.Tracked(ctx)
				if err != nil {
					return fmt.Errorf("load bills: %w", err)
				}
				return renderBills(cmd.OutOrStdout(), collection, domain.AnalysisStatus(status))
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show bills with this analysis status (e.g. needs-analysis)")
	return cmd
}

func renderBills(w io.Writer, collection domain.Collection, status domain.AnalysisStatus) error {
	rows := make([][]string, 0, len(collection.Bills))
	for _, bill := range collection.Bills {
		if status != "" && bill.AnalysisStatus != status {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(bill.ID),
			bill.BillNumber,
			bill.Title,
			string(bill.Priority),
			string(bill.AnalysisStatus),
			bill.DateAdded,
			strings.Join(bill.Committees, "; "),
		})
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No tracked bills.")
		return err
	}

	table := tablewriter.NewTable(w)
	table.Header("ID", "Bill", "Title", "Priority", "Analysis", "Added", "Committees")
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("render bills: %w", err)
	}
	return table.Render()
}
