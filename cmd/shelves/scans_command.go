package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type scanRow struct {
	ID         string     `json:"id"`
	Root       string     `json:"root"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Files      int        `json:"files"`
	Tagged     int        `json:"tagged"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

func newScansCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "Show recent library scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				scans, err := a.catalog.RecentScans(runCtx, limit)
				if err != nil {
					return err
				}
				rows := make([]scanRow, 0, len(scans))
				for _, s := range scans {
					row := scanRow{
						ID:        s.ID,
						Root:      s.Root,
						StartedAt: s.StartedAt,
						Files:     s.Files,
						Tagged:    s.Tagged,
						Skipped:   s.Skipped,
						Failed:    s.Failed,
					}
					if s.Finished() {
						finished := s.FinishedAt
						row.FinishedAt = &finished
					}
					rows = append(rows, row)
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded")
					return nil
				}
				table := make([][]string, 0, len(rows))
				for _, row := range rows {
					status := "running"
					if row.FinishedAt != nil {
						status = row.FinishedAt.Sub(row.StartedAt).Round(time.Millisecond).String()
					}
					table = append(table, []string{
						row.StartedAt.Local().Format(time.DateTime),
						row.Root,
						strconv.Itoa(row.Files),
						strconv.Itoa(row.Tagged),
						strconv.Itoa(row.Skipped),
						strconv.Itoa(row.Failed),
						status,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Started", "Root", "Files", "Tagged", "Skipped", "Failed", "Took"},
					table,
					2, 3, 4, 5,
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of scans to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
