package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/taste-records-go/internal/models"
)

var (
	staysMinDuration time.Duration
	staysPage        int
	staysPageSize    int
)

var staysCmd = &cobra.Command{
	Use:   "stays",
	Short: "Inspect reported stays",
}

var staysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your reported stays, newest first",
	RunE:  runStaysList,
}

func init() {
	staysListCmd.Flags().DurationVar(&staysMinDuration, "min-duration", 0, "only stays at least this long")
	staysListCmd.Flags().IntVar(&staysPage, "page", 1, "page number")
	staysListCmd.Flags().IntVar(&staysPageSize, "page-size", 20, "stays per page")

	staysCmd.AddCommand(staysListCmd)
	rootCmd.AddCommand(staysCmd)
}

func runStaysList(cmd *cobra.Command, args []string) error {
	c, _, err := requireLogin(cmd.Context())
	if err != nil {
		return err
	}

	resp, err := c.Stays().List(cmd.Context(), models.StayFilter{
		MinDurationMs: staysMinDuration.Milliseconds(),
		Page:          staysPage,
		PageSize:      staysPageSize,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTART\tDURATION\tLAT\tLNG")
	for _, s := range resp.Data {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.6f\t%.6f\n",
			s.ID,
			time.UnixMilli(s.StartTime).Format("2006-01-02 15:04"),
			formatMs(s.DurationMs),
			s.Lat, s.Lng)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d stays\n", resp.Page, resp.TotalPages, resp.Total)
	return nil
}
