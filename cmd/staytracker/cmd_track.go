package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/taste-records-go/internal/client"
	"github.com/jengzang/taste-records-go/internal/geolocation"
	"github.com/jengzang/taste-records-go/internal/stay"
)

var (
	trackInput   string
	trackRadius  float64
	trackDwell   time.Duration
	trackWait    time.Duration
	trackMaxAge  time.Duration
	trackDryRun  bool
	trackNoHiAcc bool
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Detect stays from a position feed and report them",
	Long: `Read positions as newline-delimited JSON and report every stay.

Each line is a position or a recorded error:

  {"coords":{"latitude":37.5665,"longitude":126.978},"timestamp":1700000000000}
  {"error":{"code":1,"message":"User denied Geolocation"}}

Tracking ends when the input is exhausted or on Ctrl-C. Reports still in
flight are waited for before exit. Failed reports are logged and dropped.`,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVarP(&trackInput, "input", "i", "-", "position feed file, - for stdin")
	trackCmd.Flags().Float64Var(&trackRadius, "radius", cfg.StayRadiusMeters, "stay radius in meters")
	trackCmd.Flags().DurationVar(&trackDwell, "dwell", cfg.StayDwellThreshold, "time within the radius that makes a stay")
	trackCmd.Flags().DurationVar(&trackWait, "position-timeout", geolocation.DefaultWatchOptions().Timeout, "report a timeout when no position arrives within this time")
	trackCmd.Flags().DurationVar(&trackMaxAge, "max-age", geolocation.DefaultWatchOptions().MaximumAge, "maximum age of a cached position")
	trackCmd.Flags().BoolVar(&trackNoHiAcc, "low-accuracy", false, "do not request high accuracy positions")
	trackCmd.Flags().BoolVar(&trackDryRun, "dry-run", false, "print stays instead of sending them")

	rootCmd.AddCommand(trackCmd)
}

func openInput(cmd *cobra.Command) (io.ReadCloser, error) {
	if trackInput == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(trackInput)
	if err != nil {
		return nil, fmt.Errorf("open position feed: %w", err)
	}
	return f, nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var reporter stay.Reporter
	if trackDryRun {
		reporter = stay.ReporterFunc(func(context.Context, stay.Report) error { return nil })
	} else {
		c, _, err := requireLogin(ctx)
		if err != nil {
			return err
		}
		reporter = client.NewStayReporter(c)
	}

	in, err := openInput(cmd)
	if err != nil {
		return err
	}
	defer in.Close()

	tracker, err := stay.NewTracker(geolocation.NewReaderSource(in), reporter, stay.TrackerOptions{
		Config: stay.Config{RadiusMeters: trackRadius, DwellThreshold: trackDwell},
		WatchOptions: geolocation.WatchOptions{
			EnableHighAccuracy: !trackNoHiAcc,
			MaximumAge:         trackMaxAge,
			Timeout:            trackWait,
		},
		Logger: logger,
		OnMessage: func(msg string) {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		},
		OnReport: func(r stay.Report) {
			fmt.Fprintf(out, "stay at %.6f,%.6f from %s for %s\n",
				r.Lat, r.Lng,
				time.UnixMilli(r.StartTimeMs).Format(time.RFC3339),
				formatMs(r.EndTimeMs-r.StartTimeMs))
		},
	})
	if err != nil {
		return err
	}

	if err := tracker.Start(ctx); err != nil {
		return err
	}

	select {
	case <-tracker.Done():
		logger.Info("Position feed ended")
	case <-ctx.Done():
		logger.Info("Interrupted")
	}
	tracker.Stop()
	tracker.Wait()
	return nil
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}
