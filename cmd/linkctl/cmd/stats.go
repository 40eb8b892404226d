package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
	"github.com/templui/securedocs/internal/service"
)

func StatsCmd() *cobra.Command {
	var (
		documentID string
		since      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print access counters and recent outcomes for a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			analytics := service.NewAnalyticsService(repository.NewAnalyticsRepository(database))
			summary, err := analytics.Summary(documentID, time.Now().Add(-since))
			if err != nil {
				return fmt.Errorf("loading stats: %w", err)
			}

			printSummary(cmd.OutOrStdout(), summary, since)
			return nil
		},
	}

	cmd.Flags().StringVar(&documentID, "doc", "", "document id")
	cmd.Flags().DurationVar(&since, "since", 30*24*time.Hour, "window for outcome counts")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func printSummary(out io.Writer, s *model.AccessSummary, since time.Duration) {
	fmt.Fprintf(out, "document:  %s\n", s.DocumentID)
	fmt.Fprintf(out, "views:     %d\n", s.Counters.Views)
	fmt.Fprintf(out, "downloads: %d\n", s.Counters.Downloads)
	fmt.Fprintf(out, "\nlast %s:\n", since)
	for _, action := range []model.Action{model.ActionView, model.ActionDownload} {
		fmt.Fprintf(out, "  %-8s allowed %d, denied %d\n", action, s.Allowed[action], s.Denied[action])
	}
	fmt.Fprintf(out, "  unique IPs %d\n", s.UniqueIPs)
	if s.LastAccess != nil {
		fmt.Fprintf(out, "  last access %s\n", s.LastAccess.UTC().Format(time.RFC3339))
	}
}
