package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func schedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Scan goal deadlines on the configured interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.deadlineScanner().Run(cmd.Context())
		},
	}
}

func scanDeadlinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan-deadlines",
		Short: "Queue reminders for goals due soon, once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			published, err := a.deadlineScanner().Scan(cmd.Context(), time.Now())
			if err != nil {
				return fmt.Errorf("deadline scan failed: %w", err)
			}

			slog.Info("deadline scan finished", "published", published)
			return nil
		},
	}
}
