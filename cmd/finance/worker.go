package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the notification job worker",
		Long: `Process notification jobs. Jobs are consumed from the message broker
when AMQP_URL is set and polled from the database otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.jobWorker().Run(cmd.Context())
		},
	}
}
