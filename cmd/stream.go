package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marketpulse/internal/bootstrap"
)

func newStreamCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Serve analysis requests from Kafka or JSON lines on stdin",
		Long: `Stream answers one report envelope per request envelope. With KAFKA_BROKERS
set, requests are read from KAFKA_REQUEST_TOPIC and reports written to
KAFKA_REPORT_TOPIC; otherwise stdin and stdout carry one JSON document per line.
The dictionary reload worker and the metrics endpoint run alongside.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := bootstrap.NewContainer()
			if err := c.InitConfig(root.apply); err != nil {
				return err
			}
			if err := c.InitStream(bootstrap.StdStreams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}); err != nil {
				return err
			}

			// cancel the container when the command context ends (SIGINT/SIGTERM)
			go func() {
				select {
				case <-cmd.Context().Done():
					c.Cancel()
				case <-c.Context.Done():
				}
			}()

			if err := c.Start(); err != nil {
				c.Shutdown()
				return err
			}
			err := c.RunConsumer()

			stats := c.Background.AnalysisSvc.Stats()
			c.Log.Infow("Stream finished",
				"received", humanize.Comma(stats.Received),
				"published", humanize.Comma(stats.Published),
				"failed", humanize.Comma(stats.Failed),
			)
			c.Shutdown()
			return err
		},
	}
}
