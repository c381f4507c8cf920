package main

import (
	"io"

	"Go2PayloadScan/internal/config"

	"github.com/spf13/cobra"
)

type scatterFlags struct {
	transport string
	natsURL   string
}

func newScatterCmd(g *globalFlags, stdout io.Writer) *cobra.Command {
	flags := &scatterFlags{}

	cmd := &cobra.Command{
		Use:   "scatter <file.pcap> <workers> [tcp|udp]",
		Short: "Partition the capture across ranks and print every payload",
		Long: `Read the whole capture, split it into one contiguous partition per rank
(rank 0 takes the remainder) and send each partition over the configured
transport. Every rank prints the payloads of its packets; nothing is counted.`,
		Example: `  # Four in-process ranks, UDP payloads
  payload-scan scatter capture.pcap 4

  # Ranks connected through a NATS server
  payload-scan scatter capture.pcap 8 tcp --transport nats --nats-url nats://127.0.0.1:4222`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrategy(cmd, args, g, "scatter", stdout, func(cfg *config.Config) {
				if cmd.Flags().Changed("transport") {
					cfg.Scatter.Transport = flags.transport
				}
				if cmd.Flags().Changed("nats-url") {
					cfg.Scatter.NATSURL = flags.natsURL
				}
			})
		},
	}

	cmd.Flags().StringVar(&flags.transport, "transport", "chan", "Partition transport: chan or nats")
	cmd.Flags().StringVar(&flags.natsURL, "nats-url", "nats://127.0.0.1:4222", "NATS server URL for the nats transport")

	return cmd
}
