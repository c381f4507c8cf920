package main

import (
	"io"

	"Go2PayloadScan/internal/config"

	"github.com/spf13/cobra"
)

func newPipelineCmd(g *globalFlags, stdout io.Writer) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "pipeline <file.pcap> <threads> [tcp|udp]",
		Short: "Stream the capture in bounded batches to a pool of matchers",
		Long: `A single producer reads and extracts the capture in batches of --batch-size
packets; the given number of threads match the batches as they are dispatched.`,
		Example: `  payload-scan pipeline capture.pcap 4 --batch-size 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrategy(cmd, args, g, "pipeline", stdout, func(cfg *config.Config) {
				if cmd.Flags().Changed("batch-size") {
					cfg.Pipeline.BatchSize = batchSize
				}
			})
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "Packets per batch")

	return cmd
}
