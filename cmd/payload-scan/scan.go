package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newScanCmd(g *globalFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:     "scan <file.pcap> <threads> [tcp|udp]",
		Short:   "Load the capture and extract and match it in parallel loops",
		Example: `  payload-scan scan capture.pcap 8 tcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrategy(cmd, args, g, "scan", stdout, nil)
		},
	}
}
