package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"Go2PayloadScan/internal/engine/impl/scatter"
	"Go2PayloadScan/internal/engine/protocol"
	"Go2PayloadScan/internal/model"
	"Go2PayloadScan/pkg/pcap"

	"go.uber.org/zap"
)

// Prints the extraction outcome of every packet in a capture, for checking offsets by hand.
func main() {
	modeName := flag.String("mode", "udp", "Extraction mode: udp or tcp")
	limit := flag.Int("n", 0, "Stop after this many packets (0 = all)")
	preview := flag.Int("preview", 48, "Payload bytes to show per packet")
	backend := flag.String("backend", pcap.BackendPcapgo, "Capture backend: pcapgo or libpcap")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: go run ./scripts/pcapana [-mode tcp] [-n 10] <path_to_pcap_file>")
		os.Exit(1)
	}
	if *preview < 0 {
		log.Fatalf("-preview must not be negative, got %d", *preview)
	}
	mode, err := model.ParseMode(*modeName)
	if err != nil {
		log.Fatal(err)
	}

	reader, err := pcap.Open(flag.Arg(0), *backend)
	if err != nil {
		log.Fatal(err)
	}
	defer reader.Close()

	records := pcap.ReadAll(reader, zap.NewNop())
	invalid := make(map[model.InvalidReason]int)
	for i, rec := range records {
		if *limit > 0 && i >= *limit {
			break
		}
		p := protocol.Extract(rec.Data, rec.CaptureLength, mode)
		if !p.Valid() {
			invalid[p.Reason]++
			fmt.Printf("[%s] #%d caplen=%d invalid: %s\n", rec.Timestamp.Format("15:04:05.000"), i, rec.CaptureLength, p.Reason)
			continue
		}
		shown := previewBytes(p.Data, *preview)
		fmt.Printf("[%s] #%d caplen=%d offset=%d len=%d %s\n",
			rec.Timestamp.Format("15:04:05.000"), i, rec.CaptureLength, p.Offset, len(p.Data), scatter.Printable(shown))
	}

	fmt.Printf("Total packets: %d\n", len(records))
	for reason, n := range invalid {
		fmt.Printf("  %s: %d\n", reason, n)
	}
}

// previewBytes returns at most n leading bytes of data. A negative n shows nothing.
func previewBytes(data []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if len(data) > n {
		return data[:n]
	}
	return data
}
