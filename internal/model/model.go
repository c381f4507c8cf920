package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the transport header the extractor expects after the IP header.
type Mode uint8

const (
	ModeUDP Mode = iota
	ModeTCP
)

func (m Mode) String() string {
	switch m {
	case ModeTCP:
		return "tcp"
	default:
		return "udp"
	}
}

// ParseMode accepts "udp" or "tcp" (case-insensitive). An empty string yields UDP.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "udp":
		return ModeUDP, nil
	case "tcp":
		return ModeTCP, nil
	default:
		return ModeUDP, fmt.Errorf("unknown protocol mode '%s', expected tcp or udp", s)
	}
}

// PacketRecord holds one packet as it was read from the capture.
// CaptureLength never exceeds len(Data).
type PacketRecord struct {
	Data          []byte
	CaptureLength int
	Timestamp     time.Time
}

// Payload is the application data of a single packet, or the reason it could not be extracted.
// Data is a view into the owning PacketRecord and must be treated as read-only.
type Payload struct {
	Offset int
	Data   []byte
	Reason InvalidReason
}

// Valid reports whether a payload was extracted.
func (p Payload) Valid() bool {
	return p.Reason == ReasonNone
}

// Invalid returns a payload marker carrying the given reason.
func Invalid(reason InvalidReason) Payload {
	return Payload{Reason: reason}
}

// Stats holds the packet-level counters of a run.
type Stats struct {
	Packets int64
	Valid   int64
	Invalid map[InvalidReason]int64
	// Units is the number of partitions or batches whose results were merged.
	Units    int
	RSSBytes uint64
}

// InvalidTotal returns the number of packets for which no payload could be extracted.
func (s Stats) InvalidTotal() int64 {
	var total int64
	for _, n := range s.Invalid {
		total += n
	}
	return total
}

// Result is what a strategy hands back to the manager.
type Result struct {
	// Counts is parallel to the run's pattern list. It is nil for strategies that do not match.
	Counts []int64
	// Lines holds the rendered payloads emitted by the scatter strategy, in rank order.
	Lines [][]byte
	Stats Stats
}

// Report is the final outcome of one run, ready to be written out.
type Report struct {
	Strategy string
	Mode     Mode
	Patterns []string
	Counts   []int64
	Lines    [][]byte
	Stats    Stats
	Elapsed  time.Duration
}
