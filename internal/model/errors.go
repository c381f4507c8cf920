package model

import "fmt"

// InvalidReason explains why no payload could be extracted from a packet.
// Every reason is non-fatal: the packet simply contributes no matches.
type InvalidReason uint8

const (
	ReasonNone InvalidReason = iota
	TruncatedEthernet
	TruncatedIP
	TruncatedIPOptions
	TruncatedUDP
	TruncatedTCP
	WrongProtocol
	MalformedTCPHeader

	numReasons
)

// NumReasons is the number of distinct reasons, ReasonNone included.
const NumReasons = int(numReasons)

var reasonNames = [NumReasons]string{
	ReasonNone:         "none",
	TruncatedEthernet:  "truncated_ethernet",
	TruncatedIP:        "truncated_ip",
	TruncatedIPOptions: "truncated_ip_options",
	TruncatedUDP:       "truncated_udp",
	TruncatedTCP:       "truncated_tcp",
	WrongProtocol:      "wrong_protocol",
	MalformedTCPHeader: "malformed_tcp_header",
}

func (r InvalidReason) String() string {
	if int(r) < NumReasons {
		return reasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

func (r InvalidReason) Error() string {
	return "invalid packet: " + r.String()
}

// IsTruncated reports whether the packet was cut short before a complete header.
func (r InvalidReason) IsTruncated() bool {
	switch r {
	case TruncatedEthernet, TruncatedIP, TruncatedIPOptions, TruncatedUDP, TruncatedTCP:
		return true
	}
	return false
}

// CaptureOpenError is returned when the capture cannot be opened. It is the only fatal error of a run.
type CaptureOpenError struct {
	Path string
	Err  error
}

func (e *CaptureOpenError) Error() string {
	return fmt.Sprintf("error reading pcap file '%s': %v", e.Path, e.Err)
}

func (e *CaptureOpenError) Unwrap() error {
	return e.Err
}
