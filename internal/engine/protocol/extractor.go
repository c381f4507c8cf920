package protocol

import (
	"Go2PayloadScan/internal/model"

	"github.com/google/gopacket/layers"
)

// Header sizes, in bytes.
const (
	EthernetHeaderLen = 14
	MinIPv4HeaderLen  = 20
	UDPHeaderLen      = 8
	MinTCPHeaderLen   = 20

	// UDPPayloadOffset is counted from the end of the IP header. It is fixed and does not
	// consult the UDP length field, so captures carrying IP options are mis-parsed.
	UDPPayloadOffset = 32
)

const (
	ipProtocolField   = 9
	tcpDataOffsetByte = 12
)

// Extract locates the application payload of a raw Ethernet frame.
// Only the first capLen bytes of data are considered. It never panics and never
// mutates data: the result is either a view into data or an invalid reason.
func Extract(data []byte, capLen int, mode model.Mode) model.Payload {
	if capLen > len(data) {
		capLen = len(data)
	}
	if capLen < EthernetHeaderLen {
		return model.Invalid(model.TruncatedEthernet)
	}
	pkt := data[:capLen:capLen]

	ip := pkt[EthernetHeaderLen:]
	if len(ip) < MinIPv4HeaderLen {
		return model.Invalid(model.TruncatedIP)
	}
	ihl := int(ip[0]&0x0f) * 4
	if len(ip) < ihl {
		return model.Invalid(model.TruncatedIPOptions)
	}

	if mode == model.ModeTCP {
		return extractTCP(pkt, EthernetHeaderLen+ihl)
	}
	if layers.IPProtocol(ip[ipProtocolField]) != layers.IPProtocolUDP {
		return model.Invalid(model.WrongProtocol)
	}
	return extractUDP(pkt, EthernetHeaderLen+ihl)
}

func extractUDP(pkt []byte, l4 int) model.Payload {
	if len(pkt)-l4 < UDPHeaderLen {
		return model.Invalid(model.TruncatedUDP)
	}
	off := l4 + UDPPayloadOffset
	if off > len(pkt) {
		off = len(pkt)
	}
	return model.Payload{Offset: off, Data: pkt[off:]}
}

func extractTCP(pkt []byte, l4 int) model.Payload {
	tcp := pkt[l4:]
	if len(tcp) <= tcpDataOffsetByte {
		return model.Invalid(model.TruncatedTCP)
	}
	hl := int(tcp[tcpDataOffsetByte]>>4) * 4
	if hl < MinTCPHeaderLen {
		return model.Invalid(model.MalformedTCPHeader)
	}
	if len(tcp) < hl {
		return model.Invalid(model.TruncatedTCP)
	}
	off := l4 + hl
	return model.Payload{Offset: off, Data: pkt[off:]}
}
