// Package capgen builds synthetic Ethernet/IPv4 captures for tests and the pcapgen tool.
package capgen

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"Go2PayloadScan/internal/engine/protocol"
	"Go2PayloadScan/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// SnapLen is the snapshot length written into generated capture headers.
const SnapLen = 65536

var (
	srcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dstMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA}
	srcIP  = net.IP{192, 168, 1, 10}
	dstIP  = net.IP{239, 255, 255, 250}
)

func serialize(ls ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		return nil, fmt.Errorf("failed to serialize layers: %w", err)
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

func baseLayers(proto layers.IPProtocol) (*layers.Ethernet, *layers.IPv4) {
	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: proto, SrcIP: srcIP, DstIP: dstIP}
	return eth, ip
}

// UDP returns an Ethernet/IPv4/UDP frame carrying payload right after the UDP header.
func UDP(payload []byte) ([]byte, error) {
	eth, ip := baseLayers(layers.IPProtocolUDP)
	udp := &layers.UDP{SrcPort: 1900, DstPort: 1900}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}
	return serialize(eth, ip, udp, gopacket.Payload(payload))
}

// TCP returns an Ethernet/IPv4/TCP frame with a 20-byte TCP header followed by payload.
func TCP(payload []byte) ([]byte, error) {
	eth, ip := baseLayers(layers.IPProtocolTCP)
	tcp := &layers.TCP{SrcPort: 49152, DstPort: 80, Seq: 1, PSH: true, ACK: true, Window: 14600}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}
	return serialize(eth, ip, tcp, gopacket.Payload(payload))
}

// AlignUDP prefixes text with filler so that, once wrapped by UDP, text starts exactly
// where the UDP extractor looks for the payload.
func AlignUDP(text string) []byte {
	filler := bytes.Repeat([]byte{'-'}, protocol.UDPPayloadOffset-protocol.UDPHeaderLen)
	return append(filler, text...)
}

// Frame builds a frame whose extracted payload, in the given mode, is exactly text.
func Frame(mode model.Mode, text string) ([]byte, error) {
	if mode == model.ModeTCP {
		return TCP([]byte(text))
	}
	return UDP(AlignUDP(text))
}

// Frames builds one frame per text.
func Frames(mode model.Mode, texts ...string) ([][]byte, error) {
	frames := make([][]byte, 0, len(texts))
	for _, text := range texts {
		f, err := Frame(mode, text)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// WriteCapture writes frames as a classic pcap stream, one millisecond apart starting at start.
func WriteCapture(w io.Writer, frames [][]byte, start time.Time) error {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(SnapLen, layers.LinkTypeEthernet); err != nil {
		return fmt.Errorf("failed to write pcap header: %w", err)
	}
	for i, f := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     start.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(f),
			Length:        len(f),
		}
		if err := pw.WritePacket(ci, f); err != nil {
			return fmt.Errorf("failed to write packet %d: %w", i, err)
		}
	}
	return nil
}
