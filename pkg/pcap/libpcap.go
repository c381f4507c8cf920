//go:build libpcap

package pcap

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

func init() {
	openLibpcap = func(path string) (gopacket.PacketDataSource, func(), error) {
		handle, err := pcap.OpenOffline(path)
		if err != nil {
			return nil, nil, err
		}
		return handle, handle.Close, nil
	}
}
