package pcap

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"Go2PayloadScan/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
	"go.uber.org/zap"
)

// Capture backends.
const (
	BackendPcapgo  = "pcapgo"
	BackendLibpcap = "libpcap"
)

// pcapngMagic is the block type of a pcapng Section Header Block. It reads the same in both byte orders.
const pcapngMagic = 0x0A0D0D0A

// openLibpcap is set by the libpcap build of this package.
var openLibpcap func(path string) (gopacket.PacketDataSource, func(), error)

// Reader reads packet records sequentially from a capture. It implements model.Source.
type Reader struct {
	src    gopacket.PacketDataSource
	closer func()
}

// Open opens the capture at path with the given backend.
// Any failure is returned as a *model.CaptureOpenError.
func Open(path, backend string) (*Reader, error) {
	switch backend {
	case "", BackendPcapgo:
		f, err := os.Open(path)
		if err != nil {
			return nil, &model.CaptureOpenError{Path: path, Err: err}
		}
		r, err := NewReader(f)
		if err != nil {
			f.Close()
			return nil, &model.CaptureOpenError{Path: path, Err: err}
		}
		r.closer = func() { f.Close() }
		return r, nil
	case BackendLibpcap:
		if openLibpcap == nil {
			return nil, &model.CaptureOpenError{Path: path, Err: errors.New("libpcap backend not available, build with -tags libpcap")}
		}
		src, closer, err := openLibpcap(path)
		if err != nil {
			return nil, &model.CaptureOpenError{Path: path, Err: err}
		}
		return &Reader{src: src, closer: closer}, nil
	default:
		return nil, &model.CaptureOpenError{Path: path, Err: fmt.Errorf("unknown capture backend '%s'", backend)}
	}
}

// NewReader reads a classic pcap or a pcapng stream, chosen by its leading magic number.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(4); err == nil && binary.LittleEndian.Uint32(magic) == pcapngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to read pcapng header: %w", err)
		}
		return &Reader{src: ng}, nil
	}
	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}
	return &Reader{src: pr}, nil
}

// Next returns the next record, or io.EOF at the end of the capture.
func (r *Reader) Next() (model.PacketRecord, error) {
	data, ci, err := r.src.ReadPacketData()
	if err != nil {
		return model.PacketRecord{}, err
	}
	capLen := ci.CaptureLength
	if capLen > len(data) || capLen < 0 {
		capLen = len(data)
	}
	return model.PacketRecord{Data: data, CaptureLength: capLen, Timestamp: ci.Timestamp}, nil
}

// Close releases the underlying file or handle.
func (r *Reader) Close() {
	if r.closer != nil {
		r.closer()
		r.closer = nil
	}
}

// ReadAll drains src. A read error other than io.EOF ends the stream early and is logged
// as a warning; the records read so far are still returned.
func ReadAll(src model.Source, logger *zap.Logger) []model.PacketRecord {
	var records []model.PacketRecord
	for {
		rec, err := src.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("capture read stopped early", zap.Int("records", len(records)), zap.Error(err))
			}
			return records
		}
		records = append(records, rec)
	}
}
