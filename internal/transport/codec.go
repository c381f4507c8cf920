package transport

import (
	"fmt"
	"time"

	"Go2PayloadScan/internal/model"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire layout of a frame, in protobuf encoding:
//
//	frame:  1 rank (varint), 2 last (bool), 3 records (repeated record), 4 abort (string)
//	record: 1 data (bytes), 2 caplen (varint), 3 ts_unix_nano (varint)
const (
	frameRank    protowire.Number = 1
	frameLast    protowire.Number = 2
	frameRecords protowire.Number = 3
	frameAbort   protowire.Number = 4

	recordData   protowire.Number = 1
	recordCapLen protowire.Number = 2
	recordTime   protowire.Number = 3
)

// frameOverhead bounds the bytes a frame needs besides its records.
const frameOverhead = 64

// Frame is one message on the wire. A partition is one or more frames, the final one has Last set.
type Frame struct {
	Rank    int
	Last    bool
	Records []model.PacketRecord
	Abort   string
}

func recordSize(r model.PacketRecord) int {
	n := protowire.SizeTag(recordData) + protowire.SizeBytes(len(r.Data))
	n += protowire.SizeTag(recordCapLen) + protowire.SizeVarint(uint64(r.CaptureLength))
	if !r.Timestamp.IsZero() {
		n += protowire.SizeTag(recordTime) + protowire.SizeVarint(uint64(r.Timestamp.UnixNano()))
	}
	return n
}

func appendRecord(b []byte, r model.PacketRecord) []byte {
	b = protowire.AppendTag(b, recordData, protowire.BytesType)
	b = protowire.AppendBytes(b, r.Data)
	b = protowire.AppendTag(b, recordCapLen, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.CaptureLength))
	// A zero time is outside the UnixNano range; leave the field out so it decodes as zero.
	if !r.Timestamp.IsZero() {
		b = protowire.AppendTag(b, recordTime, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Timestamp.UnixNano()))
	}
	return b
}

// EncodeFrame serializes a frame.
func EncodeFrame(f Frame) []byte {
	size := frameOverhead
	for _, r := range f.Records {
		size += protowire.SizeTag(frameRecords) + protowire.SizeBytes(recordSize(r))
	}
	b := make([]byte, 0, size)

	b = protowire.AppendTag(b, frameRank, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Rank))
	b = protowire.AppendTag(b, frameLast, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(f.Last))
	for _, r := range f.Records {
		b = protowire.AppendTag(b, frameRecords, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(recordSize(r)))
		b = appendRecord(b, r)
	}
	if f.Abort != "" {
		b = protowire.AppendTag(b, frameAbort, protowire.BytesType)
		b = protowire.AppendString(b, f.Abort)
	}
	return b
}

// DecodeFrame parses a frame. Unknown fields are skipped.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Frame{}, fmt.Errorf("failed to decode frame tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == frameRank && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Frame{}, fmt.Errorf("failed to decode rank: %w", protowire.ParseError(n))
			}
			f.Rank = int(v)
			b = b[n:]
		case num == frameLast && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Frame{}, fmt.Errorf("failed to decode last flag: %w", protowire.ParseError(n))
			}
			f.Last = protowire.DecodeBool(v)
			b = b[n:]
		case num == frameRecords && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Frame{}, fmt.Errorf("failed to decode record: %w", protowire.ParseError(n))
			}
			r, err := decodeRecord(v)
			if err != nil {
				return Frame{}, err
			}
			f.Records = append(f.Records, r)
			b = b[n:]
		case num == frameAbort && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Frame{}, fmt.Errorf("failed to decode abort reason: %w", protowire.ParseError(n))
			}
			f.Abort = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Frame{}, fmt.Errorf("failed to skip field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return f, nil
}

func decodeRecord(b []byte) (model.PacketRecord, error) {
	var r model.PacketRecord
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return r, fmt.Errorf("failed to decode record tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == recordData && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return r, fmt.Errorf("failed to decode record data: %w", protowire.ParseError(n))
			}
			r.Data = append([]byte(nil), v...)
			b = b[n:]
		case num == recordCapLen && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return r, fmt.Errorf("failed to decode capture length: %w", protowire.ParseError(n))
			}
			r.CaptureLength = int(v)
			b = b[n:]
		case num == recordTime && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return r, fmt.Errorf("failed to decode timestamp: %w", protowire.ParseError(n))
			}
			r.Timestamp = time.Unix(0, int64(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return r, fmt.Errorf("failed to skip record field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if r.CaptureLength > len(r.Data) {
		r.CaptureLength = len(r.Data)
	}
	return r, nil
}

// SplitFrames cuts a partition into frames whose encoded size stays within limit bytes.
// A partition always yields at least one frame, and only the final frame is marked Last.
// A single record that does not fit on its own still gets a frame of its own.
func SplitFrames(rank int, records []model.PacketRecord, limit int) []Frame {
	var frames []Frame
	cur := Frame{Rank: rank}
	size := frameOverhead
	for _, r := range records {
		rs := protowire.SizeTag(frameRecords) + protowire.SizeBytes(recordSize(r))
		if len(cur.Records) > 0 && size+rs > limit {
			frames = append(frames, cur)
			cur = Frame{Rank: rank}
			size = frameOverhead
		}
		cur.Records = append(cur.Records, r)
		size += rs
	}
	cur.Last = true
	return append(frames, cur)
}
