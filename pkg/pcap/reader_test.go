package pcap

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Go2PayloadScan/internal/capgen"
	"Go2PayloadScan/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"go.uber.org/zap"
)

func writeTestCapture(t *testing.T, texts ...string) (string, [][]byte) {
	t.Helper()
	frames, err := capgen.Frames(model.ModeUDP, texts...)
	if err != nil {
		t.Fatalf("Failed to build frames: %v", err)
	}
	var buf bytes.Buffer
	if err := capgen.WriteCapture(&buf, frames, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "test.pcap")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return path, frames
}

func TestReader_ReadAll(t *testing.T) {
	path, frames := writeTestCapture(t, "http", "Linux", "NOTIFY")

	reader, err := Open(path, BackendPcapgo)
	if err != nil {
		t.Fatalf("Failed to open capture: %v", err)
	}
	defer reader.Close()

	records := ReadAll(reader, zap.NewNop())
	if len(records) != len(frames) {
		t.Fatalf("Expected to read %d packets, but got %d", len(frames), len(records))
	}
	for i, rec := range records {
		if !bytes.Equal(rec.Data, frames[i]) || rec.CaptureLength != len(frames[i]) {
			t.Errorf("record %d does not match the written frame", i)
		}
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pcap")
	if err := os.WriteFile(garbage, []byte("this is not a capture file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	valid, _ := writeTestCapture(t, "x")

	tests := []struct {
		name    string
		path    string
		backend string
	}{
		{"missing file", filepath.Join(dir, "missing.pcap"), BackendPcapgo},
		{"bad magic", garbage, BackendPcapgo},
		{"unknown backend", valid, "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.path, tt.backend)
			var openErr *model.CaptureOpenError
			if !errors.As(err, &openErr) {
				t.Fatalf("Expected a CaptureOpenError, got %v", err)
			}
			if openErr.Path != tt.path {
				t.Errorf("Expected path %s in error, got %s", tt.path, openErr.Path)
			}
		})
	}
}

func TestNewReader_Pcapng(t *testing.T) {
	frames, err := capgen.Frames(model.ModeTCP, "GET / HTTP/1.1", "LOCATION")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, layers.LinkTypeEthernet)
	if err != nil {
		t.Fatalf("Failed to create pcapng writer: %v", err)
	}
	for _, f := range frames {
		ci := gopacket.CaptureInfo{Timestamp: time.Unix(1700000000, 0), CaptureLength: len(f), Length: len(f)}
		if err := w.WritePacket(ci, f); err != nil {
			t.Fatalf("Failed to write packet: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	reader, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	records := ReadAll(reader, zap.NewNop())
	if len(records) != 2 {
		t.Fatalf("Expected 2 packets from pcapng, got %d", len(records))
	}
	if !bytes.Equal(records[1].Data, frames[1]) {
		t.Errorf("Second record does not match")
	}
}

func TestReadAll_TruncatedTail(t *testing.T) {
	path, frames := writeTestCapture(t, "first", "second")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Cut the last packet in half: the read error ends the stream after the first record.
	cut := data[:len(data)-len(frames[1])/2]
	reader, err := NewReader(bytes.NewReader(cut))
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	records := ReadAll(reader, zap.NewNop())
	if len(records) != 1 {
		t.Errorf("Expected 1 record before the truncated tail, got %d", len(records))
	}

	if _, err := reader.Next(); err == nil {
		t.Error("Expected an error after the end of the stream")
	}
}

func TestReader_EmptyCapture(t *testing.T) {
	var buf bytes.Buffer
	if err := capgen.WriteCapture(&buf, nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	reader, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF from an empty capture, got %v", err)
	}
}
