package model

import (
	"errors"
	"os"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeUDP, false},
		{"udp", ModeUDP, false},
		{"TCP", ModeTCP, false},
		{"icmp", ModeUDP, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestInvalidReason(t *testing.T) {
	if !TruncatedTCP.IsTruncated() || WrongProtocol.IsTruncated() || MalformedTCPHeader.IsTruncated() {
		t.Error("IsTruncated misclassifies reasons")
	}
	var err error = TruncatedUDP
	if err.Error() != "invalid packet: truncated_udp" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if InvalidReason(200).String() != "reason(200)" {
		t.Errorf("Unexpected name for an unknown reason: %s", InvalidReason(200))
	}
	if Invalid(TruncatedIP).Valid() || !(Payload{}).Valid() {
		t.Error("Valid() disagrees with the reason")
	}
}

func TestCaptureOpenError(t *testing.T) {
	err := error(&CaptureOpenError{Path: "x.pcap", Err: os.ErrNotExist})
	if err.Error() != "error reading pcap file 'x.pcap': file does not exist" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("CaptureOpenError must unwrap to its cause")
	}
}

func TestStats_InvalidTotal(t *testing.T) {
	s := Stats{Invalid: map[InvalidReason]int64{TruncatedIP: 2, WrongProtocol: 5}}
	if s.InvalidTotal() != 7 {
		t.Errorf("Expected 7 invalid packets, got %d", s.InvalidTotal())
	}
}
