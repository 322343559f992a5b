package protocol

import (
	"errors"
	"testing"
)

func TestControlEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  *Control
	}{
		{"ping", NewPing(1_700_000_000_123)},
		{"pong", NewPong(42)},
		{"close", NewClose(CloseServerShutdown, "server shutting down")},
		{"close_empty", NewClose(CloseNormal, "")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodeControl(EncodeControl(tc.msg))
			if err != nil {
				t.Fatalf("DecodeControl() error = %v", err)
			}
			if *decoded != *tc.msg {
				t.Errorf("DecodeControl() = %+v, want %+v", decoded, tc.msg)
			}
		})
	}
}

func TestDecodeControlErrors(t *testing.T) {
	if _, err := DecodeControl(nil); err == nil {
		t.Error("empty control: expected error")
	}
	if _, err := DecodeControl([]byte{0x10}); !errors.Is(err, ErrInvalidControl) {
		t.Errorf("unknown control: err = %v", err)
	}
	if _, err := DecodeControl([]byte{byte(ControlPing), 0x00}); err == nil {
		t.Error("short ping: expected error")
	}
}

func TestControlStrings(t *testing.T) {
	if ControlClose.String() != "Close" || ControlType(0x77).String() != "Unknown" {
		t.Error("ControlType.String() mismatch")
	}
	if CloseGoingAway.String() != "GoingAway" || CloseReason(0x77).String() != "Unknown" {
		t.Error("CloseReason.String() mismatch")
	}
}
