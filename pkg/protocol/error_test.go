package protocol

import "testing"

func TestErrorMessageEncodeDecode(t *testing.T) {
	tests := []*ErrorMessage{
		NewError(ErrRateLimited, "event queue full"),
		NewFatalError(ErrInvalidFrame, "bad header"),
		NewError(ErrUnknown, ""),
	}
	for _, em := range tests {
		decoded, err := DecodeErrorMessage(EncodeErrorMessage(em))
		if err != nil {
			t.Fatalf("DecodeErrorMessage() error = %v", err)
		}
		if *decoded != *em {
			t.Errorf("DecodeErrorMessage() = %+v, want %+v", decoded, em)
		}
	}
}

func TestErrorMessageError(t *testing.T) {
	if got := NewError(ErrRateLimited, "slow down").Error(); got != "RateLimited: slow down" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewFatalError(ErrServerError, "boom").Error(); got != "fatal: ServerError: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrInvalidFrame:   "InvalidFrame",
		ErrInvalidEvent:   "InvalidEvent",
		ErrSessionExpired: "SessionExpired",
		ErrRateLimited:    "RateLimited",
		ErrServerError:    "ServerError",
		ErrorCode(0x0999): "Unknown",
	}
	for ec, want := range tests {
		if ec.String() != want {
			t.Errorf("ErrorCode(%#x).String() = %q, want %q", uint16(ec), ec.String(), want)
		}
	}
}
