package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	unsigned := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1 << 32, 1<<64 - 1}
	for _, v := range unsigned {
		e := NewEncoder()
		e.WriteUvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadUvarint()
		if err != nil || got != v {
			t.Errorf("uvarint %d: got %d, err %v", v, got, err)
		}
	}

	signed := []int64{0, -1, 1, -64, 64, -220, 220, -1 << 40}
	for _, v := range signed {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil || got != v {
			t.Errorf("svarint %d: got %d, err %v", v, got, err)
		}
	}
}

func TestVarintWireBytes(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one_byte_max", 127, []byte{0x7F}},
		{"two_bytes", 300, []byte{0xAC, 0x02}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEncoder()
			e.WriteUvarint(tc.v)
			if string(e.Bytes()) != string(tc.want) {
				t.Errorf("WriteUvarint(%d) = %x, want %x", tc.v, e.Bytes(), tc.want)
			}
		})
	}

	e := NewEncoder()
	e.WriteSvarint(-1)
	if e.Bytes()[0] != 0x01 {
		t.Errorf("ZigZag(-1) = %x, want 01", e.Bytes())
	}
}

func TestDecoderShortInput(t *testing.T) {
	if _, err := NewDecoder(nil).ReadByte(); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadByte() err = %v", err)
	}
	if _, err := NewDecoder([]byte{0x80}).ReadUvarint(); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadUvarint() err = %v", err)
	}
	if _, err := NewDecoder([]byte{0x05, 'a'}).ReadString(); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadString() err = %v", err)
	}
	if _, err := NewDecoder([]byte{0x01}).ReadUint16(); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadUint16() err = %v", err)
	}
	if _, err := NewDecoder(make([]byte, 7)).ReadUint64(); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadUint64() err = %v", err)
	}
}

func TestDecoderOverflow(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	if _, err := NewDecoder(buf).ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("ReadUvarint() err = %v, want ErrVarintOverflow", err)
	}
}

func TestDecoderLimits(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxStringLen + 1)
	if _, err := NewDecoder(e.Bytes()).ReadString(); !errors.Is(err, ErrAllocationTooLarge) {
		t.Errorf("ReadString() err = %v, want ErrAllocationTooLarge", err)
	}

	e = NewEncoder()
	e.WriteUvarint(MaxCollectionCount + 1)
	if _, err := NewDecoder(e.Bytes()).ReadCollectionCount(); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("ReadCollectionCount() err = %v, want ErrCollectionTooLarge", err)
	}

	// A count larger than the bytes left cannot be satisfied.
	e = NewEncoder()
	e.WriteUvarint(10)
	if _, err := NewDecoder(e.Bytes()).ReadCollectionCount(); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadCollectionCount() err = %v, want EOF", err)
	}
}

func TestFixedWidthAndStrings(t *testing.T) {
	e := NewEncoder()
	e.WriteUint16(0xBEEF)
	e.WriteUint64(1_700_000_000_000)
	e.WriteString("swiped-left")
	e.WriteBool(true)
	e.WriteBool(false)

	d := NewDecoder(e.Bytes())
	u16, _ := d.ReadUint16()
	u64, _ := d.ReadUint64()
	s, _ := d.ReadString()
	b1, _ := d.ReadBool()
	b2, err := d.ReadBool()
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if u16 != 0xBEEF || u64 != 1_700_000_000_000 || s != "swiped-left" || !b1 || b2 {
		t.Fatalf("got %x %d %q %v %v", u16, u64, s, b1, b2)
	}
	if d.Remaining() != 0 {
		t.Fatalf("Remaining() = %d", d.Remaining())
	}
}
