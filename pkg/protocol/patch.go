package protocol

import "errors"

// ErrInvalidPatchOp is returned when decoding an unknown patch operation.
var ErrInvalidPatchOp = errors.New("protocol: invalid patch op")

// PatchOp is the type of server to client operation.
type PatchOp uint8

const (
	PatchDispatch PatchOp = 0x20 // Dispatch a CustomEvent on an element
	PatchNavigate PatchOp = 0x30 // Assign window.location
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchDispatch:
		return "Dispatch"
	case PatchNavigate:
		return "Navigate"
	default:
		return "Unknown"
	}
}

// Patch is a single client operation.
//
// For PatchDispatch, HID names the element, Key the event name and Value an
// optional JSON detail. The client dispatches a bubbling, cancelable event.
// For PatchNavigate, Value is the destination URL and Bool selects
// location.replace over assignment.
type Patch struct {
	Op    PatchOp
	HID   string
	Key   string
	Value string
	Bool  bool
}

// PatchesFrame is a sequenced batch of patches.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// NewDispatchPatch creates a Dispatch patch.
func NewDispatchPatch(hid, eventName, detail string) Patch {
	return Patch{Op: PatchDispatch, HID: hid, Key: eventName, Value: detail}
}

// NewNavigatePatch creates a Navigate patch.
func NewNavigatePatch(url string, replace bool) Patch {
	return Patch{Op: PatchNavigate, Value: url, Bool: replace}
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	switch p.Op {
	case PatchDispatch:
		e.WriteString(p.HID)
		e.WriteString(p.Key)
		e.WriteString(p.Value)
	case PatchNavigate:
		e.WriteString(p.Value)
		e.WriteBool(p.Bool)
	}
}

// DecodePatches decodes a patches frame from bytes.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	patches := make([]Patch, count)
	for i := range patches {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}
	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(op)
	switch p.Op {
	case PatchDispatch:
		if p.HID, err = d.ReadString(); err != nil {
			return err
		}
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()
		return err
	case PatchNavigate:
		if p.Value, err = d.ReadString(); err != nil {
			return err
		}
		p.Bool, err = d.ReadBool()
		return err
	default:
		return ErrInvalidPatchOp
	}
}
