package protocol

import (
	"errors"
	"sort"
)

// EventType identifies the type of client event.
type EventType uint8

const (
	// Keyboard events
	EventKeyDown EventType = 0x20

	// Touch events
	EventTouchStart EventType = 0x40
	EventTouchMove  EventType = 0x41
	EventTouchEnd   EventType = 0x42
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventKeyDown:
		return "KeyDown"
	case EventTouchStart:
		return "TouchStart"
	case EventTouchMove:
		return "TouchMove"
	case EventTouchEnd:
		return "TouchEnd"
	default:
		return "Unknown"
	}
}

// IsTouch reports whether et is one of the touch events.
func (et EventType) IsTouch() bool {
	return et == EventTouchStart || et == EventTouchMove || et == EventTouchEnd
}

// Modifiers represents keyboard modifier keys.
type Modifiers uint8

const (
	ModCtrl  Modifiers = 0x01
	ModShift Modifiers = 0x02
	ModAlt   Modifiers = 0x04
	ModMeta  Modifiers = 0x08
)

// Has returns true if the specified modifier is set.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

// Shortcut reports whether a modifier that turns a key into a browser
// shortcut (ctrl, alt or meta) is held. Shift alone does not count.
func (m Modifiers) Shortcut() bool {
	return m.Has(ModCtrl) || m.Has(ModAlt) || m.Has(ModMeta)
}

// KeyboardEventData is the payload of EventKeyDown.
type KeyboardEventData struct {
	Key       string // e.g. "ArrowLeft"
	Code      string // Physical key, e.g. "ArrowLeft"
	KeyCode   int    // Legacy numeric code, e.g. 37
	Modifiers Modifiers
	Repeat    bool
}

// TouchPoint is one finger position in viewport coordinates.
type TouchPoint struct {
	ID      int
	ClientX int
	ClientY int
}

// TouchEventData is the payload of the touch events.
type TouchEventData struct {
	Touches        []TouchPoint // Fingers still on the surface
	ChangedTouches []TouchPoint // Fingers that changed in this event
	TimeStamp      uint64       // Milliseconds since the page time origin

	// Attrs carries the data-swipe-* attributes of the event target. The
	// client only fills it on touch end.
	Attrs map[string]string
}

// Primary returns the point that drives a single-finger gesture: the first
// current touch, or the first changed touch when none remain (touch end).
func (t *TouchEventData) Primary() (TouchPoint, bool) {
	if len(t.Touches) > 0 {
		return t.Touches[0], true
	}
	if len(t.ChangedTouches) > 0 {
		return t.ChangedTouches[0], true
	}
	return TouchPoint{}, false
}

// Attr implements gesture.Attributes.
func (t *TouchEventData) Attr(name string) (string, bool) {
	v, ok := t.Attrs[name]
	return v, ok
}

// Event is a decoded client event.
type Event struct {
	Seq     uint64
	Type    EventType
	HID     string // Hydration ID of the event target
	Payload any    // *KeyboardEventData or *TouchEventData
}

// Event errors.
var (
	ErrInvalidEventType = errors.New("protocol: invalid event type")
	ErrInvalidPayload   = errors.New("protocol: invalid event payload")
)

// EncodeEvent encodes an event to bytes.
func EncodeEvent(e *Event) ([]byte, error) {
	enc := NewEncoder()
	if err := EncodeEventTo(enc, e); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// EncodeEventTo encodes an event using the provided encoder.
func EncodeEventTo(enc *Encoder, e *Event) error {
	enc.WriteUvarint(e.Seq)
	enc.WriteByte(byte(e.Type))
	enc.WriteString(e.HID)

	switch {
	case e.Type == EventKeyDown:
		data, ok := e.Payload.(*KeyboardEventData)
		if !ok || data == nil {
			return ErrInvalidPayload
		}
		enc.WriteString(data.Key)
		enc.WriteString(data.Code)
		enc.WriteUvarint(uint64(data.KeyCode))
		enc.WriteByte(byte(data.Modifiers))
		enc.WriteBool(data.Repeat)

	case e.Type.IsTouch():
		data, ok := e.Payload.(*TouchEventData)
		if !ok || data == nil {
			return ErrInvalidPayload
		}
		writeTouches(enc, data.Touches)
		writeTouches(enc, data.ChangedTouches)
		enc.WriteUvarint(data.TimeStamp)

		// Sorted so the encoding is deterministic.
		keys := make([]string, 0, len(data.Attrs))
		for k := range data.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		enc.WriteUvarint(uint64(len(keys)))
		for _, k := range keys {
			enc.WriteString(k)
			enc.WriteString(data.Attrs[k])
		}

	default:
		return ErrInvalidEventType
	}
	return nil
}

func writeTouches(enc *Encoder, ts []TouchPoint) {
	enc.WriteUvarint(uint64(len(ts)))
	for _, t := range ts {
		enc.WriteUvarint(uint64(t.ID))
		enc.WriteSvarint(int64(t.ClientX))
		enc.WriteSvarint(int64(t.ClientY))
	}
}

// DecodeEvent decodes an event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	return DecodeEventFrom(NewDecoder(data))
}

// DecodeEventFrom decodes an event from a decoder.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	typeByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	hid, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	e := &Event{Seq: seq, Type: EventType(typeByte), HID: hid}

	switch {
	case e.Type == EventKeyDown:
		kb, err := decodeKeyboard(d)
		if err != nil {
			return nil, err
		}
		e.Payload = kb

	case e.Type.IsTouch():
		td, err := decodeTouch(d)
		if err != nil {
			return nil, err
		}
		e.Payload = td

	default:
		return nil, ErrInvalidEventType
	}
	return e, nil
}

func decodeKeyboard(d *Decoder) (*KeyboardEventData, error) {
	key, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	keyCode, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if keyCode > 0xFFFF {
		return nil, ErrInvalidPayload
	}
	mods, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	repeat, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return &KeyboardEventData{
		Key:       key,
		Code:      code,
		KeyCode:   int(keyCode),
		Modifiers: Modifiers(mods),
		Repeat:    repeat,
	}, nil
}

func decodeTouch(d *Decoder) (*TouchEventData, error) {
	touches, err := readTouches(d)
	if err != nil {
		return nil, err
	}
	changed, err := readTouches(d)
	if err != nil {
		return nil, err
	}
	ts, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	n, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	var attrs map[string]string
	if n > 0 {
		attrs = make(map[string]string, n)
	}
	for i := 0; i < n; i++ {
		k, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		attrs[k] = v
	}
	return &TouchEventData{
		Touches:        touches,
		ChangedTouches: changed,
		TimeStamp:      ts,
		Attrs:          attrs,
	}, nil
}

func readTouches(d *Decoder) ([]TouchPoint, error) {
	n, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ts := make([]TouchPoint, n)
	for i := range ts {
		id, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		x, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		y, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		ts[i] = TouchPoint{ID: int(id), ClientX: int(x), ClientY: int(y)}
	}
	return ts, nil
}
