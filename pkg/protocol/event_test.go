package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestEventEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
	}{
		{
			name: "keydown_arrow",
			event: &Event{
				Seq:  1,
				Type: EventKeyDown,
				HID:  "",
				Payload: &KeyboardEventData{
					Key:     "ArrowLeft",
					Code:    "ArrowLeft",
					KeyCode: 37,
				},
			},
		},
		{
			name: "keydown_modified",
			event: &Event{
				Seq:  2,
				Type: EventKeyDown,
				HID:  "h1",
				Payload: &KeyboardEventData{
					Key:       "ArrowDown",
					Code:      "ArrowDown",
					KeyCode:   40,
					Modifiers: ModCtrl | ModShift,
					Repeat:    true,
				},
			},
		},
		{
			name: "touchstart",
			event: &Event{
				Seq:  3,
				Type: EventTouchStart,
				HID:  "h2",
				Payload: &TouchEventData{
					Touches:        []TouchPoint{{ID: 0, ClientX: 300, ClientY: 300}},
					ChangedTouches: []TouchPoint{{ID: 0, ClientX: 300, ClientY: 300}},
					TimeStamp:      1000,
				},
			},
		},
		{
			name: "touchmove_negative_coords",
			event: &Event{
				Seq:  4,
				Type: EventTouchMove,
				HID:  "h2",
				Payload: &TouchEventData{
					Touches:   []TouchPoint{{ID: 7, ClientX: -12, ClientY: 80}},
					TimeStamp: 1100,
				},
			},
		},
		{
			name: "touchend_with_attrs",
			event: &Event{
				Seq:  5,
				Type: EventTouchEnd,
				HID:  "h2",
				Payload: &TouchEventData{
					ChangedTouches: []TouchPoint{{ID: 0, ClientX: 80, ClientY: 300}},
					TimeStamp:      1150,
					Attrs: map[string]string{
						"data-swipe-threshold": "50",
						"data-swipe-timeout":   "900",
					},
				},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeEvent(tc.event)
			if err != nil {
				t.Fatalf("EncodeEvent() error = %v", err)
			}
			decoded, err := DecodeEvent(encoded)
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			if !reflect.DeepEqual(decoded, tc.event) {
				t.Errorf("DecodeEvent() = %+v, want %+v", decoded, tc.event)
			}
		})
	}
}

func TestEncodeEventDeterministic(t *testing.T) {
	e := &Event{
		Type: EventTouchEnd,
		Payload: &TouchEventData{Attrs: map[string]string{
			"b": "2", "a": "1", "c": "3",
		}},
	}
	first, _ := EncodeEvent(e)
	for i := 0; i < 10; i++ {
		again, _ := EncodeEvent(e)
		if string(again) != string(first) {
			t.Fatal("attribute encoding order is not stable")
		}
	}
}

func TestEncodeEventErrors(t *testing.T) {
	if _, err := EncodeEvent(&Event{Type: EventKeyDown}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("missing keyboard payload: err = %v", err)
	}
	if _, err := EncodeEvent(&Event{Type: EventTouchEnd, Payload: &KeyboardEventData{}}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("wrong payload: err = %v", err)
	}
	if _, err := EncodeEvent(&Event{Type: EventType(0x01)}); !errors.Is(err, ErrInvalidEventType) {
		t.Errorf("unknown type: err = %v", err)
	}
}

func TestDecodeEventErrors(t *testing.T) {
	// seq 1, type 0x01 (not supported), empty HID
	if _, err := DecodeEvent([]byte{0x01, 0x01, 0x00}); !errors.Is(err, ErrInvalidEventType) {
		t.Errorf("unknown type: err = %v", err)
	}

	encoded, _ := EncodeEvent(&Event{
		Type:    EventKeyDown,
		Payload: &KeyboardEventData{Key: "ArrowUp", KeyCode: 38},
	})
	for n := 0; n < len(encoded); n++ {
		if _, err := DecodeEvent(encoded[:n]); err == nil {
			t.Errorf("truncated to %d bytes: expected error", n)
		}
	}
}

func TestTouchEventPrimary(t *testing.T) {
	td := &TouchEventData{
		Touches:        []TouchPoint{{ID: 1, ClientX: 10}},
		ChangedTouches: []TouchPoint{{ID: 2, ClientX: 20}},
	}
	if p, ok := td.Primary(); !ok || p.ID != 1 {
		t.Errorf("Primary() = %+v, %v; want current touch", p, ok)
	}
	td.Touches = nil
	if p, ok := td.Primary(); !ok || p.ID != 2 {
		t.Errorf("Primary() = %+v, %v; want changed touch", p, ok)
	}
	td.ChangedTouches = nil
	if _, ok := td.Primary(); ok {
		t.Error("Primary() on empty touch lists reported a point")
	}
}

func TestTouchEventAttr(t *testing.T) {
	td := &TouchEventData{Attrs: map[string]string{"data-swipe-timeout": "900"}}
	if v, ok := td.Attr("data-swipe-timeout"); !ok || v != "900" {
		t.Errorf("Attr() = %q, %v", v, ok)
	}
	if _, ok := td.Attr("data-swipe-threshold"); ok {
		t.Error("Attr() found a missing attribute")
	}
	if _, ok := (&TouchEventData{}).Attr("x"); ok {
		t.Error("Attr() on nil map reported a value")
	}
}

func TestModifiers(t *testing.T) {
	if ModShift.Shortcut() {
		t.Error("shift alone is not a shortcut modifier")
	}
	for _, m := range []Modifiers{ModCtrl, ModAlt, ModMeta, ModShift | ModMeta} {
		if !m.Shortcut() {
			t.Errorf("Modifiers(%x).Shortcut() = false", m)
		}
	}
	if !(ModCtrl | ModAlt).Has(ModAlt) {
		t.Error("Has(ModAlt) = false")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := map[EventType]string{
		EventKeyDown:    "KeyDown",
		EventTouchStart: "TouchStart",
		EventTouchMove:  "TouchMove",
		EventTouchEnd:   "TouchEnd",
		EventType(0x99): "Unknown",
	}
	for et, want := range tests {
		if et.String() != want {
			t.Errorf("EventType(%#x).String() = %q, want %q", uint8(et), et.String(), want)
		}
	}
}
