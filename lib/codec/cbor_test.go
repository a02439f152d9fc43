// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type testFrame struct {
	Event  string `cbor:"event"`
	Reason int    `cbor:"reason,omitempty"`
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"b": "second", "a": "first", "c": int64(3)}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding produced different bytes:\n%x\n%x", first, second)
	}
}

func TestRoundTrip(t *testing.T) {
	in := testFrame{Event: "exited", Reason: 2}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out testFrame
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestDecodeAnyMapType(t *testing.T) {
	data, err := Marshal(map[string]any{"key": "value"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out any
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", out)
	}
	if m["key"] != "value" {
		t.Errorf("m[key] = %v, want value", m["key"])
	}
}

func TestStreamEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)

	frames := []testFrame{{Event: "rebooted"}, {Event: "exited", Reason: 1}}
	for _, frame := range frames {
		if err := encoder.Encode(frame); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buf)
	for i, want := range frames {
		var got testFrame
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode frame %d: %v", i, err)
		}
		if got != want {
			t.Errorf("frame %d = %+v, want %+v", i, got, want)
		}
	}
}
