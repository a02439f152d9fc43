// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"net"
	"testing"
	"time"

	"github.com/bureau-foundation/warden/lib/codec"
	"github.com/bureau-foundation/warden/lib/testutil"
)

func pipePair(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	daemonSide, initSide := net.Pipe()
	conn := NewConn(daemonSide)
	t.Cleanup(func() {
		conn.Close()
		initSide.Close()
	})
	return conn, initSide
}

func TestReadEvent(t *testing.T) {
	conn, initSide := pipePair(t)

	events := make(chan Event, 1)
	readErr := make(chan error, 1)
	go func() {
		event, err := conn.ReadEvent()
		if err != nil {
			readErr <- err
			return
		}
		events <- event
	}()

	encoder := codec.NewEncoder(initSide)
	if err := encoder.Encode(Event{Kind: EventExited, ExitStatus: 137}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	select {
	case event := <-events:
		if event.Kind != EventExited || event.ExitStatus != 137 {
			t.Errorf("event = %+v, want exited/137", event)
		}
	case err := <-readErr:
		t.Fatalf("ReadEvent: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("ReadEvent did not deliver")
	}
}

func TestReadEventRejectsUnknownKind(t *testing.T) {
	conn, initSide := pipePair(t)

	result := make(chan error, 1)
	go func() {
		_, err := conn.ReadEvent()
		result <- err
	}()

	encoder := codec.NewEncoder(initSide)
	if err := encoder.Encode(Event{Kind: "teleported"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if err := testutil.RequireReceive(t, result, 5*time.Second, "read result"); err == nil {
		t.Error("ReadEvent accepted an unknown event kind")
	}
}

func TestSetRunlevel(t *testing.T) {
	conn, initSide := pipePair(t)

	received := make(chan command, 1)
	go func() {
		decoder := codec.NewDecoder(initSide)
		var cmd command
		if err := decoder.Decode(&cmd); err != nil {
			t.Errorf("Decode: %v", err)
			return
		}
		received <- cmd
	}()

	if err := conn.SetRunlevel(3); err != nil {
		t.Fatalf("SetRunlevel: %v", err)
	}

	cmd := testutil.RequireReceive(t, received, 5*time.Second, "command frame")
	if cmd.Name != "set-runlevel" || cmd.Runlevel != 3 {
		t.Errorf("command = %+v, want set-runlevel/3", cmd)
	}
}

func TestCloseUnblocksRead(t *testing.T) {
	conn, _ := pipePair(t)

	result := make(chan error, 1)
	go func() {
		_, err := conn.ReadEvent()
		result <- err
	}()

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := testutil.RequireReceive(t, result, 5*time.Second, "read unblocked"); err == nil {
		t.Error("ReadEvent returned nil after Close")
	}

	// Idempotent.
	if err := conn.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
