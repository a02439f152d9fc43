// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/bureau-foundation/warden/lib/codec"
)

// EventKind names a lifecycle event reported by a domain's init
// process.
type EventKind string

const (
	// EventExited reports that the container init has exited.
	EventExited EventKind = "exited"
	// EventRebooted reports that the container requested a reboot.
	EventRebooted EventKind = "rebooted"
)

// Event is one lifecycle notification from the init process.
type Event struct {
	Kind EventKind `cbor:"kind"`

	// ExitStatus is init's exit status. Meaningful only for
	// EventExited.
	ExitStatus int `cbor:"exit_status,omitempty"`
}

// command is a daemon→init request frame.
type command struct {
	Name     string `cbor:"name"`
	Runlevel int    `cbor:"runlevel,omitempty"`
}

// Conn is a monitor connection. Reads are single-consumer (the
// domain's event loop); writes are serialized internally so command
// senders can share the handle.
type Conn struct {
	conn    net.Conn
	decoder *codec.Decoder

	writeMu sync.Mutex
	encoder *codec.Encoder

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a domain's monitor socket.
func Dial(ctx context.Context, socketPath string) (*Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dialing monitor socket %s: %w", socketPath, err)
	}
	return NewConn(conn), nil
}

// NewConn wraps an established connection. Exposed so tests can use
// net.Pipe.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn:    conn,
		decoder: codec.NewDecoder(conn),
		encoder: codec.NewEncoder(conn),
	}
}

// ReadEvent blocks for the next lifecycle event. On a closed or
// failed connection the error is returned as-is so callers can treat
// it as an end-of-stream marker.
func (c *Conn) ReadEvent() (Event, error) {
	var event Event
	if err := c.decoder.Decode(&event); err != nil {
		return Event{}, err
	}
	switch event.Kind {
	case EventExited, EventRebooted:
		return event, nil
	default:
		return Event{}, fmt.Errorf("monitor sent unknown event kind %q", event.Kind)
	}
}

// SetRunlevel asks init to change its runlevel.
func (c *Conn) SetRunlevel(runlevel int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.encoder.Encode(command{Name: "set-runlevel", Runlevel: runlevel}); err != nil {
		return fmt.Errorf("sending runlevel %d: %w", runlevel, err)
	}
	return nil
}

// Close shuts the connection down. Safe to call more than once and
// from any goroutine; a blocked ReadEvent unblocks with an error.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
