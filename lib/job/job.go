// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/warden/lib/clock"
)

// Kind classifies a job by what it may do to domain runtime state.
type Kind int

const (
	// KindNone is the rest state: no job active. Zero so that a
	// zero-valued Object starts idle.
	KindNone Kind = iota
	// KindQuery reads runtime state without changing it.
	KindQuery
	// KindDestroy tears the domain down. Queued destroys are admitted
	// ahead of other waiters so teardown cannot be starved.
	KindDestroy
	// KindModify may change runtime state.
	KindModify
)

// String returns the kind name used in logs and errors.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindQuery:
		return "query"
	case KindDestroy:
		return "destroy"
	case KindModify:
		return "modify"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DefaultAcquireTimeout bounds how long Begin waits for the slot
// before giving up with ErrTimeout.
const DefaultAcquireTimeout = 30 * time.Second

var (
	// ErrTimeout means admission was not granted within the acquire
	// timeout. The slot state is unchanged. This is a busy/retryable
	// condition, distinct from hard failures: callers may retry the
	// whole operation.
	ErrTimeout = errors.New("job: timed out waiting for job slot")

	// ErrDomainGone means the domain was removed before or while the
	// request was queued.
	ErrDomainGone = errors.New("job: domain is gone")

	// ErrWrongOwner means End was called through a handle that does
	// not hold the slot: the job was already ended, or the handle
	// belongs to a different acquisition. Always a programming error;
	// it is logged and the slot is left untouched.
	ErrWrongOwner = errors.New("job: ended by non-owner")
)

// Options configures an Object. The zero value selects the real
// clock, the default acquire timeout, and the default logger.
type Options struct {
	// AcquireTimeout bounds the wait in Begin. Zero means
	// DefaultAcquireTimeout.
	AcquireTimeout time.Duration

	// Clock supplies the timeout timer. Zero means clock.Real().
	// Tests inject clock.Fake() to drive timeouts deterministically.
	Clock clock.Clock

	// Logger receives ownership-violation and timeout reports. Zero
	// means slog.Default().
	Logger *slog.Logger
}

// Object is the per-domain job slot. At most one job is active at any
// instant; owner identifies the acquisition holding it (meaningful
// only while active != KindNone). Blocked acquisitions park on their
// own grant channel in arrival order, destroys queued separately so
// release can admit them first.
type Object struct {
	mu sync.Mutex

	active Kind
	owner  uint64

	queue        []*waiter // waiting query/modify, arrival order
	destroyQueue []*waiter // waiting destroy, arrival order

	// gone marks the domain as removed: all waiters fail and future
	// Begin calls fail with ErrDomainGone. The active job, if any,
	// may still End.
	gone bool

	// nextTicket numbers acquisitions; ticket 0 is never issued, so
	// a zero owner always means "nobody".
	nextTicket uint64

	name           string
	acquireTimeout time.Duration
	clock          clock.Clock
	logger         *slog.Logger
}

// waiter is one blocked Begin call. The grant channel is buffered so
// release never blocks handing over the slot; it is closed (without a
// value) when the domain goes away.
type waiter struct {
	kind    Kind
	granted chan *Job
}

// Job is the handle returned by a successful Begin. Ending the job
// through its handle is the only way to release the slot; the handle
// records which acquisition it belongs to, so stale or foreign End
// calls are detected instead of corrupting the slot.
type Job struct {
	object *Object
	kind   Kind
	ticket uint64
}

// Kind returns the kind the job was admitted as.
func (j *Job) Kind() Kind { return j.kind }

// New creates a job slot for the named domain. The name appears in
// log records and error messages only.
func New(name string, options Options) *Object {
	if options.AcquireTimeout == 0 {
		options.AcquireTimeout = DefaultAcquireTimeout
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Object{
		name:           name,
		acquireTimeout: options.AcquireTimeout,
		clock:          options.Clock,
		logger:         options.Logger,
	}
}

// Active returns the currently active kind and its owner ticket.
// KindNone and ticket 0 mean the slot is idle.
func (o *Object) Active() (Kind, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active, o.owner
}

// Gone reports whether the domain has been marked removed.
func (o *Object) Gone() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gone
}

// Begin acquires a job of the given kind, blocking until the slot is
// free or the acquire timeout elapses. On success the caller owns
// exclusive access to the domain's runtime state until it calls End
// on the returned handle.
//
// A timed-out or failed Begin leaves the slot state unchanged. There
// is no cancellation of a blocked Begin other than the timeout.
func (o *Object) Begin(kind Kind) (*Job, error) {
	if kind == KindNone {
		return nil, fmt.Errorf("job: Begin(%s) on domain %s", kind, o.name)
	}

	o.mu.Lock()
	if o.gone {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: domain %s", ErrDomainGone, o.name)
	}
	if o.admissibleLocked(kind) {
		j := o.admitLocked(kind)
		o.mu.Unlock()
		return j, nil
	}

	w := &waiter{kind: kind, granted: make(chan *Job, 1)}
	if kind == KindDestroy {
		o.destroyQueue = append(o.destroyQueue, w)
	} else {
		o.queue = append(o.queue, w)
	}
	o.mu.Unlock()

	expired := o.clock.After(o.acquireTimeout)
	select {
	case j, ok := <-w.granted:
		if !ok {
			return nil, fmt.Errorf("%w: domain %s removed while waiting", ErrDomainGone, o.name)
		}
		return j, nil

	case <-expired:
		o.mu.Lock()
		// The grant may have raced the timer: if the slot was handed
		// to us in the meantime, pass it on to the next waiter; if
		// the domain went away, report that instead.
		select {
		case _, ok := <-w.granted:
			if !ok {
				o.mu.Unlock()
				return nil, fmt.Errorf("%w: domain %s removed while waiting", ErrDomainGone, o.name)
			}
			// Admitted just as the timer fired; the caller still gets
			// the timeout, so hand the slot straight to the next
			// waiter.
			o.releaseLocked()
		default:
			o.removeWaiterLocked(w)
		}
		o.mu.Unlock()

		o.logger.Warn("job acquire timed out",
			"domain", o.name,
			"kind", kind.String(),
			"timeout", o.acquireTimeout,
		)
		return nil, fmt.Errorf("%w: %s job on domain %s after %v",
			ErrTimeout, kind, o.name, o.acquireTimeout)
	}
}

// End releases the job. Only the handle returned by the admitting
// Begin may end it; any other handle (already ended, or a different
// acquisition) gets ErrWrongOwner and the slot is left untouched.
// Release admits the next waiter, destroys first.
func (j *Job) End() error {
	o := j.object
	o.mu.Lock()
	if o.active == KindNone || o.owner != j.ticket {
		active, owner := o.active, o.owner
		o.mu.Unlock()
		o.logger.Error("job ended by stale or foreign handle",
			"domain", o.name,
			"handle_kind", j.kind.String(),
			"handle_ticket", j.ticket,
			"active", active.String(),
			"owner", owner,
		)
		return fmt.Errorf("%w: %s job ticket %d on domain %s (active %s, owner %d)",
			ErrWrongOwner, j.kind, j.ticket, o.name, active, owner)
	}
	o.releaseLocked()
	o.mu.Unlock()
	return nil
}

// MarkGone marks the domain as removed: every queued waiter fails
// with ErrDomainGone, and so does every future Begin. An active job
// is unaffected and may still End normally (its holder needs to
// finish touching the state it owns).
func (o *Object) MarkGone() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gone {
		return
	}
	o.gone = true
	for _, w := range o.destroyQueue {
		close(w.granted)
	}
	for _, w := range o.queue {
		close(w.granted)
	}
	o.destroyQueue = nil
	o.queue = nil
}

// admissibleLocked reports whether a new request of the given kind
// may take the slot right now. A free slot is admissible unless
// destroys are queued, in which case only a destroy may jump in.
func (o *Object) admissibleLocked(kind Kind) bool {
	if o.active != KindNone {
		return false
	}
	return kind == KindDestroy || len(o.destroyQueue) == 0
}

// admitLocked takes the slot for a new acquisition of the given kind.
func (o *Object) admitLocked(kind Kind) *Job {
	o.nextTicket++
	o.active = kind
	o.owner = o.nextTicket
	return &Job{object: o, kind: kind, ticket: o.nextTicket}
}

// releaseLocked frees the slot and hands it to the next eligible
// waiter: the oldest queued destroy if any, else the oldest queued
// query/modify.
func (o *Object) releaseLocked() {
	o.active = KindNone
	o.owner = 0

	var w *waiter
	if len(o.destroyQueue) > 0 {
		w = o.destroyQueue[0]
		o.destroyQueue = o.destroyQueue[1:]
	} else if len(o.queue) > 0 {
		w = o.queue[0]
		o.queue = o.queue[1:]
	}
	if w != nil {
		w.granted <- o.admitLocked(w.kind)
	}
}

// removeWaiterLocked drops w from whichever queue holds it. No-op if
// the waiter was already granted or the queues were cleared.
func (o *Object) removeWaiterLocked(w *waiter) {
	remove := func(queue []*waiter) []*waiter {
		for i, candidate := range queue {
			if candidate == w {
				return append(queue[:i], queue[i+1:]...)
			}
		}
		return queue
	}
	if w.kind == KindDestroy {
		o.destroyQueue = remove(o.destroyQueue)
	} else {
		o.queue = remove(o.queue)
	}
}
