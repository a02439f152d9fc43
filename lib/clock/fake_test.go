// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNow(t *testing.T) {
	initial := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(initial)

	if got := fake.Now(); !got.Equal(initial) {
		t.Errorf("Now() = %v, want %v", got, initial)
	}

	fake.Advance(90 * time.Second)
	if got := fake.Now(); !got.Equal(initial.Add(90 * time.Second)) {
		t.Errorf("Now() after Advance = %v, want %v", got, initial.Add(90*time.Second))
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ch := fake.After(5 * time.Second)

	select {
	case <-ch:
		t.Fatal("After fired before Advance")
	default:
	}

	fake.Advance(4 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired before its deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-ch:
		want := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
		if !fired.Equal(want) {
			t.Errorf("fire time = %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0", fake.PendingCount())
	}
}

func TestFakeSleepBlocksUntilAdvance(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	done := make(chan struct{})

	go func() {
		fake.Sleep(10 * time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	select {
	case <-done:
		t.Fatal("Sleep returned before Advance")
	default:
	}

	fake.Advance(10 * time.Second)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not return after Advance")
	}
}

func TestFakeAdvanceFiresInDeadlineOrder(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	late := fake.After(3 * time.Second)
	early := fake.After(time.Second)

	fake.Advance(5 * time.Second)

	earlyTime := <-early
	lateTime := <-late
	if !earlyTime.Before(lateTime) {
		t.Errorf("early fired at %v, late at %v; want early < late", earlyTime, lateTime)
	}
}
