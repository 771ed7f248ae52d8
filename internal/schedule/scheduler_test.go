package schedule

import (
	"testing"
	"time"

	"alibi-backend/internal/testutil"
)

func TestScheduler_AtRejectsPastTime(t *testing.T) {
	clock := testutil.FixedClock()
	s := New(clock, &testutil.StubIDGenerator{})
	defer s.Stop()

	_, err := s.At(clock.Now().Add(-time.Minute), func() {})
	if err == nil {
		t.Fatal("At() with past time expected error")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after rejection", s.Pending())
	}

	_, err = s.At(clock.Now(), func() {})
	if err == nil {
		t.Error("At() with current time expected error")
	}
}

func TestScheduler_AtFiresOnce(t *testing.T) {
	s := New(RealClock{}, &testutil.StubIDGenerator{})
	defer s.Stop()

	fired := make(chan struct{})
	id, err := s.At(time.Now().Add(20*time.Millisecond), func() {
		close(fired)
	})
	if err != nil {
		t.Fatalf("At() error = %v", err)
	}
	if id == "" {
		t.Error("At() returned empty job ID")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after fire, want 0", s.Pending())
	}
}

func TestScheduler_EveryStops(t *testing.T) {
	s := New(RealClock{}, &testutil.StubIDGenerator{})

	ticks := make(chan struct{}, 100)
	s.Every(10*time.Millisecond, func() {
		ticks <- struct{}{}
	})

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("recurring job never ran")
	}

	s.Stop()
	// a second Stop must be safe
	s.Stop()
}

func TestScheduler_StopCancelsPending(t *testing.T) {
	s := New(RealClock{}, &testutil.StubIDGenerator{})

	if _, err := s.At(time.Now().Add(time.Hour), func() {
		t.Error("canceled job ran")
	}); err != nil {
		t.Fatalf("At() error = %v", err)
	}

	s.Stop()
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after Stop, want 0", s.Pending())
	}
}
