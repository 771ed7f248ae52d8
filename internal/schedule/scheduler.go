package schedule

import (
	"fmt"
	"sync"
	"time"
)

// Scheduler runs recurring jobs and one-off jobs bound to a wall-clock time.
// Callbacks run on their own goroutine; the scheduler never retries.
type Scheduler struct {
	clock Clock
	ids   IDGenerator

	mu      sync.Mutex
	timers  map[string]*time.Timer
	tickers []*time.Ticker
	done    chan struct{}
}

func New(clock Clock, ids IDGenerator) *Scheduler {
	return &Scheduler{
		clock:  clock,
		ids:    ids,
		timers: map[string]*time.Timer{},
		done:   make(chan struct{}),
	}
}

// Every runs fn on a fixed interval until Stop.
func (s *Scheduler) Every(interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)

	s.mu.Lock()
	s.tickers = append(s.tickers, ticker)
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-s.done:
				return
			}
		}
	}()
}

// At runs fn once at the given wall-clock time and returns the job ID.
// A time that is not in the future is rejected; no job is created.
func (s *Scheduler) At(when time.Time, fn func()) (string, error) {
	delay := when.Sub(s.clock.Now())
	if delay <= 0 {
		return "", fmt.Errorf("scheduled time %s is in the past", when.Format("2006-01-02 15:04"))
	}

	id := s.ids.New()

	s.mu.Lock()
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
	s.mu.Unlock()

	return id, nil
}

// Stop cancels all pending jobs and the recurring tickers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for _, t := range s.tickers {
		t.Stop()
	}
}

// Pending returns the number of one-off jobs not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
