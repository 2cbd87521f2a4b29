package appstore

import (
	"errors"
	"sync"
	"time"
)

// manualClock is a Scheduler driven by Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, firing due callbacks in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// recordingStorage wraps a map and records every write.
type recordingStorage struct {
	mu      sync.Mutex
	m       map[string]string
	writes  []string
	getErr  error
	failSet bool
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{m: map[string]string{}}
}

var errDiskFull = errors.New("quota exceeded")

func (r *recordingStorage) Get(key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return "", false, r.getErr
	}
	v, ok := r.m[key]
	return v, ok, nil
}

func (r *recordingStorage) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSet {
		return errDiskFull
	}
	r.m[key] = value
	r.writes = append(r.writes, value)
	return nil
}

func (r *recordingStorage) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

func (r *recordingStorage) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}
