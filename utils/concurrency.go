package utils

import (
	"sync"
	"time"
)

// WorkerPool runs jobs on at most maxWorkers goroutines. Consecutive job starts
// are spaced at least interval apart; the first job starts immediately.
type WorkerPool struct {
	sem      chan struct{}
	interval time.Duration
	wg       sync.WaitGroup

	mu        sync.Mutex
	nextStart time.Time
}

// NewWorkerPool creates a WorkerPool. A maxWorkers below 1 is treated as 1.
func NewWorkerPool(maxWorkers int, interval time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		sem:      make(chan struct{}, maxWorkers),
		interval: interval,
	}
}

// Submit blocks while the pool is full, then runs job on its own goroutine.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.sem <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.sem }()

		if wait := wp.reserveStart(); wait > 0 {
			time.Sleep(wait)
		}
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// reserveStart books the next start slot and returns how long to wait for it.
func (wp *WorkerPool) reserveStart() time.Duration {
	if wp.interval <= 0 {
		return 0
	}
	wp.mu.Lock()
	defer wp.mu.Unlock()

	now := time.Now()
	start := wp.nextStart
	if start.Before(now) {
		start = now
	}
	wp.nextStart = start.Add(wp.interval)
	return start.Sub(now)
}

// KeySet is a set of string keys that is safe for concurrent use.
type KeySet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewKeySet creates an empty KeySet sized for n keys.
func NewKeySet(n int) *KeySet {
	return &KeySet{seen: make(map[string]struct{}, n)}
}

// Add reports whether key was newly added.
func (s *KeySet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}
