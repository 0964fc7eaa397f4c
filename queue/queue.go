// Package queue implements the per-user FIFO queues that decouple
// submission order from execution order. Queues are keyed by user id;
// an absent entry is equivalent to an empty queue, and entries are
// pruned as soon as they empty so idle users retain no memory.
package queue

import (
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/djoldoshevv/Turniti/job"
)

// ErrRateLimited is returned by Enqueue when the user submits faster
// than the configured per-user rate.
var ErrRateLimited = errors.New("queue: submission rate limit exceeded")

// userQueue tracks one user's pending jobs in arrival order.
type userQueue struct {
	jobs []*job.Job
}

// Manager holds all per-user queues. It is safe for concurrent use.
// All operations are short and synchronous; nothing blocks under the
// lock.
type Manager struct {
	mu     sync.Mutex
	queues map[int64]*userQueue

	// Per-user submission rate limiting. Zero disables it. Limiter
	// state must outlive queue entries, which are pruned on every
	// drain, so limiters live in their own map.
	submitRate  rate.Limit
	submitBurst int
	limiters    map[int64]*rate.Limiter
}

// Option configures a Manager.
type Option func(*Manager)

// WithSubmitRate enables a per-user token-bucket limit on submissions:
// at most perSecond sustained submissions with the given burst.
func WithSubmitRate(perSecond float64, burst int) Option {
	return func(m *Manager) {
		m.submitRate = rate.Limit(perSecond)
		if burst <= 0 {
			burst = 1
		}
		m.submitBurst = burst
	}
}

// NewManager creates an empty queue manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{queues: make(map[int64]*userQueue)}
	for _, opt := range opts {
		opt(m)
	}
	if m.submitRate > 0 {
		m.limiters = make(map[int64]*rate.Limiter)
	}
	return m
}

// limiter returns the user's submission limiter, creating it on first
// use. Caller holds m.mu.
func (m *Manager) limiter(userID int64) *rate.Limiter {
	l := m.limiters[userID]
	if l == nil {
		l = rate.NewLimiter(m.submitRate, m.submitBurst)
		m.limiters[userID] = l
	}
	return l
}

// Enqueue appends the job to the tail of its owner's queue and returns
// the new queue length. The length is user-visible feedback only; the
// scheduler never consults it.
func (m *Manager) Enqueue(j *job.Job) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitRate > 0 && !m.limiter(j.UserID).Allow() {
		return 0, ErrRateLimited
	}

	q := m.queues[j.UserID]
	if q == nil {
		q = &userQueue{}
		m.queues[j.UserID] = q
	}
	q.jobs = append(q.jobs, j)
	return len(q.jobs), nil
}

// PeekNext returns the FIFO head of the user's queue without removing
// it, or nil if the queue is empty.
func (m *Manager) PeekNext(userID int64) *job.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[userID]
	if q == nil || len(q.jobs) == 0 {
		return nil
	}
	return q.jobs[0]
}

// Dequeue removes and returns the FIFO head of the user's queue, or
// nil if the queue is empty. Emptied entries are pruned.
func (m *Manager) Dequeue(userID int64) *job.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[userID]
	if q == nil || len(q.jobs) == 0 {
		return nil
	}

	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	if len(q.jobs) == 0 {
		delete(m.queues, userID)
	}
	return j
}

// Len returns the user's current queue depth.
func (m *Manager) Len(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[userID]
	if q == nil {
		return 0
	}
	return len(q.jobs)
}

// Users returns a snapshot of user ids with non-empty queues.
func (m *Manager) Users() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.queues))
	for userID := range m.queues {
		ids = append(ids, userID)
	}
	return ids
}
