// Package scheduler implements admission control: a global concurrency
// ceiling plus an at-most-one-in-flight rule per user. All counter and
// flag mutations happen under a single mutex inside OnJobArrived,
// OnJobFinished, and the admission sweep; runners are launched only
// after the lock is released.
package scheduler

import (
	"log/slog"
	"sync"

	"github.com/djoldoshevv/Turniti/job"
)

// Queue is the scheduler's view of the per-user queues.
type Queue interface {
	// Dequeue removes and returns the FIFO head of the user's queue,
	// or nil if the queue is empty.
	Dequeue(userID int64) *job.Job
	// Len returns the user's current queue depth.
	Len(userID int64) int
}

// Launcher starts execution of an admitted job. Launch must not block;
// the runner executes the job on its own goroutine and reports back via
// OnJobFinished.
type Launcher interface {
	Launch(j *job.Job)
}

// DefaultCeiling is the default global concurrency ceiling.
const DefaultCeiling = 2

// Scheduler selects which queued job to admit whenever capacity frees
// up. Fairness: no user occupies more than one slot, and every user
// with ready work is eventually serviced (round-robin rotation).
type Scheduler struct {
	mu       sync.Mutex
	queue    Queue
	launcher Launcher
	ceiling  int
	logger   *slog.Logger

	inflight int
	busy     map[int64]bool

	// rotation lists users with potentially ready work in service
	// order. An admitted user moves to the back; users whose queues
	// empty are dropped.
	rotation []int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New creates a Scheduler with the given concurrency ceiling. A ceiling
// below 1 falls back to DefaultCeiling. The ceiling is fixed for the
// scheduler's lifetime.
func New(q Queue, l Launcher, ceiling int, opts ...Option) *Scheduler {
	if ceiling < 1 {
		ceiling = DefaultCeiling
	}
	s := &Scheduler{
		queue:    q,
		launcher: l,
		ceiling:  ceiling,
		logger:   slog.Default(),
		busy:     make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLauncher sets the launcher. Must be called before the first
// OnJobArrived; it exists to break the construction cycle between the
// scheduler and the runner.
func (s *Scheduler) SetLauncher(l Launcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launcher = l
}

// OnJobArrived signals that the user's queue gained an item and
// triggers an admission sweep.
func (s *Scheduler) OnJobArrived(userID int64) {
	s.mu.Lock()
	if !s.inRotation(userID) {
		s.rotation = append(s.rotation, userID)
	}
	admitted := s.sweep()
	s.mu.Unlock()

	s.launch(admitted)
}

// OnJobFinished signals that the user's in-flight job completed on any
// path. It clears the user's in-flight flag, decrements the global
// count, and triggers an admission sweep.
func (s *Scheduler) OnJobFinished(userID int64) {
	s.mu.Lock()
	if !s.busy[userID] {
		// Bookkeeping went inconsistent; affects this user only.
		s.logger.Error("scheduler: finish for user with no in-flight job",
			slog.Int64("user_id", userID),
		)
		s.mu.Unlock()
		return
	}
	delete(s.busy, userID)
	s.inflight--

	admitted := s.sweep()
	s.mu.Unlock()

	s.launch(admitted)
}

// InFlight returns the current global in-flight count.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Busy reports whether the user currently has an in-flight job.
func (s *Scheduler) Busy(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[userID]
}

// sweep admits jobs while capacity remains, scanning the rotation from
// the front. Callers must hold s.mu. Returns the admitted jobs so the
// caller can launch them outside the lock.
func (s *Scheduler) sweep() []*job.Job {
	var admitted []*job.Job

	for s.inflight < s.ceiling {
		idx := -1
		for i, userID := range s.rotation {
			if s.busy[userID] {
				// Defensive: an in-flight user stays queued for a
				// later round.
				continue
			}
			if s.queue.Len(userID) == 0 {
				continue
			}
			idx = i
			break
		}
		if idx == -1 {
			break
		}

		userID := s.rotation[idx]
		j := s.queue.Dequeue(userID)
		if j == nil {
			// Raced with a concurrent drain; drop the stale entry.
			s.rotation = append(s.rotation[:idx], s.rotation[idx+1:]...)
			continue
		}

		s.busy[userID] = true
		s.inflight++
		j.State = job.StateAdmitted

		// Round-robin: the admitted user yields its position.
		s.rotation = append(s.rotation[:idx], s.rotation[idx+1:]...)
		if s.queue.Len(userID) > 0 {
			s.rotation = append(s.rotation, userID)
		}

		admitted = append(admitted, j)
	}

	// Drop users with no remaining work and no in-flight job.
	kept := s.rotation[:0]
	for _, userID := range s.rotation {
		if s.busy[userID] || s.queue.Len(userID) > 0 {
			kept = append(kept, userID)
		}
	}
	s.rotation = kept

	return admitted
}

// launch hands admitted jobs to the runner, outside the lock.
func (s *Scheduler) launch(admitted []*job.Job) {
	for _, j := range admitted {
		s.logger.Debug("job admitted",
			slog.String("job_id", j.ID.String()),
			slog.Int64("user_id", j.UserID),
		)
		s.launcher.Launch(j)
	}
}

// inRotation reports whether the user is already queued for service.
// Callers must hold s.mu.
func (s *Scheduler) inRotation(userID int64) bool {
	for _, u := range s.rotation {
		if u == userID {
			return true
		}
	}
	return false
}
