// Package scheduler runs named functions on fixed intervals, one
// goroutine per job.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumenboard/lumenboard/internal/logging"
)

// JobFunc is one tick of a scheduled job. The context is canceled when
// the job is removed or the scheduler stops.
type JobFunc func(ctx context.Context)

// JobInfo describes one scheduled job for the admin API.
type JobInfo struct {
	ID       string        `json:"id"`
	Interval time.Duration `json:"interval"`
	NextRun  time.Time     `json:"next_run"`
}

type job struct {
	id       string
	interval time.Duration
	fn       JobFunc
	cancel   context.CancelFunc
	nextRun  atomic.Pointer[time.Time]
}

// Scheduler owns a set of interval jobs. Jobs added before Start are
// launched together; jobs added while running start immediately. All
// methods are safe for concurrent use.
type Scheduler struct {
	logger logging.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &Scheduler{logger: logger, jobs: make(map[string]*job)}
}

// AddJob registers fn to run every interval. Re-adding an ID replaces
// the previous job.
func (s *Scheduler) AddJob(id string, interval time.Duration, fn JobFunc) {
	if interval <= 0 {
		interval = time.Second
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.jobs[id]; ok && old.cancel != nil {
		old.cancel()
	}
	j := &job{id: id, interval: interval, fn: fn}
	s.jobs[id] = j
	s.logger.Infof("scheduler", "job %q scheduled every %s", id, interval)
	if s.running {
		s.launch(j)
	}
}

func (s *Scheduler) RemoveJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return
	}
	if j.cancel != nil {
		j.cancel()
	}
	delete(s.jobs, id)
	s.logger.Infof("scheduler", "job %q removed", id)
}

// Start launches every registered job. The parent context bounds the
// whole scheduler; canceling it is equivalent to Stop.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Errorf("scheduler", "already running")
		return
	}
	s.ctx, s.cancel = context.WithCancel(parent)
	s.running = true
	for _, j := range s.jobs {
		s.launch(j)
	}
	s.logger.Infof("scheduler", "started with %d jobs", len(s.jobs))
}

// launch starts the job goroutine. Caller holds s.mu.
func (s *Scheduler) launch(j *job) {
	ctx, cancel := context.WithCancel(s.ctx)
	j.cancel = cancel
	next := time.Now().Add(j.interval)
	j.nextRun.Store(&next)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runJob(ctx, j)
				next := time.Now().Add(j.interval)
				j.nextRun.Store(&next)
			}
		}
	}()
}

// runJob is the per-tick panic boundary: a panicking job logs and keeps
// its schedule instead of taking the process down.
func (s *Scheduler) runJob(ctx context.Context, j *job) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Errorf("scheduler", "job %q panicked: %v", j.id, rec)
		}
	}()
	j.fn(ctx)
}

// Stop cancels every job and waits for in-flight ticks to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Infof("scheduler", "stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Jobs lists the registered jobs sorted by ID.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{ID: j.id, Interval: j.interval}
		if next := j.nextRun.Load(); next != nil {
			info.NextRun = *next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}
