package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"restaurant-sync/utils"
)

// DefaultSpec fires every Friday at 01:00.
const DefaultSpec = "0 1 * * 5"

// Scheduler runs jobs on standard five-field cron expressions in a fixed time zone.
// A job that is still running when its next tick (or RunNow) arrives is skipped,
// and a panicking job is logged instead of crashing the process.
type Scheduler struct {
	cron   *cron.Cron
	chain  cron.Chain
	loc    *time.Location
	logger *utils.Logger

	mu   sync.Mutex
	jobs []cron.Job
	wg   sync.WaitGroup
}

func New(loc *time.Location, logger *utils.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithLogger(cl)),
		chain:  cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		loc:    loc,
		logger: logger,
	}
}

// Add registers job under spec and returns the time of its first run.
func (s *Scheduler) Add(spec string, job func()) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}

	wrapped := s.chain.Then(cron.FuncJob(job))
	s.cron.Schedule(sched, wrapped)

	s.mu.Lock()
	s.jobs = append(s.jobs, wrapped)
	s.mu.Unlock()

	return sched.Next(time.Now().In(s.loc)), nil
}

// RunNow starts every registered job once, outside the schedule. The
// skip-if-running guard is shared with scheduled ticks.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	jobs := append([]cron.Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun returns the first activation of spec strictly after from, evaluated in loc.
func NextRun(spec string, loc *time.Location, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return sched.Next(from.In(loc)), nil
}

// cronLogger adapts utils.Logger to cron.Logger.
type cronLogger struct {
	logger *utils.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw("[scheduler] "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw("[scheduler] "+msg, append(keysAndValues, "error", err)...)
}
