package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs a set of jobs every interval, each run bounded by a timeout.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(interval, timeout time.Duration, jobs ...Job) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		jobs:      jobs,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the jobs and starts the underlying scheduler. The first
// run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		log.Println("scheduler: no jobs configured; nothing to schedule")
		return nil
	}
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce runs every job concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		job := job
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx := context.Background()
			if s.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.timeout)
				defer cancel()
			}

			if err := job.Run(ctx); err != nil {
				log.Printf("scheduler: job %s failed: %v", job.Name, err)
			}
		}()
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
