package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-consensus/internal/workflow"
)

// Runner executes one analysis request.
type Runner interface {
	Run(ctx context.Context, location, question string) workflow.Result
}

// Scheduler periodically runs the analysis workflow for monitored locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	locations []string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. timeout bounds each location's run.
func New(locations []string, interval, timeout time.Duration, runner Runner) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		locations: locations,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: monitoring %d locations every %dm", len(s.locations), minutes)
	return nil
}

// RunOnce analyzes every monitored location concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	log.Println("scheduler: running weather analysis job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			res := s.runner.Run(ctx, loc, "")
			if !res.Success {
				log.Printf("scheduler: analysis failed for %s (request %s): %s", loc, res.RequestID, res.Message)
			}
		}(loc)
	}
	wg.Wait()
	log.Println("scheduler: completed weather analysis job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
