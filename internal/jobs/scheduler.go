package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps the gocron scheduler with the registrations used by the
// server.
type Scheduler struct {
	s gocron.Scheduler
}

// NewScheduler creates a scheduler running in UTC
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &Scheduler{s: s}, nil
}

// Every registers a job on a fixed interval
func (sc *Scheduler) Every(name string, interval time.Duration, fn func()) error {
	_, err := sc.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
	)
	return err
}

// Cron registers a job on a cron expression
func (sc *Scheduler) Cron(name, expr string, fn func()) error {
	_, err := sc.s.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(fn),
		gocron.WithName(name),
	)
	return err
}

// Start launches the scheduler in the background
func (sc *Scheduler) Start() {
	sc.s.Start()
	log.Printf("⏰ Job scheduler started with %d jobs", len(sc.s.Jobs()))
}

// Stop shuts the scheduler down, waiting for running jobs
func (sc *Scheduler) Stop() error {
	return sc.s.Shutdown()
}
