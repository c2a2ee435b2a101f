package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// Scheduler runs jobs on cron expressions evaluated in one timezone.
type Scheduler struct {
	cron *cron.Cron
	log  log15.Logger
}

func New(loc *time.Location, log log15.Logger) *Scheduler {
	cl := cronLogger{log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Add registers job under spec. Each run gets its own deadline.
func (s *Scheduler) Add(name, spec string, job func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.log.Info("running scheduled job", "job", name)
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("Add: invalid schedule %q for %s: %w", spec, name, err)
	}
	s.log.Info("job scheduled", "job", name, "spec", spec, "tz", s.cron.Location().String())
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started...")
}

// Stop prevents new runs and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) Entries() []cron.Entry { return s.cron.Entries() }

type cronLogger struct{ log log15.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "err", err)...)
}
