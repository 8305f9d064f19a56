package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/scourbot/scour/config"
	"github.com/scourbot/scour/internal/session"
)

// Scheduler fires configured recurring research tasks. Ticks are
// minute-granular; each schedule keeps its own last-fired time.
type Scheduler struct {
	Manager   *session.Manager
	Schedules []config.ScheduleConfig
	Stop      chan struct{}

	mu       sync.Mutex
	lastRun  map[int]time.Time
	logger   *log.Logger
	interval time.Duration
}

func (s *Scheduler) Start() {
	if len(s.Schedules) == 0 {
		return
	}
	s.lastRun = make(map[int]time.Time)
	s.logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	if s.interval <= 0 {
		s.interval = time.Minute
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sched := range s.Schedules {
		var last *time.Time
		if t, ok := s.lastRun[i]; ok {
			last = &t
		}
		if !isDue(sched.Cron, last) {
			continue
		}
		s.lastRun[i] = time.Now()
		s.logger.Printf("firing scheduled task %q", sched.Task)
		s.Manager.Start(sched.Task, sched.MaxResults)
	}
}

// isDue determines whether a schedule with cronSpec should run now given
// its last run time. Supports "@daily", "@hourly", and standard 5-field
// cron expressions; an invalid expression degrades to @daily.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
