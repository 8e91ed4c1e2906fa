package scheduler

import (
	"fmt"
	"log"
	"strings"
	"time"

	"real-estate-site/internal/cleanup"
	"real-estate-site/internal/config"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the nightly orphan image sweep
type Scheduler struct {
	cron      *cron.Cron
	cleanup   *cleanup.Service
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupService *cleanup.Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cleanup: cleanupService,
		config:  cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Cleanup.Enabled {
		log.Println("Scheduler: orphan sweep is disabled in configuration")
		return nil
	}

	cronSpec := parseDailyRunTime(s.config.Cleanup.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: starting orphan image sweep...")
		if err := s.RunNow(); err != nil {
			log.Printf("Scheduler: orphan sweep failed: %v", err)
		} else {
			log.Println("Scheduler: orphan sweep completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: started with daily sweep at %s (cron: %s)", s.config.Cleanup.DailyRunTime, cronSpec)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: stopped")
	}
}

// RunNow executes one sweep with the configured settings
func (s *Scheduler) RunNow() error {
	sweepCfg := cleanup.DefaultSweepConfig()
	if s.config.Cleanup.GraceMinutes > 0 {
		sweepCfg.GracePeriod = time.Duration(s.config.Cleanup.GraceMinutes) * time.Minute
	}
	if s.config.Cleanup.MaxDeletionCount > 0 {
		sweepCfg.MaxDeletionCount = s.config.Cleanup.MaxDeletionCount
	}
	sweepCfg.DryRun = s.config.Cleanup.DryRun

	_, err := s.cleanup.Sweep(sweepCfg)
	return err
}

// parseDailyRunTime converts "HH:MM" into a cron spec, falling back to
// 03:30 on malformed input.
func parseDailyRunTime(runTime string) string {
	parts := strings.SplitN(runTime, ":", 2)
	if len(parts) == 2 {
		var hour, minute int
		if _, err := fmt.Sscanf(runTime, "%d:%d", &hour, &minute); err == nil &&
			hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
			return fmt.Sprintf("%d %d * * *", minute, hour)
		}
	}
	return "30 3 * * *"
}
