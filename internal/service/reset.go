package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ResetScheduler clears task progress and restocks the shop on the daily
// and weekly boundaries, running in the application timezone.
type ResetScheduler struct {
	tasks *TaskService
	shop  *ShopService
	cron  *cron.Cron
	loc   *time.Location
	log   *zap.SugaredLogger
}

// NewResetScheduler creates the scheduler. shop may be nil when no
// storefront is running. Start must be called to arm it.
func NewResetScheduler(tasks *TaskService, shop *ShopService, loc *time.Location, log *zap.SugaredLogger) *ResetScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &ResetScheduler{
		tasks: tasks,
		shop:  shop,
		cron:  cron.New(cron.WithLocation(loc)),
		loc:   loc,
		log:   log,
	}
}

// Start registers the midnight jobs and begins scheduling. Daily resets
// fire every midnight; weekly resets fire Monday midnight, after the
// daily job so a Monday gets both buckets fresh.
func (s *ResetScheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * *", s.runDaily); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("1 0 * * 1", s.runWeekly); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infow("reset scheduler started", "timezone", s.loc.String())
	return nil
}

func (s *ResetScheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	day := time.Now().In(s.loc).Format("2006-01-02")
	if err := s.tasks.ResetDaily(ctx, day); err != nil {
		s.log.Errorw("daily reset failed", "error", err)
	}
	if s.shop != nil {
		s.shop.RefreshStock()
	}
}

func (s *ResetScheduler) runWeekly() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	day := time.Now().In(s.loc).Format("2006-01-02")
	if err := s.tasks.ResetWeekly(ctx, day); err != nil {
		s.log.Errorw("weekly reset failed", "error", err)
	}
}

// Stop halts scheduling and waits for running jobs.
func (s *ResetScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Infow("reset scheduler stopped")
}
