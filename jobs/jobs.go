// Package jobs runs the storefront's periodic housekeeping on a cron
// schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/telemetry"
)

const jobTimeout = 2 * time.Minute

// Scheduler wraps a cron runner whose jobs take a context and report errors.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}

func NewScheduler(log *zap.Logger) *Scheduler {
	cl := cronLogger{s: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Add schedules job under spec (standard five-field cron or a descriptor
// such as "@hourly").
func (s *Scheduler) Add(spec, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.log.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// ExpireCoupons deactivates active coupons whose validity ended before now.
func ExpireCoupons(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&models.Coupon{}).
		Where("is_active = ? AND valid_until < ?", true, now).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("expire coupons: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CouponSweep is the scheduled form of ExpireCoupons.
func CouponSweep(db *gorm.DB, metrics *telemetry.Metrics, log *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n, err := ExpireCoupons(ctx, db, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("expired coupons deactivated", zap.Int64("count", n))
			metrics.CouponsExpired(ctx, n)
		}
		return nil
	}
}
