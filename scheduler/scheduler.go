// Package scheduler runs the café's periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rasa-cafe/model"
)

const (
	// sequenceRetention is how many past days of order counters are kept.
	sequenceRetention = 7
	pruneAt           = "01:01"
	refillAt          = "00:05"
)

type Jobs struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
	log *zap.Logger
}

func New(db *gorm.DB, loc *time.Location, log *zap.Logger) *Jobs {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Jobs{db: db, loc: loc, now: time.Now, log: log}
}

// PruneSequences deletes per-day order counters older than the retention
// window. Order rows are untouched; ids already issued stay unique because
// allocation skips ids that exist.
func (j *Jobs) PruneSequences(ctx context.Context) (int64, error) {
	cutoff := j.now().In(j.loc).AddDate(0, 0, -sequenceRetention).Format("20060102")
	res := j.db.WithContext(ctx).Where("day < ?", cutoff).Delete(&model.OrderSequence{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune order sequences: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RefillCredits resets every balance to its limit.
func (j *Jobs) RefillCredits(ctx context.Context) (int64, error) {
	res := j.db.WithContext(ctx).Model(&model.User{}).
		Where("credit_balance <> credit_limit").
		Update("credit_balance", gorm.Expr("credit_limit"))
	if res.Error != nil {
		return 0, fmt.Errorf("refill credits: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (j *Jobs) run(ctx context.Context, name string, job func(context.Context) (int64, error)) func() {
	return func() {
		n, err := job(ctx)
		if err != nil {
			j.log.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		j.log.Info("scheduled job finished", zap.String("job", name), zap.Int64("rows", n))
	}
}

// Start schedules the jobs in the café's timezone and blocks until ctx is
// done. The credit refill runs on the first of each month when refill is set.
func (j *Jobs) Start(ctx context.Context, refill bool) error {
	s := gocron.NewScheduler(j.loc)
	if _, err := s.Every(1).Day().At(pruneAt).Do(j.run(ctx, "prune_sequences", j.PruneSequences)); err != nil {
		return fmt.Errorf("schedule sequence pruning: %w", err)
	}
	if refill {
		if _, err := s.Every(1).Month(1).At(refillAt).Do(j.run(ctx, "refill_credits", j.RefillCredits)); err != nil {
			return fmt.Errorf("schedule credit refill: %w", err)
		}
	}

	s.StartAsync()
	j.log.Info("scheduler started", zap.Int("jobs", len(s.Jobs())), zap.Bool("credit_refill", refill))
	<-ctx.Done()
	s.Stop()
	return nil
}
