// Package order creates orders and moves them through their status
// lifecycle while keeping product stock and user credit consistent.
package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rasa-cafe/notification"
)

const defaultMaxAttempts = 3

// Notifier receives events after a transaction commits.
type Notifier interface {
	SendToUser(userID string, e notification.Event) bool
	Broadcast(e notification.Event, excludeUserID string) int
}

type Engine struct {
	db          *gorm.DB
	notifier    Notifier
	loc         *time.Location
	now         func() time.Time
	maxAttempts int
	log         *zap.Logger
}

type Option func(*Engine)

// WithLocation sets the timezone that order ids and timestamps are taken in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaxAttempts bounds how often a creation is retried after a conflict.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func NewEngine(db *gorm.DB, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		db:          db,
		notifier:    notifier,
		loc:         time.Local,
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// transaction runs fn in a database transaction, rolling back on error or panic.
func (e *Engine) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// forUpdate locks selected rows until the transaction ends on dialects that
// support it. sqlite serializes writers and ignores the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (e *Engine) sendToUser(userID string, ev notification.Event) {
	if e.notifier == nil {
		return
	}
	if !e.notifier.SendToUser(userID, ev) {
		e.log.Debug("event not delivered",
			zap.String("user_id", userID),
			zap.String("type", ev.Type))
	}
}

func (e *Engine) broadcast(ev notification.Event, exclude string) {
	if e.notifier == nil {
		return
	}
	n := e.notifier.Broadcast(ev, exclude)
	e.log.Debug("event broadcast", zap.String("type", ev.Type), zap.Int("recipients", n))
}
