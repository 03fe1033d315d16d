package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// OverdueFunc returns the currently overdue assignments as (assignmentID,
// userID) pairs. Supplied by the caller so this package stays independent of
// the aggregation logic.
type OverdueFunc func(db *gorm.DB, now time.Time) ([]OverdueAssignment, error)

// OverdueAssignment identifies one overdue assignment for digest delivery.
type OverdueAssignment struct {
	AssignmentID string
	UserID       string
}

// Digest periodically reminds assignees about overdue checklists. Overdue-ness
// stays a read-time predicate; the digest only reads it on a schedule.
type Digest struct {
	db      *gorm.DB
	em      Emitter
	overdue OverdueFunc
	cron    *cron.Cron
}

// NewDigest creates a Digest scheduled by a standard 5-field cron expression.
func NewDigest(db *gorm.DB, em Emitter, overdue OverdueFunc, cronExpr string) (*Digest, error) {
	d := &Digest{db: db, em: em, overdue: overdue, cron: cron.New()}
	if _, err := d.cron.AddFunc(cronExpr, d.run); err != nil {
		return nil, fmt.Errorf("notify: digest cron %q: %w", cronExpr, err)
	}
	return d, nil
}

// Start begins the schedule.
func (d *Digest) Start() { d.cron.Start() }

// Stop halts the schedule and waits for a running digest to finish.
func (d *Digest) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

func (d *Digest) run() {
	if err := d.RunOnce(time.Now()); err != nil {
		slog.Warn("overdue digest failed", "error", err)
	}
}

// RunOnce emits one overdue reminder per overdue assignment as of now.
func (d *Digest) RunOnce(now time.Time) error {
	overdue, err := d.overdue(d.db, now)
	if err != nil {
		return err
	}
	for _, o := range overdue {
		ev := Event{
			TargetUserID: o.UserID,
			Kind:         KindOverdueDigest,
			AssignmentID: o.AssignmentID,
		}
		if err := d.em.Emit(context.Background(), ev); err != nil {
			slog.Warn("overdue reminder failed", "assignment", o.AssignmentID, "error", err)
		}
	}
	return nil
}
