// Package progress owns per-item completion records and the verification
// state machine that gates who may move them.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crewbase/gangplank/internal/directory"
	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/notify"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// State is the effective state of a progress item once the template-level
// verification requirement is taken into account. The stored row keeps
// verification pending for templates that skip verification; readers go
// through EffectiveState instead of interpreting the raw fields.
type State string

const (
	StateNotCompleted     State = "not_completed"
	StateCompletedPending State = "completed_pending"
	StateCompleted        State = "completed"
	StateApproved         State = "approved"
	StateRejected         State = "rejected"
)

// EffectiveState derives the state of a progress item.
func EffectiveState(p *models.ChecklistProgressItem, requiresVerification bool) State {
	if !p.IsCompleted {
		return StateNotCompleted
	}
	if !requiresVerification {
		return StateCompleted
	}
	switch p.VerificationStatus {
	case models.VerificationApproved:
		return StateApproved
	case models.VerificationRejected:
		return StateRejected
	default:
		return StateCompletedPending
	}
}

// lockForUpdate adds a row lock on dialects that support it. SQLite (used in
// tests) serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// loaded bundles a progress row with the rows that gate its transitions.
type loaded struct {
	progress   models.ChecklistProgressItem
	item       models.ChecklistItem
	assignment models.ChecklistAssignment
	template   models.ChecklistTemplate
}

// load fetches the progress row (locked) plus its item, assignment, and
// template.
func load(tx *gorm.DB, progressID uint) (*loaded, error) {
	var l loaded
	if err := lockForUpdate(tx).Where("id = ?", progressID).First(&l.progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("progress: not found: %d", progressID)
		}
		return nil, fmt.Errorf("progress: get %d: %w", progressID, err)
	}
	if err := tx.Where("id = ?", l.progress.ItemID).First(&l.item).Error; err != nil {
		return nil, fmt.Errorf("progress: load item %s: %w", l.progress.ItemID, err)
	}
	if err := tx.Where("id = ?", l.progress.AssignmentID).First(&l.assignment).Error; err != nil {
		return nil, fmt.Errorf("progress: load assignment %s: %w", l.progress.AssignmentID, err)
	}
	if err := tx.Where("id = ?", l.assignment.TemplateID).First(&l.template).Error; err != nil {
		return nil, fmt.Errorf("progress: load template %s: %w", l.assignment.TemplateID, err)
	}
	return &l, nil
}

// assigneeOf resolves the user behind an item's assignment. Assignments never
// change hands, so the directory reads that depend on this can run before the
// locked unit instead of holding a second connection open inside it.
func assigneeOf(db *gorm.DB, progressID uint) (string, error) {
	var p models.ChecklistProgressItem
	if err := db.Select("assignment_id").Where("id = ?", progressID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fault.NotFound("progress: not found: %d", progressID)
		}
		return "", fmt.Errorf("progress: get %d: %w", progressID, err)
	}
	var a models.ChecklistAssignment
	if err := db.Select("user_id").Where("id = ?", p.AssignmentID).First(&a).Error; err != nil {
		return "", fmt.Errorf("progress: load assignment %s: %w", p.AssignmentID, err)
	}
	return a.UserID, nil
}

// Get retrieves a progress item by ID.
func Get(db *gorm.DB, id uint) (*models.ChecklistProgressItem, error) {
	var p models.ChecklistProgressItem
	if err := db.Preload("Item").Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("progress: not found: %d", id)
		}
		return nil, fmt.Errorf("progress: get %d: %w", id, err)
	}
	return &p, nil
}

// CompletionOpts holds parameters for toggling an item's completion.
type CompletionOpts struct {
	ProgressID uint
	ActorID    string
	Completed  bool
	Notes      string
}

// SetCompletion marks an item complete or incomplete as one atomic
// read-modify-write. Employee-controlled items accept only the assignee;
// HR-controlled items accept only a verifying role, for whom completion and
// verification collapse into a single action. Uncompleting always resets the
// verification fields. The counterpart role is notified of the transition.
func SetCompletion(db *gorm.DB, em notify.Emitter, dir directory.Directory, opts CompletionOpts) (*models.ChecklistProgressItem, error) {
	if opts.ActorID == "" {
		return nil, fault.Invalid("progress: actor is required")
	}

	assigneeID, err := assigneeOf(db, opts.ProgressID)
	if err != nil {
		return nil, err
	}
	actor, assignee, err := resolveActors(dir, opts.ActorID, assigneeID)
	if err != nil {
		return nil, err
	}

	var (
		updated models.ChecklistProgressItem
		ev      *notify.Event
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		l, err := load(tx, opts.ProgressID)
		if err != nil {
			return err
		}

		collapse := false
		switch l.item.ControlledBy {
		case models.ControlEmployee:
			if actor.ID != l.assignment.UserID {
				return fault.Forbidden("progress: item %s is employee-controlled; only the assignee may toggle it", l.item.ID)
			}
		case models.ControlHR:
			if !directory.CanVerify(actor, assignee) {
				return fault.Forbidden("progress: item %s is HR-controlled; a verifying role must complete it", l.item.ID)
			}
			collapse = true
		case models.ControlBoth:
			if actor.ID != l.assignment.UserID && !directory.CanVerify(actor, assignee) {
				return fault.Forbidden("progress: %s may not toggle item %s", actor.ID, l.item.ID)
			}
		default:
			return fault.Invalid("progress: item %s has unknown controlled_by %q", l.item.ID, l.item.ControlledBy)
		}

		if l.progress.IsCompleted == opts.Completed {
			updated = l.progress
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{
			"is_completed": opts.Completed,
		}
		if opts.Completed {
			updates["completed_at"] = now
			if opts.Notes != "" {
				updates["notes"] = opts.Notes
			}
			if collapse {
				updates["verification_status"] = models.VerificationApproved
				updates["verified_by"] = actor.ID
				updates["verified_at"] = now
			}
		} else {
			// Uncompleting invalidates any prior verification.
			updates["completed_at"] = nil
			updates["verification_status"] = models.VerificationPending
			updates["verified_by"] = ""
			updates["verified_at"] = nil
			updates["verification_notes"] = ""
		}
		if err := tx.Model(&models.ChecklistProgressItem{}).Where("id = ?", opts.ProgressID).Updates(updates).Error; err != nil {
			return fmt.Errorf("progress: update %d: %w", opts.ProgressID, err)
		}
		if err := tx.Where("id = ?", opts.ProgressID).First(&updated).Error; err != nil {
			return fmt.Errorf("progress: reload %d: %w", opts.ProgressID, err)
		}

		ev = completionEvent(l, actor, assignee, opts, collapse)
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(em, ev)
	return &updated, nil
}

// completionEvent builds the transition notification for a completion toggle,
// or nil when no counterpart can be resolved.
func completionEvent(l *loaded, actor, assignee *directory.Profile, opts CompletionOpts, collapse bool) *notify.Event {
	ev := notify.Event{
		AssignmentID: l.assignment.ID,
		ItemID:       l.item.ID,
		ActorID:      actor.ID,
		Note:         opts.Notes,
	}
	switch {
	case collapse:
		// HR completed on the employee's behalf; tell the employee.
		ev.TargetUserID = l.assignment.UserID
		ev.Kind = notify.KindItemApproved
		ev.NewState = string(StateApproved)
	case opts.Completed:
		// Employee completed; requesting verification from the supervisor.
		ev.TargetUserID = assignee.SupervisorID
		ev.Kind = notify.KindItemCompleted
		ev.NewState = string(EffectiveState(&models.ChecklistProgressItem{IsCompleted: true}, l.template.RequiresVerification))
	default:
		ev.TargetUserID = assignee.SupervisorID
		ev.Kind = notify.KindItemUncompleted
		ev.NewState = string(StateNotCompleted)
	}
	if ev.TargetUserID == "" {
		return nil
	}
	return &ev
}

// VerifyOpts holds parameters for a verification decision.
type VerifyOpts struct {
	ProgressID uint
	ActorID    string
	Approve    bool
	Notes      string
}

// Verify records an approval or rejection on a completed item. Only a role
// with supervisory authority over the assignee may verify, and never the
// assignee themself. A decision is final while the item stays completed:
// verifying an item that is not completed, already carries a decision, or
// belongs to a template that skips verification is a conflict. The assignee
// is notified of the decision.
func Verify(db *gorm.DB, em notify.Emitter, dir directory.Directory, opts VerifyOpts) (*models.ChecklistProgressItem, error) {
	if opts.ActorID == "" {
		return nil, fault.Invalid("progress: actor is required")
	}

	assigneeID, err := assigneeOf(db, opts.ProgressID)
	if err != nil {
		return nil, err
	}
	actor, assignee, err := resolveActors(dir, opts.ActorID, assigneeID)
	if err != nil {
		return nil, err
	}
	if actor.ID == assignee.ID {
		return nil, fault.Forbidden("progress: %s may not verify their own item", actor.ID)
	}
	if !directory.CanVerify(actor, assignee) {
		return nil, fault.Forbidden("progress: %s lacks supervisory authority over %s", actor.ID, assignee.ID)
	}

	var (
		updated models.ChecklistProgressItem
		ev      *notify.Event
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		l, err := load(tx, opts.ProgressID)
		if err != nil {
			return err
		}

		if !l.template.RequiresVerification {
			return fault.Conflict("progress: template %s does not require verification", l.template.ID)
		}
		if !l.progress.IsCompleted {
			return fault.Conflict("progress: item %d is not completed; nothing to verify", opts.ProgressID)
		}
		if l.progress.VerificationStatus != models.VerificationPending {
			return fault.Conflict("progress: item %d already has a %s decision; uncomplete it to reopen",
				opts.ProgressID, l.progress.VerificationStatus)
		}

		status := models.VerificationRejected
		if opts.Approve {
			status = models.VerificationApproved
		}
		now := time.Now()
		updates := map[string]interface{}{
			"verification_status": status,
			"verified_by":         actor.ID,
			"verified_at":         now,
			"verification_notes":  opts.Notes,
		}
		if err := tx.Model(&models.ChecklistProgressItem{}).Where("id = ?", opts.ProgressID).Updates(updates).Error; err != nil {
			return fmt.Errorf("progress: verify %d: %w", opts.ProgressID, err)
		}
		if err := tx.Where("id = ?", opts.ProgressID).First(&updated).Error; err != nil {
			return fmt.Errorf("progress: reload %d: %w", opts.ProgressID, err)
		}

		kind := notify.KindItemRejected
		state := StateRejected
		if opts.Approve {
			kind = notify.KindItemApproved
			state = StateApproved
		}
		ev = &notify.Event{
			TargetUserID: l.assignment.UserID,
			Kind:         kind,
			AssignmentID: l.assignment.ID,
			ItemID:       l.item.ID,
			ActorID:      actor.ID,
			NewState:     string(state),
			Note:         opts.Notes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(em, ev)
	return &updated, nil
}

// resolveActors looks up the acting user and the assignee.
func resolveActors(dir directory.Directory, actorID, assigneeID string) (actor, assignee *directory.Profile, err error) {
	actor, err = dir.Lookup(actorID)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil, nil, fault.Forbidden("progress: unknown actor: %s", actorID)
		}
		return nil, nil, err
	}
	assignee, err = dir.Lookup(assigneeID)
	if err != nil {
		return nil, nil, err
	}
	return actor, assignee, nil
}

// emit delivers a transition notification. Delivery failures are logged, not
// surfaced: the state change has already committed.
func emit(em notify.Emitter, ev *notify.Event) {
	if ev == nil {
		return
	}
	if err := em.Emit(context.Background(), *ev); err != nil {
		slog.Warn("transition committed but notification failed",
			"assignment", ev.AssignmentID, "item", ev.ItemID, "kind", ev.Kind, "error", err)
	}
}
