package assignment

import (
	"math"
	"time"

	"github.com/crewbase/gangplank/internal/models"
)

// View is an assignment together with its derived completion state. The
// percentage and status are recomputed from progress rows on every read and
// never persisted.
type View struct {
	models.ChecklistAssignment
	Percentage int
	Status     models.AssignmentStatus
}

// Completion computes the percentage and status for an assignment whose
// Template and Progress associations are loaded. For templates requiring
// verification an item counts once approved; otherwise completion alone
// counts and the pending verification field is read as terminal.
func Completion(a *models.ChecklistAssignment, now time.Time) (int, models.AssignmentStatus) {
	total := len(a.Progress)
	done := 0
	started := false
	for _, p := range a.Progress {
		if !p.IsCompleted {
			continue
		}
		started = true
		if !a.Template.RequiresVerification || p.VerificationStatus == models.VerificationApproved {
			done++
		}
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(done) / float64(total)))
	}

	switch {
	case total > 0 && pct == 100:
		return pct, models.StatusCompleted
	case a.DueDate != nil && a.DueDate.Before(now):
		return pct, models.StatusOverdue
	case started:
		// Items completed but still awaiting verification count as activity
		// even while the percentage sits at zero.
		return pct, models.StatusInProgress
	default:
		return pct, models.StatusAssigned
	}
}

// view wraps an assignment in its computed View.
func view(a models.ChecklistAssignment, now time.Time) View {
	pct, status := Completion(&a, now)
	return View{ChecklistAssignment: a, Percentage: pct, Status: status}
}
