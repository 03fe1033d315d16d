package notify

import "fmt"

// colors used for chat attachment sidebars.
const (
	colorSuccess = "#36a64f"
	colorWarning = "#daa038"
	colorDanger  = "#cc3333"
	colorInfo    = "#4a90d9"
)

// headline returns a one-line summary for an event.
func headline(ev Event) string {
	switch ev.Kind {
	case KindAssignmentCreated:
		return fmt.Sprintf("Checklist %s assigned to %s", ev.AssignmentID, ev.TargetUserID)
	case KindItemCompleted:
		return fmt.Sprintf("%s completed item %s — verification requested", ev.ActorID, ev.ItemID)
	case KindItemUncompleted:
		return fmt.Sprintf("%s reopened item %s", ev.ActorID, ev.ItemID)
	case KindItemApproved:
		return fmt.Sprintf("Item %s approved by %s", ev.ItemID, ev.ActorID)
	case KindItemRejected:
		return fmt.Sprintf("Item %s rejected by %s", ev.ItemID, ev.ActorID)
	case KindOverdueDigest:
		return fmt.Sprintf("Checklist %s is overdue", ev.AssignmentID)
	default:
		return fmt.Sprintf("Checklist %s updated", ev.AssignmentID)
	}
}

// color returns the sidebar color hint for an event.
func color(ev Event) string {
	switch ev.Kind {
	case KindItemApproved:
		return colorSuccess
	case KindItemRejected:
		return colorDanger
	case KindOverdueDigest:
		return colorWarning
	default:
		return colorInfo
	}
}

// body returns the detail text for an event, empty when there is nothing
// beyond the headline.
func body(ev Event) string {
	if ev.Note != "" {
		return ev.Note
	}
	return ""
}
