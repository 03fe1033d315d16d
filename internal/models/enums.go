package models

// Stage is an ordered onboarding-timeline tag. Templates are scoped to a
// stage and items are grouped by a phase drawn from the same set.
type Stage string

const (
	StagePrepare   Stage = "prepare"
	StageOrient    Stage = "orient"
	StageLand      Stage = "land"
	StageIntegrate Stage = "integrate"
	StageExcel     Stage = "excel"
)

// StageOrder lists all stages in timeline order. The index doubles as a sort
// key when grouping items by phase.
var StageOrder = []Stage{StagePrepare, StageOrient, StageLand, StageIntegrate, StageExcel}

// Valid reports whether s is a known stage tag.
func (s Stage) Valid() bool {
	for _, v := range StageOrder {
		if s == v {
			return true
		}
	}
	return false
}

// Rank returns the position of s in the timeline, or len(StageOrder) for
// unknown values so they sort last.
func (s Stage) Rank() int {
	for i, v := range StageOrder {
		if s == v {
			return i
		}
	}
	return len(StageOrder)
}

// ControlledBy determines which actor may mark an item complete.
type ControlledBy string

const (
	ControlEmployee ControlledBy = "employee"
	ControlHR       ControlledBy = "hr"
	ControlBoth     ControlledBy = "both"
)

// Valid reports whether c is a known controlled-by value.
func (c ControlledBy) Valid() bool {
	return c == ControlEmployee || c == ControlHR || c == ControlBoth
}

// VerificationStatus is the second-party review state of a progress item.
// It is meaningful only while the item is completed; uncompleting an item
// always resets it to pending.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Valid reports whether v is a known verification status.
func (v VerificationStatus) Valid() bool {
	return v == VerificationPending || v == VerificationApproved || v == VerificationRejected
}

// AssignmentStatus is the derived lifecycle state of an assignment. It is
// never stored; the aggregator recomputes it on every read.
type AssignmentStatus string

const (
	StatusAssigned   AssignmentStatus = "assigned"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusOverdue    AssignmentStatus = "overdue"
	StatusCompleted  AssignmentStatus = "completed"
)

// Role is an employee's position in the reporting structure, used to gate
// verification transitions.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager || r == RoleHR
}
