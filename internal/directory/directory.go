// Package directory exposes the user-directory collaborator: the mapping from
// a user to their department, team, supervisor, and role. The workflow
// packages consume only the Directory interface; deployments may swap the
// GORM-backed default for an external HR system.
package directory

import "github.com/crewbase/gangplank/internal/models"

// Profile is the directory's view of one user.
type Profile struct {
	ID           string
	Name         string
	Department   string
	Team         string
	SupervisorID string // empty when the user has no direct supervisor
	Role         models.Role
	ProgramType  string
	Stage        models.Stage
}

// Directory resolves users to their org placement.
type Directory interface {
	// Lookup returns the profile for a user ID, or a fault.NotFound error.
	Lookup(userID string) (*Profile, error)

	// ListByDepartment returns all profiles in a department.
	ListByDepartment(department string) ([]Profile, error)

	// ListByTeam returns all profiles in a team.
	ListByTeam(team string) ([]Profile, error)
}

// CanVerify reports whether actor holds supervisory authority over subject:
// direct supervisor, a manager in the same department, or HR. An actor never
// verifies their own items.
func CanVerify(actor, subject *Profile) bool {
	if actor.ID == subject.ID {
		return false
	}
	if actor.Role == models.RoleHR {
		return true
	}
	if subject.SupervisorID != "" && actor.ID == subject.SupervisorID {
		return true
	}
	if actor.Role == models.RoleManager && actor.Department != "" && actor.Department == subject.Department {
		return true
	}
	return false
}
