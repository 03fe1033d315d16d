package directory

import (
	"errors"
	"fmt"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"gorm.io/gorm"
)

// Store is the GORM-backed Directory over the employees table.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Lookup returns the profile for a user ID.
func (s *Store) Lookup(userID string) (*Profile, error) {
	var emp models.Employee
	if err := s.db.Where("id = ?", userID).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("directory: user not found: %s", userID)
		}
		return nil, fmt.Errorf("directory: lookup %s: %w", userID, err)
	}
	p := toProfile(emp)
	return &p, nil
}

// ListByDepartment returns all profiles in a department.
func (s *Store) ListByDepartment(department string) ([]Profile, error) {
	return s.list("department = ?", department)
}

// ListByTeam returns all profiles in a team.
func (s *Store) ListByTeam(team string) ([]Profile, error) {
	return s.list("team = ?", team)
}

func (s *Store) list(query string, arg string) ([]Profile, error) {
	var emps []models.Employee
	if err := s.db.Where(query, arg).Order("id ASC").Find(&emps).Error; err != nil {
		return nil, fmt.Errorf("directory: list %q: %w", arg, err)
	}
	profiles := make([]Profile, 0, len(emps))
	for _, e := range emps {
		profiles = append(profiles, toProfile(e))
	}
	return profiles, nil
}

func toProfile(e models.Employee) Profile {
	p := Profile{
		ID:          e.ID,
		Name:        e.Name,
		Department:  e.Department,
		Team:        e.Team,
		Role:        e.Role,
		ProgramType: e.ProgramType,
		Stage:       e.Stage,
	}
	if e.SupervisorID != nil {
		p.SupervisorID = *e.SupervisorID
	}
	return p
}
