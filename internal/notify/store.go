package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"gorm.io/gorm"
)

// Store persists events as in-app Notification rows and serves the read side
// of the notification screens.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// payload is the JSON body persisted with each notification.
type payload struct {
	AssignmentID string `json:"assignment_id,omitempty"`
	ItemID       string `json:"item_id,omitempty"`
	ActorID      string `json:"actor_id,omitempty"`
	NewState     string `json:"new_state,omitempty"`
	Note         string `json:"note,omitempty"`
}

// Emit writes the event as a Notification row.
func (s *Store) Emit(ctx context.Context, ev Event) error {
	if ev.TargetUserID == "" {
		return fmt.Errorf("notify: target user is required")
	}
	body, err := json.Marshal(payload{
		AssignmentID: ev.AssignmentID,
		ItemID:       ev.ItemID,
		ActorID:      ev.ActorID,
		NewState:     ev.NewState,
		Note:         ev.Note,
	})
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	n := models.Notification{
		TargetUserID: ev.TargetUserID,
		Kind:         string(ev.Kind),
		Payload:      string(body),
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("notify: store event: %w", err)
	}
	return nil
}

// ListFilters holds optional filters for listing notifications.
type ListFilters struct {
	Kind       string
	UnreadOnly bool
}

// List returns a user's notifications, newest first.
func (s *Store) List(userID string, filters ListFilters) ([]models.Notification, error) {
	q := s.db.Model(&models.Notification{}).Where("target_user_id = ?", userID)
	if filters.Kind != "" {
		q = q.Where("kind = ?", filters.Kind)
	}
	if filters.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var out []models.Notification
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("notify: list for %s: %w", userID, err)
	}
	return out, nil
}

// MarkRead marks a notification as read.
func (s *Store) MarkRead(id uint) error {
	result := s.db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("notify: mark read %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fault.NotFound("notify: notification not found: %d", id)
	}
	return nil
}
