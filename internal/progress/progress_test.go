package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/crewbase/gangplank/internal/directory"
	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.ChecklistTemplate{},
		&models.ChecklistItem{},
		&models.ChecklistAssignment{},
		&models.ChecklistProgressItem{},
		&models.Employee{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// recorder captures emitted events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Emit(ctx context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) last(t *testing.T) notify.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		t.Fatal("no events emitted")
	}
	return r.events[len(r.events)-1]
}

// fixture is one assignment with a single progress row, plus the org around
// the assignee: a direct supervisor, a same-department manager, HR, and an
// unrelated employee.
type fixture struct {
	db         *gorm.DB
	dir        directory.Directory
	rec        *recorder
	progressID uint
}

func newFixture(t *testing.T, requiresVerification bool, control models.ControlledBy) *fixture {
	t.Helper()
	db := testDB(t)

	sup := "mgr-sup"
	employees := []models.Employee{
		{ID: "emp-e", Name: "Ada", Department: "engineering", SupervisorID: &sup, Role: models.RoleEmployee},
		{ID: "mgr-sup", Name: "Sam", Department: "engineering", Role: models.RoleManager},
		{ID: "mgr-dept", Name: "Max", Department: "engineering", Role: models.RoleManager},
		{ID: "mgr-other", Name: "Lee", Department: "sales", Role: models.RoleManager},
		{ID: "hr-1", Name: "Ona", Department: "people", Role: models.RoleHR},
		{ID: "emp-peer", Name: "Kim", Department: "engineering", Role: models.RoleEmployee},
	}
	for i := range employees {
		if err := db.Create(&employees[i]).Error; err != nil {
			t.Fatalf("seed employee: %v", err)
		}
	}

	tpl := models.ChecklistTemplate{
		ID:                   "tpl-fix01",
		Title:                "Setup",
		Stage:                models.StagePrepare,
		RequiresVerification: requiresVerification,
	}
	if err := db.Create(&tpl).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}
	item := models.ChecklistItem{
		ID:           "itm-fix01",
		TemplateID:   tpl.ID,
		Title:        "Laptop",
		OrderIndex:   1,
		Phase:        models.StagePrepare,
		ControlledBy: control,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	a := models.ChecklistAssignment{ID: "asg-fix01", TemplateID: tpl.ID, UserID: "emp-e"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	p := models.ChecklistProgressItem{AssignmentID: a.ID, ItemID: item.ID, VerificationStatus: models.VerificationPending}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	return &fixture{db: db, dir: directory.NewStore(db), rec: &recorder{}, progressID: p.ID}
}

func (f *fixture) complete(t *testing.T, actor string) (*models.ChecklistProgressItem, error) {
	t.Helper()
	return SetCompletion(f.db, f.rec, f.dir, CompletionOpts{ProgressID: f.progressID, ActorID: actor, Completed: true})
}

func (f *fixture) uncomplete(t *testing.T, actor string) (*models.ChecklistProgressItem, error) {
	t.Helper()
	return SetCompletion(f.db, f.rec, f.dir, CompletionOpts{ProgressID: f.progressID, ActorID: actor, Completed: false})
}

func (f *fixture) verify(t *testing.T, actor string, approve bool) (*models.ChecklistProgressItem, error) {
	t.Helper()
	return Verify(f.db, f.rec, f.dir, VerifyOpts{ProgressID: f.progressID, ActorID: actor, Approve: approve})
}

func TestEffectiveState(t *testing.T) {
	cases := []struct {
		name     string
		p        models.ChecklistProgressItem
		requires bool
		want     State
	}{
		{"untouched", models.ChecklistProgressItem{}, true, StateNotCompleted},
		{"pending verification", models.ChecklistProgressItem{IsCompleted: true, VerificationStatus: models.VerificationPending}, true, StateCompletedPending},
		{"approved", models.ChecklistProgressItem{IsCompleted: true, VerificationStatus: models.VerificationApproved}, true, StateApproved},
		{"rejected", models.ChecklistProgressItem{IsCompleted: true, VerificationStatus: models.VerificationRejected}, true, StateRejected},
		{"no verification needed", models.ChecklistProgressItem{IsCompleted: true, VerificationStatus: models.VerificationPending}, false, StateCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EffectiveState(&tc.p, tc.requires); got != tc.want {
				t.Errorf("EffectiveState() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSetCompletion_EmployeeFlow(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)

	p, err := f.complete(t, "emp-e")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !p.IsCompleted || p.CompletedAt == nil {
		t.Errorf("IsCompleted = %v CompletedAt = %v, want completed with timestamp", p.IsCompleted, p.CompletedAt)
	}
	if p.VerificationStatus != models.VerificationPending {
		t.Errorf("VerificationStatus = %q, want pending", p.VerificationStatus)
	}

	ev := f.rec.last(t)
	if ev.Kind != notify.KindItemCompleted {
		t.Errorf("event kind = %q, want item_completed", ev.Kind)
	}
	if ev.TargetUserID != "mgr-sup" {
		t.Errorf("event target = %q, want supervisor mgr-sup", ev.TargetUserID)
	}
}

func TestSetCompletion_OnlyAssigneeTogglesEmployeeItems(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)

	for _, actor := range []string{"mgr-sup", "hr-1", "emp-peer"} {
		if _, err := f.complete(t, actor); !fault.IsKind(err, fault.KindForbidden) {
			t.Errorf("%s: got %v, want forbidden", actor, err)
		}
	}
}

func TestSetCompletion_UnknownActorForbidden(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)
	if _, err := f.complete(t, "ghost"); !fault.IsKind(err, fault.KindForbidden) {
		t.Errorf("got %v, want forbidden", err)
	}
}

func TestSetCompletion_SameStateIsNoOp(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)

	p, err := f.uncomplete(t, "emp-e")
	if err != nil {
		t.Fatalf("uncomplete untouched item: %v", err)
	}
	if p.IsCompleted {
		t.Error("item should remain incomplete")
	}
	if len(f.rec.events) != 0 {
		t.Errorf("no-op emitted %d events, want 0", len(f.rec.events))
	}
}

func TestSetCompletion_UncompleteResetsVerification(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)

	if _, err := f.complete(t, "emp-e"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.verify(t, "mgr-sup", true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	p, err := f.uncomplete(t, "emp-e")
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if p.IsCompleted || p.CompletedAt != nil {
		t.Error("completion fields should be cleared")
	}
	if p.VerificationStatus != models.VerificationPending {
		t.Errorf("VerificationStatus = %q, want pending after reset", p.VerificationStatus)
	}
	if p.VerifiedBy != "" || p.VerifiedAt != nil || p.VerificationNotes != "" {
		t.Errorf("verification fields not reset: %+v", p)
	}

	ev := f.rec.last(t)
	if ev.Kind != notify.KindItemUncompleted || ev.TargetUserID != "mgr-sup" {
		t.Errorf("event = %+v, want item_uncompleted to mgr-sup", ev)
	}
}

func TestSetCompletion_HRControlledCollapses(t *testing.T) {
	f := newFixture(t, true, models.ControlHR)

	// The assignee cannot touch an HR-controlled item.
	if _, err := f.complete(t, "emp-e"); !fault.IsKind(err, fault.KindForbidden) {
		t.Errorf("assignee: got %v, want forbidden", err)
	}

	p, err := f.complete(t, "hr-1")
	if err != nil {
		t.Fatalf("hr complete: %v", err)
	}
	if !p.IsCompleted {
		t.Error("item should be completed")
	}
	if p.VerificationStatus != models.VerificationApproved {
		t.Errorf("VerificationStatus = %q, want approved (collapsed)", p.VerificationStatus)
	}
	if p.VerifiedBy != "hr-1" || p.VerifiedAt == nil {
		t.Errorf("VerifiedBy = %q VerifiedAt = %v, want hr-1 with timestamp", p.VerifiedBy, p.VerifiedAt)
	}

	// The collapsed action notifies the employee directly.
	ev := f.rec.last(t)
	if ev.Kind != notify.KindItemApproved || ev.TargetUserID != "emp-e" {
		t.Errorf("event = %+v, want item_approved to emp-e", ev)
	}
}

func TestSetCompletion_BothControlled(t *testing.T) {
	f := newFixture(t, true, models.ControlBoth)

	if _, err := f.complete(t, "emp-peer"); !fault.IsKind(err, fault.KindForbidden) {
		t.Errorf("peer: got %v, want forbidden", err)
	}
	if _, err := f.complete(t, "emp-e"); err != nil {
		t.Errorf("assignee: %v", err)
	}
	if _, err := f.uncomplete(t, "mgr-sup"); err != nil {
		t.Errorf("supervisor: %v", err)
	}
}

func TestVerify_ApproveAndReject(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)
	if _, err := f.complete(t, "emp-e"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	p, err := f.verify(t, "mgr-sup", false)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if p.VerificationStatus != models.VerificationRejected {
		t.Errorf("VerificationStatus = %q, want rejected", p.VerificationStatus)
	}
	if ev := f.rec.last(t); ev.Kind != notify.KindItemRejected || ev.TargetUserID != "emp-e" {
		t.Errorf("event = %+v, want item_rejected to emp-e", ev)
	}

	// The rejection is final until the employee reworks the item.
	if _, err := f.verify(t, "mgr-sup", true); !fault.IsKind(err, fault.KindConflict) {
		t.Fatalf("re-verify rejected item: got %v, want conflict", err)
	}
	if _, err := f.uncomplete(t, "emp-e"); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if _, err := f.complete(t, "emp-e"); err != nil {
		t.Fatalf("recomplete: %v", err)
	}
	p, err = f.verify(t, "mgr-sup", true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if p.VerificationStatus != models.VerificationApproved || p.VerifiedBy != "mgr-sup" {
		t.Errorf("VerificationStatus = %q VerifiedBy = %q, want approved by mgr-sup", p.VerificationStatus, p.VerifiedBy)
	}
	if ev := f.rec.last(t); ev.Kind != notify.KindItemApproved {
		t.Errorf("event kind = %q, want item_approved", ev.Kind)
	}
}

func TestVerify_DecisionIsFinal(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)
	if _, err := f.complete(t, "emp-e"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.verify(t, "mgr-sup", true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// A second verifier cannot flip a recorded decision.
	if _, err := f.verify(t, "hr-1", false); !fault.IsKind(err, fault.KindConflict) {
		t.Errorf("got %v, want conflict", err)
	}
	p, err := Get(f.db, f.progressID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.VerificationStatus != models.VerificationApproved || p.VerifiedBy != "mgr-sup" {
		t.Errorf("decision changed: status = %q, verified by %q", p.VerificationStatus, p.VerifiedBy)
	}
}

func TestVerify_NotRequiredByTemplate(t *testing.T) {
	f := newFixture(t, false, models.ControlEmployee)
	if _, err := f.complete(t, "emp-e"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.verify(t, "mgr-sup", true); !fault.IsKind(err, fault.KindConflict) {
		t.Errorf("got %v, want conflict", err)
	}
	p, err := Get(f.db, f.progressID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.VerificationStatus != models.VerificationPending {
		t.Errorf("VerificationStatus = %q, want pending left untouched", p.VerificationStatus)
	}
}

func TestVerify_Authority(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)
	if _, err := f.complete(t, "emp-e"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Never self, never a peer, never an out-of-department manager.
	for _, actor := range []string{"emp-e", "emp-peer", "mgr-other"} {
		if _, err := f.verify(t, actor, true); !fault.IsKind(err, fault.KindForbidden) {
			t.Errorf("%s: got %v, want forbidden", actor, err)
		}
	}

	// A same-department manager who is not the direct supervisor may verify.
	if _, err := f.verify(t, "mgr-dept", true); err != nil {
		t.Errorf("same-department manager: %v", err)
	}
}

func TestVerify_UncompletedIsConflict(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)
	if _, err := f.verify(t, "mgr-sup", true); !fault.IsKind(err, fault.KindConflict) {
		t.Errorf("got %v, want conflict", err)
	}
}

func TestVerify_NotFound(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)
	if _, err := Verify(f.db, f.rec, f.dir, VerifyOpts{ProgressID: 9999, ActorID: "mgr-sup", Approve: true}); !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t, true, models.ControlEmployee)

	p, err := Get(f.db, f.progressID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Item.Title != "Laptop" {
		t.Errorf("Item.Title = %q, want Laptop", p.Item.Title)
	}

	if _, err := Get(f.db, 9999); !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}
