package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestChecklistTemplate_Fields(t *testing.T) {
	typ := reflect.TypeOf(ChecklistTemplate{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "ProgramType", "index")
	assertGormTag(t, typ, "Stage", "size:16")
	assertGormTag(t, typ, "AutoAssign", "default:false")
	assertGormTag(t, typ, "RequiresVerification", "default:false")

	assertFieldType(t, typ, "Items", "[]models.ChecklistItem")
	assertFieldType(t, typ, "Rules", "[]models.AutoAssignRule")
}

func TestChecklistItem_Fields(t *testing.T) {
	typ := reflect.TypeOf(ChecklistItem{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "TemplateID", "not null")
	assertGormTag(t, typ, "TemplateID", "uniqueIndex:idx_item_order")
	assertGormTag(t, typ, "OrderIndex", "uniqueIndex:idx_item_order")
	assertGormTag(t, typ, "Required", "default:true")
	assertGormTag(t, typ, "ControlledBy", "default:employee")

	assertFieldType(t, typ, "Phase", "models.Stage")
	assertFieldType(t, typ, "ControlledBy", "models.ControlledBy")
}

func TestChecklistAssignment_Fields(t *testing.T) {
	typ := reflect.TypeOf(ChecklistAssignment{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "TemplateID", "index")
	assertGormTag(t, typ, "UserID", "index")
	assertGormTag(t, typ, "IsAutoAssigned", "default:false")

	assertFieldType(t, typ, "DueDate", "*time.Time")
	assertFieldType(t, typ, "Progress", "[]models.ChecklistProgressItem")
}

func TestChecklistProgressItem_Fields(t *testing.T) {
	typ := reflect.TypeOf(ChecklistProgressItem{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "AssignmentID", "uniqueIndex:idx_progress_pair")
	assertGormTag(t, typ, "ItemID", "uniqueIndex:idx_progress_pair")
	assertGormTag(t, typ, "IsCompleted", "default:false")
	assertGormTag(t, typ, "VerificationStatus", "default:pending")

	assertFieldType(t, typ, "CompletedAt", "*time.Time")
	assertFieldType(t, typ, "VerifiedAt", "*time.Time")
	assertFieldType(t, typ, "VerificationStatus", "models.VerificationStatus")
}

func TestStage_Valid(t *testing.T) {
	for _, s := range StageOrder {
		if !s.Valid() {
			t.Errorf("stage %q should be valid", s)
		}
	}
	if Stage("onboard").Valid() {
		t.Error("unknown stage should not be valid")
	}
}

func TestStage_Rank(t *testing.T) {
	if StagePrepare.Rank() != 0 {
		t.Errorf("prepare rank = %d, want 0", StagePrepare.Rank())
	}
	if StageExcel.Rank() != 4 {
		t.Errorf("excel rank = %d, want 4", StageExcel.Rank())
	}
	if Stage("bogus").Rank() != len(StageOrder) {
		t.Error("unknown stage should rank last")
	}
}

func TestControlledBy_Valid(t *testing.T) {
	for _, c := range []ControlledBy{ControlEmployee, ControlHR, ControlBoth} {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if ControlledBy("manager").Valid() {
		t.Error("unknown controlled-by should not be valid")
	}
}

func TestVerificationStatus_Valid(t *testing.T) {
	for _, v := range []VerificationStatus{VerificationPending, VerificationApproved, VerificationRejected} {
		if !v.Valid() {
			t.Errorf("%q should be valid", v)
		}
	}
	if VerificationStatus("done").Valid() {
		t.Error("unknown verification status should not be valid")
	}
}

func TestTimestampsPresent(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeOf(ChecklistTemplate{}),
		reflect.TypeOf(ChecklistItem{}),
		reflect.TypeOf(ChecklistAssignment{}),
		reflect.TypeOf(ChecklistProgressItem{}),
	} {
		assertFieldType(t, typ, "CreatedAt", reflect.TypeOf(time.Time{}).String())
	}
}
