package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("template missing"), KindNotFound},
		{"conflict", Conflict("duplicate assignment"), KindConflict},
		{"forbidden", Forbidden("not your item"), KindForbidden},
		{"invalid", Invalid("bad stage"), KindInvalid},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("assign: %w", Conflict("duplicate"))
	if KindOf(err) != KindConflict {
		t.Errorf("wrapped conflict not detected, got %v", KindOf(err))
	}
	if !IsKind(err, KindConflict) {
		t.Error("IsKind should see through wrapping")
	}
}

func TestError_Message(t *testing.T) {
	err := NotFound("template: not found: %s", "tpl-abc12")
	if err.Error() != "template: not found: tpl-abc12" {
		t.Errorf("Error() = %q", err.Error())
	}
}
