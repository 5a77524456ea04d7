package entity

import (
	"testing"
	"time"
)

func TestTaskIsOverdue(t *testing.T) {
	past := time.Now().Add(-1 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"past due open", Task{Status: TaskStatusPending, DueDate: &past}, true},
		{"past due completed", Task{Status: TaskStatusCompleted, DueDate: &past}, false},
		{"past due cancelled", Task{Status: TaskStatusCancelled, DueDate: &past}, false},
		{"future due", Task{Status: TaskStatusPending, DueDate: &future}, false},
		{"no due date", Task{Status: TaskStatusPending}, false},
	}
	for _, tt := range tests {
		if got := tt.task.IsOverdue(); got != tt.want {
			t.Errorf("%s: IsOverdue() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTaskIsDueSoon(t *testing.T) {
	soon := time.Now().Add(2 * time.Hour)
	far := time.Now().Add(72 * time.Hour)

	if task := (Task{Status: TaskStatusInProgress, DueDate: &soon}); !task.IsDueSoon() {
		t.Error("task due in 2h should be due soon")
	}
	if task := (Task{Status: TaskStatusPending, DueDate: &far}); task.IsDueSoon() {
		t.Error("task due in 72h should not be due soon")
	}
	if task := (Task{Status: TaskStatusCompleted, DueDate: &soon}); task.IsDueSoon() {
		t.Error("completed task should not be due soon")
	}
}

func TestIsValidStatus(t *testing.T) {
	if !IsValidStatus(StatusFollowUp) {
		t.Error("FOLLOW_UP should be valid")
	}
	if IsValidStatus("LOST") {
		t.Error("LOST should not be valid")
	}
}

func TestCustomerFieldOptionList(t *testing.T) {
	f := CustomerField{Options: "Web, Referral , ,Walk-in"}
	opts := f.OptionList()
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d: %v", len(opts), opts)
	}
	if opts[1] != "Referral" {
		t.Errorf("expected trimmed option, got %q", opts[1])
	}

	empty := CustomerField{}
	if empty.OptionList() != nil {
		t.Error("expected nil for empty options")
	}
}
