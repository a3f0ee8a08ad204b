package models

import "testing"

func TestTaskType_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value TaskType
		valid bool
	}{
		{TaskTypeLearn, true},
		{TaskTypePractice, true},
		{TaskTypeRevise, true},
		{TaskType("review"), false},
		{TaskType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			if got := tt.value.Valid(); got != tt.valid {
				t.Errorf("TaskType(%q).Valid() = %v, want %v", tt.value, got, tt.valid)
			}
		})
	}
}

func TestCountCompleted(t *testing.T) {
	t.Parallel()

	tasks := []Task{{Completed: true}, {Completed: false}, {Completed: true}}
	if got := CountCompleted(tasks); got != 2 {
		t.Errorf("CountCompleted() = %d, want 2", got)
	}
	if got := CountCompleted(nil); got != 0 {
		t.Errorf("CountCompleted(nil) = %d, want 0", got)
	}
}

func TestJobType_Valid(t *testing.T) {
	t.Parallel()

	for _, jt := range JobTypes {
		if !jt.Valid() {
			t.Errorf("expected %q to be valid", jt)
		}
	}
	if JobType("Freelance").Valid() {
		t.Error("expected Freelance to be invalid")
	}
}

func TestProfile_Defaults(t *testing.T) {
	t.Parallel()

	var nilProfile *Profile
	if nilProfile.HasRole() {
		t.Error("nil profile should not have a role")
	}
	if got := nilProfile.Minutes(); got != DefaultDailyMinutes {
		t.Errorf("Minutes() = %d, want %d", got, DefaultDailyMinutes)
	}

	role := "Backend Developer"
	empty := ""
	minutes := 120
	p := &Profile{SelectedRole: &role, RoleCategory: &empty, DailyTimeMinutes: &minutes}
	if !p.HasRole() {
		t.Error("expected profile to have a role")
	}
	if got := p.Role("software"); got != role {
		t.Errorf("Role() = %s, want %s", got, role)
	}
	if got := p.Category("general"); got != "general" {
		t.Errorf("Category() = %s, want fallback", got)
	}
	if got := p.Minutes(); got != 120 {
		t.Errorf("Minutes() = %d, want 120", got)
	}
	if got := p.DisplayName("Learner"); got != "Learner" {
		t.Errorf("DisplayName() = %s, want Learner", got)
	}

	if !(ProfileUpdate{}).Empty() {
		t.Error("zero update should be empty")
	}
	if (ProfileUpdate{SelectedRole: &role}).Empty() {
		t.Error("update with role should not be empty")
	}
}
