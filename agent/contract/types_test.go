package contract

import "testing"

func TestRoleAllows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleGuest, RoleGuest, true},
		{RoleGuest, RoleStaff, false},
		{RoleStaff, RoleGuest, true},
		{RoleStaff, RoleStaff, true},
	}
	for _, tc := range cases {
		if got := tc.role.Allows(tc.min); got != tc.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tc.role, tc.min, got, tc.want)
		}
	}
}

func TestToolMessage(t *testing.T) {
	t.Parallel()

	msg := ToolMessage("call-1", "search_rooms", "no rooms")
	if msg.Role != MessageRoleTool {
		t.Fatalf("expected tool role, got %s", msg.Role)
	}
	if msg.ToolCallID != "call-1" || msg.ToolName != "search_rooms" || msg.Content != "no rooms" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
