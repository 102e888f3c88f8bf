package rbac

import "testing"

func TestCapabilityMatrix(t *testing.T) {
	tests := []struct {
		name string
		role Role
		cap  Capability
		want bool
	}{
		{name: "viewer can view", role: RoleViewer, cap: CapView, want: true},
		{name: "viewer cannot edit", role: RoleViewer, cap: CapEditContent, want: false},
		{name: "viewer cannot manage team", role: RoleViewer, cap: CapManageTeam, want: false},
		{name: "viewer cannot delete project", role: RoleViewer, cap: CapDeleteProject, want: false},
		{name: "editor can view", role: RoleEditor, cap: CapView, want: true},
		{name: "editor can edit", role: RoleEditor, cap: CapEditContent, want: true},
		{name: "editor cannot manage team", role: RoleEditor, cap: CapManageTeam, want: false},
		{name: "editor cannot delete project", role: RoleEditor, cap: CapDeleteProject, want: false},
		{name: "owner can view", role: RoleOwner, cap: CapView, want: true},
		{name: "owner can edit", role: RoleOwner, cap: CapEditContent, want: true},
		{name: "owner can manage team", role: RoleOwner, cap: CapManageTeam, want: true},
		{name: "owner can delete project", role: RoleOwner, cap: CapDeleteProject, want: true},
		{name: "unknown role has nothing", role: Role("ADMIN"), cap: CapView, want: false},
		{name: "empty role has nothing", role: Role(""), cap: CapView, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.cap); got != tc.want {
				t.Fatalf("Can(%s, %s) = %v, want %v", tc.role, tc.cap, got, tc.want)
			}
		})
	}
}

func TestInvitable(t *testing.T) {
	if Invitable("OWNER") {
		t.Fatal("OWNER must not be invitable")
	}
	if !Invitable("EDITOR") || !Invitable("VIEWER") {
		t.Fatal("EDITOR and VIEWER should be invitable")
	}
	if Invitable("editor") {
		t.Fatal("roles are case sensitive")
	}
}
