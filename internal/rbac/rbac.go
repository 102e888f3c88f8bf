package rbac

type Role string
type Capability string

const (
	RoleOwner  Role = "OWNER"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

const (
	CapView          Capability = "view"
	CapEditContent   Capability = "edit_content"
	CapManageTeam    Capability = "manage_team"
	CapDeleteProject Capability = "delete_project"
)

func Can(role Role, cap Capability) bool {
	switch role {
	case RoleOwner:
		return true
	case RoleEditor:
		return cap == CapView || cap == CapEditContent
	case RoleViewer:
		return cap == CapView
	default:
		return false
	}
}

// Valid reports whether role is one of the three membership tiers.
func Valid(role string) bool {
	switch Role(role) {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// Invitable reports whether role may be granted through a team invite.
// Ownership is established at project creation and never handed out.
func Invitable(role string) bool {
	return Role(role) == RoleEditor || Role(role) == RoleViewer
}
