package rbac

// Role names. They are carried in access tokens; keep them stable.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator" // may write call records
	RoleViewer   = "viewer"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}
