package domain

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// dominated maps a role to the set of lower-privileged roles whose screens it
// may also view. Equal roles are always allowed; the map only lists strict
// dominance (superadmin > admin > user).
var dominated = map[string][]string{
	RoleSuperAdmin: {RoleAdmin, RoleUser},
	RoleAdmin:      {RoleUser},
}

// NormalizeRole maps the junk values an unset session can carry to RoleUser.
// The literal strings "null" and "undefined" leaked out of the old frontend
// whenever an unresolved role was stringified; they are treated the same as
// an empty role. Every other non-empty value passes through unchanged,
// case-sensitively.
func NormalizeRole(role string) string {
	switch role {
	case "", "null", "undefined":
		return RoleUser
	}
	return role
}

// IsValidRole reports whether role is one of the three known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Decision is the outcome of a route authorization check.
type Decision struct {
	Allowed  bool
	Redirect string // target path when not allowed
}

// DashboardPath returns the landing page for a role.
func DashboardPath(role string) string {
	return "/" + role + "/dashboard"
}

// Authorize decides whether a caller holding currentRole may enter the route
// tree gated by requestedRole. Pure function of its inputs: equal roles are
// allowed, a dominant role may enter any tree it dominates, everything else
// redirects to the caller's own dashboard. Unauthenticated callers always
// redirect to /login.
func Authorize(isAuthenticated bool, currentRole, requestedRole string) Decision {
	if !isAuthenticated {
		return Decision{Redirect: "/login"}
	}
	if currentRole == requestedRole {
		return Decision{Allowed: true}
	}
	for _, r := range dominated[currentRole] {
		if r == requestedRole {
			return Decision{Allowed: true}
		}
	}
	return Decision{Redirect: DashboardPath(currentRole)}
}
