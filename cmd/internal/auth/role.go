package auth

import "strings"

// Role is the closed set of roles a caller can hold.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleOwner         Role = "owner"
	RoleDentist       Role = "dentist"
	RoleAssistant     Role = "assistant"
	RoleReceptionist  Role = "receptionist"
	RolePatient       Role = "patient"
)

var knownRoles = map[Role]struct{}{
	RoleAdministrator: {},
	RoleOwner:         {},
	RoleDentist:       {},
	RoleAssistant:     {},
	RoleReceptionist:  {},
	RolePatient:       {},
}

// ParseRole maps a claim value onto a Role regardless of letter case.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownRoles[r]; !ok {
		return "", false
	}
	return r, true
}

func (r Role) String() string { return string(r) }

// IsStaff reports whether the role belongs to clinic personnel.
func (r Role) IsStaff() bool {
	_, ok := knownRoles[r]
	return ok && r != RolePatient
}

// Identity is the authenticated caller, passed explicitly into every service call.
type Identity struct {
	UserID int
	Role   Role
}

func (i *Identity) valid() bool {
	if i == nil || i.UserID <= 0 {
		return false
	}
	_, ok := knownRoles[i.Role]
	return ok
}
