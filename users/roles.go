package users

// RoleType represents a role identifier as issued by the SchoolMed API.
type RoleType string

const (
	RoleAdmin       RoleType = "ROLE_ADMIN"       // Manages the whole school deployment
	RoleSchoolNurse RoleType = "ROLE_SCHOOLNURSE" // Reviews declarations and medication requests
	RoleParent      RoleType = "ROLE_PARENT"      // Declares and requests on behalf of students
	RoleStudent     RoleType = "ROLE_STUDENT"     // Baseline role for new registrations
)

// rolePrecedence orders recognized roles from most to least privileged. When a
// user carries several recognized roles the highest one wins; unrecognized
// role lists fall back to the first listed role.
var rolePrecedence = []RoleType{RoleAdmin, RoleSchoolNurse, RoleParent, RoleStudent}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user carries at least one of the given roles.
func (u *User) HasAnyRole(roles ...RoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// PrimaryRole resolves the role that drives role-scoped navigation. Returns
// the empty role when the user has no roles at all.
func (u *User) PrimaryRole() RoleType {
	for _, role := range rolePrecedence {
		if u.HasRole(role) {
			return role
		}
	}

	if len(u.Roles) > 0 {
		return u.Roles[0]
	}
	return ""
}
