package users

import (
	"fmt"
	"strings"
	"unicode"
)

// User is the authenticated identity as returned by the SchoolMed API and
// persisted in the local credential store. The Token field carries an embedded
// copy of the access token so the stored record is self-contained.
type User struct {
	ID       int64      `json:"id,omitempty"`       // Unique identifier for the user
	Username string     `json:"username,omitempty"` // Unique username
	Email    string     `json:"email,omitempty"`    // User's email address
	FullName string     `json:"fullName,omitempty"` // Display name
	Roles    []RoleType `json:"roles,omitempty"`    // Role identifiers, non-empty once authenticated
	UserCode string     `json:"userCode,omitempty"` // School-issued code (student/parent/staff)
	Token    string     `json:"token,omitempty"`    // Embedded copy of the access token
}

// DisplayName returns the full name, falling back to the username.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
