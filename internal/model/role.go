package model

import (
	"fmt"
	"strings"
)

// Role is one entry of a worker's role set.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDoctor    Role = "doctor"
	RoleNurse     Role = "nurse"
	RoleAssistant Role = "assistant"
	RoleAuxiliary Role = "auxiliary"
	// RoleUser is the universal fallback: workers with no specialized role
	// always match the marketplace role filter.
	RoleUser Role = "user"
)

var allRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleDoctor:    true,
	RoleNurse:     true,
	RoleAssistant: true,
	RoleAuxiliary: true,
	RoleUser:      true,
}

// ParseRole normalizes user-supplied role names. Legacy clients send values
// like "ROLE_DOCTOR", so a "role_" prefix is stripped before matching.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimPrefix(normalized, "role_")
	r := Role(normalized)
	if !allRoles[r] {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ExchangeEligible reports whether entries may be published under this role.
// Administrative-only roles cannot own shift entries.
func (r Role) ExchangeEligible() bool {
	switch r {
	case RoleDoctor, RoleNurse, RoleAssistant:
		return true
	}
	return false
}
