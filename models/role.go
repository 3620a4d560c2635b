package models

import "strings"

// Canonical role values. Roles are stored as one of these strings only;
// anything else coming from a client is coerced by ParseRole.
const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

// ParseRole maps a case-insensitive role name to its canonical value.
// Unknown or empty input falls back to customer.
func ParseRole(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case RoleAgent:
		return RoleAgent
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

// AgentSpecialties lists the tags an agent profile may carry.
var AgentSpecialties = []string{
	"residential",
	"commercial",
	"luxury",
	"rentals",
	"land",
	"new_construction",
}

// IsAgentSpecialty reports whether tag is one of the known specialty tags.
func IsAgentSpecialty(tag string) bool {
	for _, s := range AgentSpecialties {
		if s == tag {
			return true
		}
	}
	return false
}
