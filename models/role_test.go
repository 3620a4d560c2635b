package models

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]string{
		"AGENT":     RoleAgent,
		"Agent":     RoleAgent,
		"agent":     RoleAgent,
		" admin ":   RoleAdmin,
		"ADMIN":     RoleAdmin,
		"customer":  RoleCustomer,
		"CUSTOMER":  RoleCustomer,
		"":          RoleCustomer,
		"landlord":  RoleCustomer,
		"superuser": RoleCustomer,
	}
	for input, want := range cases {
		if got := ParseRole(input); got != want {
			t.Errorf("ParseRole(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsAgentSpecialty(t *testing.T) {
	if !IsAgentSpecialty("residential") {
		t.Error("residential should be a known specialty")
	}
	if IsAgentSpecialty("time_travel") {
		t.Error("unknown tags must be rejected")
	}
}
