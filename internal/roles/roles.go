// Package roles defines the account roles, their human-friendly ID scheme,
// and helpers for extracting the authenticated subject from request context.
package roles

import "strings"

// Role selects the navigation subtree and the data-query scoping for an
// account.
type Role string

const (
	Patient  Role = "patient"
	Doctor   Role = "doctor"
	LabOwner Role = "labOwner"
)

// prefixes maps each role to its friendly-ID prefix.
var prefixes = map[Role]string{
	Patient:  "PT",
	Doctor:   "DR",
	LabOwner: "LB",
}

// Parse returns the role named by s, defaulting to Patient for anything
// unrecognized so a role is always available downstream.
func Parse(s string) Role {
	switch Role(strings.TrimSpace(s)) {
	case Doctor:
		return Doctor
	case LabOwner:
		return LabOwner
	default:
		return Patient
	}
}

// Valid reports whether s names one of the three roles exactly.
func Valid(s string) bool {
	switch Role(s) {
	case Patient, Doctor, LabOwner:
		return true
	}
	return false
}

// Prefix returns the two-letter friendly-ID prefix for r. Unknown roles get
// the patient prefix.
func (r Role) Prefix() string {
	if p, ok := prefixes[r]; ok {
		return p
	}
	return prefixes[Patient]
}

// FromPrefix infers a role from the first two characters of an account
// identifier. This is the legacy path for rows that predate profile records;
// anything unrecognized is a patient.
func FromPrefix(id string) Role {
	switch {
	case strings.HasPrefix(id, "LB"):
		return LabOwner
	case strings.HasPrefix(id, "DR"):
		return Doctor
	default:
		return Patient
	}
}

func (r Role) String() string { return string(r) }
