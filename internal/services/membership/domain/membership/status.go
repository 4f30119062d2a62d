package membership

import "strings"

// Status describes the membership lifecycle label.
type Status string

const (
	StatusUnspecified Status = ""
	StatusPending     Status = "pending"
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
)

// NormalizeStatus canonicalizes a status label from callers and scripts.
func NormalizeStatus(value string) (Status, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StatusUnspecified, false
	}
	switch strings.ToUpper(trimmed) {
	case "PENDING", "MEMBERSHIP_STATUS_PENDING":
		return StatusPending, true
	case "ACTIVE", "MEMBERSHIP_STATUS_ACTIVE":
		return StatusActive, true
	case "SUSPENDED", "MEMBERSHIP_STATUS_SUSPENDED":
		return StatusSuspended, true
	default:
		return StatusUnspecified, false
	}
}

// Label returns the upper-case label used in messages and audit records.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusActive:
		return "ACTIVE"
	case StatusSuspended:
		return "SUSPENDED"
	default:
		return "UNSPECIFIED"
	}
}
