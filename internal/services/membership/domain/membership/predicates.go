package membership

import (
	"bytes"
	"encoding/json"
)

// IsActiveOrSuspended reports whether a state can accept modifications.
func IsActiveOrSuspended(state State) bool {
	return state.Status == StatusActive || state.Status == StatusSuspended
}

// SameCoreIdentity reports whether both states belong to the same network identity.
func SameCoreIdentity(a, b State) bool {
	return a.Identity.Network == b.Identity.Network
}

// SameBusinessIdentity compares the opaque business payloads. JSON documents
// are compared after compaction so formatting differences do not count.
func SameBusinessIdentity(a, b State) bool {
	return bytes.Equal(compactBusiness(a.Identity.Business), compactBusiness(b.Identity.Business))
}

// SameRoles compares role sets, ignoring order and duplicates.
func SameRoles(a, b State) bool {
	left := roleSet(a.Roles)
	right := roleSet(b.Roles)
	if len(left) != len(right) {
		return false
	}
	for role := range left {
		if _, ok := right[role]; !ok {
			return false
		}
	}
	return true
}

// SameParticipants compares participant sets, ignoring order and duplicates.
func SameParticipants(a, b State) bool {
	return SamePartySet(a.Participants, b.Participants)
}

// SamePartySet reports whether two party lists hold the same members.
func SamePartySet(a, b []Party) bool {
	left := partySet(a)
	right := partySet(b)
	if len(left) != len(right) {
		return false
	}
	for party := range left {
		if _, ok := right[party]; !ok {
			return false
		}
	}
	return true
}

// ContainsParty reports whether party is one of parties.
func ContainsParty(parties []Party, party Party) bool {
	for _, candidate := range parties {
		if candidate == party {
			return true
		}
	}
	return false
}

func compactBusiness(raw BusinessIdentity) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		// Not JSON: compare the raw bytes.
		return trimmed
	}
	return buf.Bytes()
}

func roleSet(roles Roles) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func partySet(parties []Party) map[Party]struct{} {
	set := make(map[Party]struct{}, len(parties))
	for _, party := range parties {
		set[party] = struct{}{}
	}
	return set
}
