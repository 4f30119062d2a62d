package membership

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Party is a network-level identity, usually an X.500 name such as
// "O=BNO,L=London,C=GB".
type Party string

// BusinessIdentity is an opaque, application-defined JSON document attached to
// a membership. Nil, empty and JSON null are equivalent.
type BusinessIdentity = json.RawMessage

// Role is an opaque authorization token interpreted by an external policy layer.
type Role string

// Roles is a set of role tokens. Use NewRoles to build a canonical set.
type Roles []Role

// Identity pairs the member's network identity with its business identity.
type Identity struct {
	Network  Party            `json:"network"`
	Business BusinessIdentity `json:"business,omitempty"`
}

// State is one version of a membership record.
type State struct {
	ID           string    `json:"id"`
	Identity     Identity  `json:"identity"`
	NetworkID    string    `json:"network_id"`
	Status       Status    `json:"status"`
	Roles        Roles     `json:"roles,omitempty"`
	Participants []Party   `json:"participants"`
	Issuer       Party     `json:"issuer"`
	Issued       time.Time `json:"issued"`
	Modified     time.Time `json:"modified"`
}

// NewID returns a fresh membership identifier.
func NewID() string {
	return uuid.NewString()
}

// NewRoles builds a de-duplicated, sorted role set. Blank tokens are dropped.
func NewRoles(tokens ...string) Roles {
	roles := make(Roles, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		roles = append(roles, Role(token))
	}
	slices.Sort(roles)
	return slices.Compact(roles)
}

// Subject returns the member identity this state concerns.
func (s State) Subject() Party {
	return s.Identity.Network
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	clone := s
	clone.Identity.Business = slices.Clone(s.Identity.Business)
	clone.Roles = slices.Clone(s.Roles)
	clone.Participants = slices.Clone(s.Participants)
	return clone
}

// Ptr returns a pointer to a copy of s, handy for building transition requests.
func (s State) Ptr() *State {
	clone := s.Clone()
	return &clone
}
