package transition

import (
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

// fieldRule says how a mutable field may move between prior and proposed state.
type fieldRule int

const (
	fieldFree fieldRule = iota
	fieldFrozen
	fieldChanged
)

// fieldRules holds one rule per mutable field. Fields are checked in the
// order roles, business identity, participants.
type fieldRules struct {
	roles        fieldRule
	business     fieldRule
	participants fieldRule
}

var frozenFields = fieldRules{roles: fieldFrozen, business: fieldFrozen, participants: fieldFrozen}

func checkFields(prior, proposed membership.State, rules fieldRules, label string) *command.Rejection {
	sameRoles := membership.SameRoles(prior, proposed)
	switch {
	case rules.roles == fieldFrozen && !sameRoles:
		return reject(CodeRolesChanged, label+" must keep the same role set")
	case rules.roles == fieldChanged && sameRoles:
		return reject(CodeRolesUnchanged, label+" must change the role set")
	}
	sameBusiness := membership.SameBusinessIdentity(prior, proposed)
	switch {
	case rules.business == fieldFrozen && !sameBusiness:
		return reject(CodeBusinessIdentityChanged, label+" must keep the same business identity")
	case rules.business == fieldChanged && sameBusiness:
		return reject(CodeBusinessIdentityUnchanged, label+" must change the business identity")
	}
	if rules.participants == fieldFrozen && !membership.SameParticipants(prior, proposed) {
		return reject(CodeParticipantsChanged, label+" must keep the same participants")
	}
	return nil
}
