package transition

import (
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

// modifyRolesDefinition changes the role set; the initiator decides who signs.
func modifyRolesDefinition() Definition {
	return modifyDefinition(
		command.KindModifyRoles,
		fieldRules{roles: fieldChanged, business: fieldFrozen, participants: fieldFrozen},
		"membership roles modification",
	)
}

// modifyBusinessIdentityDefinition changes the business identity payload.
func modifyBusinessIdentityDefinition() Definition {
	return modifyDefinition(
		command.KindModifyBusinessIdentity,
		fieldRules{roles: fieldFrozen, business: fieldChanged, participants: fieldFrozen},
		"membership business identity modification",
	)
}

// modifyParticipantsDefinition changes the participant set; the issuer signs.
func modifyParticipantsDefinition() Definition {
	return modifyDefinition(
		command.KindModifyParticipants,
		fieldRules{roles: fieldFrozen, business: fieldFrozen, participants: fieldFree},
		"membership participants modification",
	)
}

func modifyDefinition(kind command.Kind, rules fieldRules, label string) Definition {
	return Definition{
		Kind: kind,
		Check: func(req Request) *command.Rejection {
			if req.Prior == nil {
				return reject(CodeMissingInputState, label+" must consume an existing membership")
			}
			if req.Proposed == nil {
				return reject(CodeMissingOutputState, label+" must produce a membership")
			}
			if req.Prior.Status != req.Proposed.Status {
				return reject(CodeStatusMismatch, label+" must keep the membership status")
			}
			if !membership.IsActiveOrSuspended(*req.Prior) {
				return reject(CodeInvalidStateForModification, label+" requires an active or suspended membership")
			}
			if rejection := checkFields(*req.Prior, *req.Proposed, rules, label); rejection != nil {
				return rejection
			}
			if initiated, ok := req.Command.(command.Initiated); ok && initiated.InitiatedBy() == "" {
				return reject(CodeMissingInitiator, label+" must name its initiator")
			}
			return nil
		},
		Signers: func(req Request) SignerPolicy {
			if initiated, ok := req.Command.(command.Initiated); ok {
				return initiatorPolicy(*req.Prior, initiated.InitiatedBy())
			}
			return SignerPolicy{Required: []membership.Party{req.Prior.Issuer}}
		},
	}
}
