package transition

import (
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

// activateDefinition lets the issuer activate a pending or suspended membership.
func activateDefinition() Definition {
	return statusChangeDefinition(command.KindActivate, membership.StatusActive, CodeAlreadyActive, "membership activation")
}

// suspendDefinition lets the issuer suspend a pending or active membership.
func suspendDefinition() Definition {
	return statusChangeDefinition(command.KindSuspend, membership.StatusSuspended, CodeAlreadySuspended, "membership suspension")
}

func statusChangeDefinition(kind command.Kind, target membership.Status, alreadyCode, label string) Definition {
	return Definition{
		Kind: kind,
		Check: func(req Request) *command.Rejection {
			if req.Prior == nil {
				return reject(CodeMissingInputState, label+" must consume an existing membership")
			}
			if req.Proposed == nil {
				return reject(CodeMissingOutputState, label+" must produce a membership")
			}
			if req.Prior.Status == target {
				return reject(alreadyCode, "membership is already "+target.Label())
			}
			if req.Proposed.Status != target {
				return reject(CodeWrongTargetStatus, label+" must produce a membership in "+target.Label()+" status")
			}
			return checkFields(*req.Prior, *req.Proposed, frozenFields, label)
		},
		Signers: func(req Request) SignerPolicy {
			return issuerOnly(*req.Prior)
		},
	}
}
