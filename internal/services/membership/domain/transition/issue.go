package transition

import (
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

// requestDefinition admits an applicant in pending status.
func requestDefinition() Definition {
	return issueDefinition(command.KindRequest, membership.StatusPending, "membership request")
}

// onboardDefinition admits a member directly in active status.
func onboardDefinition() Definition {
	return issueDefinition(command.KindOnboard, membership.StatusActive, "membership onboarding")
}

func issueDefinition(kind command.Kind, status membership.Status, label string) Definition {
	return Definition{
		Kind: kind,
		Check: func(req Request) *command.Rejection {
			if req.Prior != nil {
				return reject(CodeUnexpectedInputState, label+" must not consume an existing membership")
			}
			if req.Proposed == nil {
				return reject(CodeMissingOutputState, label+" must produce a membership")
			}
			if req.Proposed.Status != status {
				return reject(CodeWrongInitialStatus, label+" must issue the membership in "+status.Label()+" status")
			}
			if len(req.Proposed.Roles) != 0 {
				return reject(CodeNonEmptyInitialRoles, label+" must issue the membership with no roles")
			}
			return nil
		},
		Signers: func(req Request) SignerPolicy {
			return subjectAndIssuer(*req.Proposed)
		},
	}
}
