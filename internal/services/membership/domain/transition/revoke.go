package transition

import "github.com/louisbranch/business-network/internal/services/membership/domain/command"

// revokeDefinition terminates a membership. Revocation has no successor state.
func revokeDefinition() Definition {
	return Definition{
		Kind: command.KindRevoke,
		Check: func(req Request) *command.Rejection {
			if req.Prior == nil {
				return reject(CodeMissingInputState, "membership revocation must consume an existing membership")
			}
			if req.Proposed != nil {
				return reject(CodeUnexpectedOutputState, "membership revocation must not produce a membership")
			}
			return nil
		},
		Signers: func(req Request) SignerPolicy {
			return issuerOnly(*req.Prior)
		},
	}
}
