package transition

import (
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

// checkCommon runs the invariants shared by every command kind.
func checkCommon(req Request) *command.Rejection {
	if req.Prior != nil && req.Prior.Modified.Before(req.Prior.Issued) {
		return rejectField(CodeInvalidTimestamp, FieldPrior, "prior state modified timestamp precedes its issued timestamp")
	}
	if req.Proposed != nil && req.Proposed.Modified.Before(req.Proposed.Issued) {
		return rejectField(CodeInvalidTimestamp, FieldProposed, "proposed state modified timestamp precedes its issued timestamp")
	}
	if req.Prior != nil && req.Proposed != nil {
		if rejection := checkImmutableFields(*req.Prior, *req.Proposed); rejection != nil {
			return rejection
		}
	}
	declared := req.declaredSigners()
	if !membership.SamePartySet(declared, req.Signers) {
		return reject(CodeUnauthorizedSigners, "declared signers do not match the authenticated signer set")
	}
	if participants, ok := req.participants(); ok {
		for _, signer := range declared {
			if !membership.ContainsParty(participants, signer) {
				return reject(CodeSignerNotParticipant, "signer "+string(signer)+" is not a membership participant")
			}
		}
	}
	return nil
}

// checkImmutableFields rejects changes to fields fixed at issuance.
func checkImmutableFields(prior, proposed membership.State) *command.Rejection {
	switch {
	case proposed.NetworkID != prior.NetworkID:
		return rejectField(CodeInconsistentTransition, FieldNetworkID, "prior and proposed state must share a network id")
	case proposed.Issuer != prior.Issuer:
		return rejectField(CodeInconsistentTransition, FieldIssuer, "membership issuer cannot be changed")
	case !proposed.Issued.Equal(prior.Issued):
		return rejectField(CodeInconsistentTransition, FieldIssued, "prior and proposed state must share an issued timestamp")
	case proposed.ID != prior.ID:
		return rejectField(CodeInconsistentTransition, FieldID, "prior and proposed state must share a membership id")
	case proposed.Modified.Before(prior.Modified):
		return rejectField(CodeInconsistentTransition, FieldModified, "proposed modified timestamp precedes the prior one")
	case !membership.SameCoreIdentity(prior, proposed):
		return rejectField(CodeInconsistentTransition, FieldIdentity, "membership network identity cannot be changed")
	}
	return nil
}
