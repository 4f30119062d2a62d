package transition

import (
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

// SignerPolicy is the exact signer set a command kind demands.
type SignerPolicy struct {
	// Required must all sign, and nobody else may.
	Required []membership.Party
	// Forbidden must not sign; checked before Required so a subject signing
	// in the operator's place is reported as such.
	Forbidden []membership.Party
	// MissingCode is reported when a required signer is absent.
	MissingCode string
}

// evaluate checks declared signers against the policy.
func (p SignerPolicy) evaluate(signers []membership.Party) *command.Rejection {
	for _, party := range p.Forbidden {
		if membership.ContainsParty(signers, party) {
			return reject(CodeUnexpectedSubjectSignature, "membership subject "+string(party)+" must not sign this transition")
		}
	}
	missingCode := p.MissingCode
	if missingCode == "" {
		missingCode = CodeMissingRequiredSigner
	}
	for _, party := range p.Required {
		if !membership.ContainsParty(signers, party) {
			return reject(missingCode, "required signer "+string(party)+" did not sign")
		}
	}
	for _, signer := range signers {
		if !membership.ContainsParty(p.Required, signer) {
			return reject(CodeUnauthorizedSigners, "signer "+string(signer)+" is not required by the command policy")
		}
	}
	return nil
}

// issuerOnly is the policy for operator-unilateral commands: the issuer signs
// and the subject must not.
func issuerOnly(state membership.State) SignerPolicy {
	return SignerPolicy{
		Required:  []membership.Party{state.Issuer},
		Forbidden: []membership.Party{state.Subject()},
	}
}

// subjectAndIssuer is the policy for commands that create a membership.
func subjectAndIssuer(state membership.State) SignerPolicy {
	required := []membership.Party{state.Subject()}
	if state.Issuer != state.Subject() {
		required = append(required, state.Issuer)
	}
	return SignerPolicy{Required: required}
}

// initiatorPolicy is the policy for modifications keyed on the initiator: the
// subject signs if and only if it initiated the change.
func initiatorPolicy(state membership.State, initiator membership.Party) SignerPolicy {
	policy := SignerPolicy{
		Required:    []membership.Party{initiator},
		MissingCode: CodeMissingInitiatorSignature,
	}
	if initiator != state.Subject() {
		policy.Forbidden = []membership.Party{state.Subject()}
	}
	return policy
}
