package transition

import (
	"testing"

	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

func TestRequestRules(t *testing.T) {
	both := parties(member, bno)
	runDecisionCases(t, []decisionCase{
		{
			name: "accepted",
			req:  Request{Proposed: with(pendingState(), nil), Command: command.Request{Signers: both}, Signers: both},
		},
		{
			name: "accepted with business identity",
			req: Request{
				Proposed: with(pendingState(), withBusiness(`{"lei":"5493001KJTIIGC8Y1R12"}`)),
				Command:  command.Request{Signers: both},
				Signers:  both,
			},
		},
		{
			name: "consumes existing membership",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), nil),
				Command:  command.Request{Signers: both},
				Signers:  both,
			},
			wantCode: CodeUnexpectedInputState,
		},
		{
			name:     "produces no membership",
			req:      Request{Command: command.Request{Signers: both}, Signers: both},
			wantCode: CodeMissingOutputState,
		},
		{
			name:     "issued active",
			req:      Request{Proposed: with(pendingState(), status(membership.StatusActive)), Command: command.Request{Signers: both}, Signers: both},
			wantCode: CodeWrongInitialStatus,
		},
		{
			name:     "issued with roles",
			req:      Request{Proposed: with(pendingState(), withRoles("operator")), Command: command.Request{Signers: both}, Signers: both},
			wantCode: CodeNonEmptyInitialRoles,
		},
		{
			name:     "member did not sign",
			req:      Request{Proposed: with(pendingState(), nil), Command: command.Request{Signers: parties(bno)}, Signers: parties(bno)},
			wantCode: CodeMissingRequiredSigner,
		},
		{
			name:     "issuer did not sign",
			req:      Request{Proposed: with(pendingState(), nil), Command: command.Request{Signers: parties(member)}, Signers: parties(member)},
			wantCode: CodeMissingRequiredSigner,
		},
		{
			name: "extra participant signs",
			req: Request{
				Proposed: with(pendingState(), withParticipants(member, bno, observer)),
				Command:  command.Request{Signers: parties(member, bno, observer)},
				Signers:  parties(member, bno, observer),
			},
			wantCode: CodeUnauthorizedSigners,
		},
	})
}

func TestOnboardRules(t *testing.T) {
	both := parties(member, bno)
	runDecisionCases(t, []decisionCase{
		{
			name: "accepted",
			req:  Request{Proposed: with(activeState(), nil), Command: command.Onboard{Signers: both}, Signers: both},
		},
		{
			name: "consumes existing membership",
			req: Request{
				Prior:    with(activeState(), nil),
				Proposed: with(activeState(), nil),
				Command:  command.Onboard{Signers: both},
				Signers:  both,
			},
			wantCode: CodeUnexpectedInputState,
		},
		{
			name:     "issued pending",
			req:      Request{Proposed: with(pendingState(), nil), Command: command.Onboard{Signers: both}, Signers: both},
			wantCode: CodeWrongInitialStatus,
		},
		{
			name:     "issued with roles",
			req:      Request{Proposed: with(activeState(), withRoles("operator")), Command: command.Onboard{Signers: both}, Signers: both},
			wantCode: CodeNonEmptyInitialRoles,
		},
		{
			name:     "member did not sign",
			req:      Request{Proposed: with(activeState(), nil), Command: command.Onboard{Signers: parties(bno)}, Signers: parties(bno)},
			wantCode: CodeMissingRequiredSigner,
		},
	})
}

func TestIssueBySelfIssuedMembershipNeedsOneSigner(t *testing.T) {
	operator := with(pendingState(), func(s *membership.State) {
		s.Identity.Network = bno
		s.Participants = parties(bno)
	})
	assertDecision(t, Validate(Request{
		Proposed: operator,
		Command:  command.Request{Signers: parties(bno)},
		Signers:  parties(bno),
	}), "", "")
}
