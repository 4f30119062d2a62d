package transition

import (
	"testing"
	"time"

	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

func TestCommonChecks(t *testing.T) {
	runDecisionCases(t, []decisionCase{
		{
			name: "prior modified before issued",
			req: Request{
				Prior:   with(activeState(), func(s *membership.State) { s.Modified = issuedAt.Add(-time.Second) }),
				Command: command.Revoke{Signers: parties(member)},
				Signers: parties(member),
			},
			wantCode:  CodeInvalidTimestamp,
			wantField: FieldPrior,
		},
		{
			name: "proposed modified before issued",
			req: Request{
				Proposed: with(pendingState(), func(s *membership.State) { s.Modified = issuedAt.Add(-time.Second) }),
				Command:  command.Request{Signers: parties(member, bno)},
				Signers:  parties(member, bno),
			},
			wantCode:  CodeInvalidTimestamp,
			wantField: FieldProposed,
		},
		{
			name: "network id changed",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), combine(status(membership.StatusActive), func(s *membership.State) { s.NetworkID = "other-network" })),
				Command:  command.Activate{Signers: parties(bno)},
				Signers:  parties(bno),
			},
			wantCode:  CodeInconsistentTransition,
			wantField: FieldNetworkID,
		},
		{
			name: "issuer changed",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), combine(status(membership.StatusActive), func(s *membership.State) { s.Issuer = member })),
				Command:  command.Activate{Signers: parties(bno)},
				Signers:  parties(bno),
			},
			wantCode:  CodeInconsistentTransition,
			wantField: FieldIssuer,
		},
		{
			name: "issued changed",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), combine(status(membership.StatusActive), func(s *membership.State) { s.Issued = issuedAt.Add(-100 * time.Second) })),
				Command:  command.Activate{Signers: parties(bno)},
				Signers:  parties(bno),
			},
			wantCode:  CodeInconsistentTransition,
			wantField: FieldIssued,
		},
		{
			name: "membership id changed",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), combine(status(membership.StatusActive), func(s *membership.State) { s.ID = "membership-2" })),
				Command:  command.Activate{Signers: parties(bno)},
				Signers:  parties(bno),
			},
			wantCode:  CodeInconsistentTransition,
			wantField: FieldID,
		},
		{
			name: "modified moves backwards",
			req: Request{
				Prior:    with(pendingState(), func(s *membership.State) { s.Modified = issuedAt.Add(200 * time.Second) }),
				Proposed: with(pendingState(), combine(status(membership.StatusActive), func(s *membership.State) { s.Modified = issuedAt.Add(100 * time.Second) })),
				Command:  command.Activate{Signers: parties(bno)},
				Signers:  parties(bno),
			},
			wantCode:  CodeInconsistentTransition,
			wantField: FieldModified,
		},
		{
			name: "network identity changed",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), combine(status(membership.StatusActive), func(s *membership.State) { s.Identity.Network = bno })),
				Command:  command.Activate{Signers: parties(bno)},
				Signers:  parties(bno),
			},
			wantCode:  CodeInconsistentTransition,
			wantField: FieldIdentity,
		},
		{
			name: "declared signers exceed authenticated signers",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), status(membership.StatusActive)),
				Command:  command.Activate{Signers: parties(bno, member)},
				Signers:  parties(bno),
			},
			wantCode: CodeUnauthorizedSigners,
		},
		{
			name: "authenticated signers exceed declared signers",
			req: Request{
				Prior:    with(pendingState(), nil),
				Proposed: with(pendingState(), status(membership.StatusActive)),
				Command:  command.Activate{Signers: parties(bno)},
				Signers:  parties(bno, member),
			},
			wantCode: CodeUnauthorizedSigners,
		},
		{
			name: "signer outside proposed participants",
			req: Request{
				Proposed: with(pendingState(), withParticipants(member)),
				Command:  command.Request{Signers: parties(bno)},
				Signers:  parties(bno),
			},
			wantCode: CodeSignerNotParticipant,
		},
		{
			name: "terminal transition draws signers from prior participants",
			req: Request{
				Prior:   with(activeState(), withParticipants(member)),
				Command: command.Revoke{Signers: parties(bno)},
				Signers: parties(bno),
			},
			wantCode: CodeSignerNotParticipant,
		},
	})
}

func TestCommonChecksAllowSameTimestamps(t *testing.T) {
	state := pendingState()
	if !state.Modified.Equal(state.Issued) {
		t.Fatal("expected fixture with equal timestamps")
	}
	assertDecision(t, Validate(Request{
		Proposed: &state,
		Command:  command.Request{Signers: parties(member, bno)},
		Signers:  parties(member, bno),
	}), "", "")
}

func TestCommonChecksIgnoreSignerOrderAndDuplicates(t *testing.T) {
	assertDecision(t, Validate(Request{
		Proposed: with(pendingState(), nil),
		Command:  command.Request{Signers: parties(bno, member, bno)},
		Signers:  parties(member, bno),
	}), "", "")
}

func TestCommonChecksRunBeforeStateRules(t *testing.T) {
	// The prior timestamp fails before Request rejects the prior state.
	decision := Validate(Request{
		Prior:   with(activeState(), func(s *membership.State) { s.Modified = issuedAt.Add(-time.Minute) }),
		Command: command.Request{Signers: parties(member, bno)},
		Signers: parties(member, bno),
	})
	assertDecision(t, decision, CodeInvalidTimestamp, FieldPrior)
}
