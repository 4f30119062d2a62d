package transition

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

const (
	member   membership.Party = "O=Member,L=London,C=GB"
	bno      membership.Party = "O=BNO,L=London,C=GB"
	observer membership.Party = "O=Observer,L=Zurich,C=CH"
)

var issuedAt = time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

// pendingState mirrors a freshly requested membership.
func pendingState() membership.State {
	return membership.State{
		ID:           "membership-1",
		Identity:     membership.Identity{Network: member},
		NetworkID:    "network-id",
		Status:       membership.StatusPending,
		Participants: []membership.Party{member, bno},
		Issuer:       bno,
		Issued:       issuedAt,
		Modified:     issuedAt,
	}
}

func activeState() membership.State {
	state := pendingState()
	state.Status = membership.StatusActive
	return state
}

// with returns a pointer to a mutated copy of state.
func with(state membership.State, mutate func(*membership.State)) *membership.State {
	clone := state.Clone()
	if mutate != nil {
		mutate(&clone)
	}
	return &clone
}

func status(value membership.Status) func(*membership.State) {
	return func(s *membership.State) { s.Status = value }
}

func withRoles(roles ...string) func(*membership.State) {
	return func(s *membership.State) { s.Roles = membership.NewRoles(roles...) }
}

func withBusiness(doc string) func(*membership.State) {
	return func(s *membership.State) { s.Identity.Business = json.RawMessage(doc) }
}

func withParticipants(parties ...membership.Party) func(*membership.State) {
	return func(s *membership.State) { s.Participants = parties }
}

func combine(mutations ...func(*membership.State)) func(*membership.State) {
	return func(s *membership.State) {
		for _, mutate := range mutations {
			mutate(s)
		}
	}
}

func parties(values ...membership.Party) []membership.Party {
	return values
}

type decisionCase struct {
	name      string
	req       Request
	wantCode  string
	wantField string
}

func runDecisionCases(t *testing.T, cases []decisionCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertDecision(t, Validate(tc.req), tc.wantCode, tc.wantField)
		})
	}
}

// assertDecision expects acceptance when wantCode is empty.
func assertDecision(t *testing.T, decision command.Decision, wantCode, wantField string) {
	t.Helper()
	reason, rejected := decision.Reason()
	if wantCode == "" {
		if rejected {
			t.Fatalf("decision = %s (%s), want accepted", decision, reason.Message)
		}
		return
	}
	if !rejected {
		t.Fatalf("decision = accepted, want %s", wantCode)
	}
	if reason.Code != wantCode {
		t.Fatalf("rejection code = %s (%s), want %s", reason.Code, reason.Message, wantCode)
	}
	if reason.Field != wantField {
		t.Fatalf("rejection field = %q, want %q", reason.Field, wantField)
	}
	if reason.Message == "" {
		t.Fatal("expected rejection message")
	}
}
