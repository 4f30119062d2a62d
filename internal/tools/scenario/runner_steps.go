package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "github.com/louisbranch/business-network/internal/platform/errors"
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
	"github.com/louisbranch/business-network/internal/services/membership/ledger"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case stepNetwork:
		return r.runNetworkStep(state, step.Args)
	case stepExpectStatus:
		return r.runExpectStatusStep(ctx, state, step.Args)
	}
	kind := command.Kind(step.Kind)
	if !slices.Contains(command.Kinds(), kind) {
		return r.failf("unknown step kind %q", step.Kind)
	}
	return r.runCommandStep(ctx, state, kind, step.Args)
}

func (r *Runner) runNetworkStep(state *scenarioState, args map[string]any) error {
	if id := stringArg(args, "id"); id != "" {
		state.networkID = id
	}
	operator := membership.Party(stringArg(args, "operator"))
	if operator == "" {
		return r.failf("network operator is required")
	}
	state.operator = operator
	return nil
}

func (r *Runner) runExpectStatusStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	subject := membership.Party(stringArg(args, "member"))
	want := strings.ToLower(stringArg(args, "status"))
	id, known := state.memberships[subject]

	if want == statusRevoked {
		if known {
			return r.assertf("member %s still holds membership %s", subject, id)
		}
		return nil
	}
	if !known {
		return r.assertf("member %s has no membership, want %s", subject, want)
	}
	current, err := r.ledger.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get membership %s: %w", id, err)
	}
	status, ok := membership.NormalizeStatus(want)
	if !ok {
		return r.failf("unknown status %q", want)
	}
	if current.Status != status {
		return r.assertf("member %s status = %s, want %s", subject, current.Status, status)
	}
	if roles, ok, err := rolesArg(args, "roles"); err != nil {
		return r.failf("%v", err)
	} else if ok && !slices.Equal(current.Roles, roles) {
		return r.assertf("member %s roles = %v, want %v", subject, current.Roles, roles)
	}
	return nil
}

func (r *Runner) runCommandStep(ctx context.Context, state *scenarioState, kind command.Kind, args map[string]any) error {
	if state.operator == "" {
		return r.failf("network is required before %s", kind)
	}
	subject := membership.Party(stringArg(args, "member"))
	membershipID, known := state.memberships[subject]

	var base membership.State
	if known && !issues(kind) {
		current, err := r.ledger.Get(ctx, membershipID)
		if err != nil {
			return fmt.Errorf("get membership %s: %w", membershipID, err)
		}
		base = current
	} else {
		membershipID = ""
		base = state.freshMembership(subject)
	}

	proposed, err := r.proposedState(state, kind, base, args)
	if err != nil {
		return r.failf("%s %s: %v", kind, subject, err)
	}
	cmd, signers, err := buildCommand(state, kind, base, args)
	if err != nil {
		return r.failf("%s %s: %v", kind, subject, err)
	}

	receipt, err := r.ledger.Submit(ctx, ledger.Proposal{
		MembershipID: membershipID,
		Proposed:     proposed,
		Command:      cmd,
		Signers:      signers,
	})
	outcome, err := outcomeOf(receipt, err)
	if err != nil {
		return fmt.Errorf("submit %s: %w", kind, err)
	}
	r.logf("%s %s: %s", kind, subject, outcome)

	if outcome == expectAccepted {
		switch {
		case proposed == nil:
			delete(state.memberships, subject)
		case issues(kind):
			state.memberships[subject] = proposed.ID
		}
	}

	expect := stringArg(args, "expect")
	if expect == "" {
		expect = expectAccepted
	}
	if outcome != expect {
		return r.assertf("%s %s: outcome = %s, want %s", kind, subject, outcome, expect)
	}
	return nil
}

// freshMembership is the state a new request for subject starts from.
func (s *scenarioState) freshMembership(subject membership.Party) membership.State {
	now := s.tick()
	participants := []membership.Party{subject}
	if s.operator != subject {
		participants = append(participants, s.operator)
	}
	return membership.State{
		ID:           membership.NewID(),
		Identity:     membership.Identity{Network: subject},
		NetworkID:    s.networkID,
		Status:       membership.StatusPending,
		Participants: participants,
		Issuer:       s.operator,
		Issued:       now,
		Modified:     now,
	}
}

// proposedState applies the command's default change and then any field
// overrides. `output = false` drops the state; `output = true` keeps one for
// revoke.
func (r *Runner) proposedState(state *scenarioState, kind command.Kind, base membership.State, args map[string]any) (*membership.State, error) {
	output := kind != command.KindRevoke
	if value, ok := args["output"].(bool); ok {
		output = value
	}
	if !output {
		return nil, nil
	}

	proposed := base.Clone()
	if !issues(kind) {
		proposed.Modified = state.tick()
	}
	switch kind {
	case command.KindOnboard, command.KindActivate:
		proposed.Status = membership.StatusActive
	case command.KindSuspend:
		proposed.Status = membership.StatusSuspended
	}
	if err := applyOverrides(&proposed, args); err != nil {
		return nil, err
	}
	return &proposed, nil
}

func applyOverrides(proposed *membership.State, args map[string]any) error {
	if value := stringArg(args, "status"); value != "" {
		status, ok := membership.NormalizeStatus(value)
		if !ok {
			return fmt.Errorf("unknown status %q", value)
		}
		proposed.Status = status
	}
	if roles, ok, err := rolesArg(args, "roles"); err != nil {
		return err
	} else if ok {
		proposed.Roles = roles
	}
	if participants, ok, err := partiesArg(args, "participants"); err != nil {
		return err
	} else if ok {
		proposed.Participants = participants
	}
	if business, ok, err := businessArg(args, "business"); err != nil {
		return err
	} else if ok {
		proposed.Identity.Business = business
	}
	if value := stringArg(args, "subject"); value != "" {
		proposed.Identity.Network = membership.Party(value)
	}
	if value := stringArg(args, "issuer"); value != "" {
		proposed.Issuer = membership.Party(value)
	}
	if value := stringArg(args, "network_id"); value != "" {
		proposed.NetworkID = value
	}
	if value := stringArg(args, "id"); value != "" {
		proposed.ID = value
	}
	for key, target := range map[string]*time.Time{"issued": &proposed.Issued, "modified": &proposed.Modified} {
		value := stringArg(args, key)
		if value == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*target = parsed.UTC()
	}
	return nil
}

// buildCommand decodes the step's command envelope. Signers default to the
// parties the command's policy requires; `authenticated` overrides the
// transaction signer set independently.
func buildCommand(state *scenarioState, kind command.Kind, base membership.State, args map[string]any) (command.Command, []membership.Party, error) {
	initiator := membership.Party(stringArg(args, "initiator"))
	if initiator == "" && initiated(kind) {
		initiator = state.operator
	}

	signers, ok, err := partiesArg(args, "signers")
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		signers = defaultSigners(state, kind, base.Subject(), initiator)
	}
	authenticated, ok, err := partiesArg(args, "authenticated")
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		authenticated = signers
	}

	cmd, err := command.Decode(command.Envelope{
		Kind:      kind,
		Signers:   signers,
		Initiator: initiator,
	})
	if err != nil {
		return nil, nil, err
	}
	return cmd, authenticated, nil
}

func defaultSigners(state *scenarioState, kind command.Kind, subject, initiator membership.Party) []membership.Party {
	switch {
	case issues(kind):
		if subject == state.operator {
			return []membership.Party{subject}
		}
		return []membership.Party{subject, state.operator}
	case initiated(kind):
		return []membership.Party{initiator}
	default:
		return []membership.Party{state.operator}
	}
}

// outcomeOf reduces a submission to "accepted", the rejection code, or the
// storage refusal code. Errors that produced no verdict are returned.
func outcomeOf(receipt ledger.Receipt, err error) (string, error) {
	if err == nil {
		return expectAccepted, nil
	}
	code := apperrors.CodeOf(err)
	switch {
	case code == apperrors.CodeTransitionRejected:
		reason, _ := receipt.Decision.Reason()
		return reason.Code, nil
	case receipt.Verdict.ID != "" && code != apperrors.CodeStorageFailure:
		return string(code), nil
	default:
		return "", err
	}
}

func issues(kind command.Kind) bool {
	return kind == command.KindRequest || kind == command.KindOnboard
}

func initiated(kind command.Kind) bool {
	return kind == command.KindModifyRoles || kind == command.KindModifyBusinessIdentity
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}

func stringsArg(args map[string]any, key string) ([]string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return nil, false, nil
	}
	switch value := raw.(type) {
	case string:
		return []string{value}, true, nil
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			text, isString := item.(string)
			if !isString {
				return nil, false, fmt.Errorf("%s must be a list of strings", key)
			}
			out = append(out, text)
		}
		return out, true, nil
	default:
		return nil, false, fmt.Errorf("%s must be a list of strings", key)
	}
}

func partiesArg(args map[string]any, key string) ([]membership.Party, bool, error) {
	values, ok, err := stringsArg(args, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	parties := make([]membership.Party, 0, len(values))
	for _, value := range values {
		parties = append(parties, membership.Party(strings.TrimSpace(value)))
	}
	return parties, true, nil
}

func rolesArg(args map[string]any, key string) (membership.Roles, bool, error) {
	values, ok, err := stringsArg(args, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	roles := membership.NewRoles(values...)
	if len(roles) == 0 {
		roles = nil
	}
	return roles, true, nil
}

// businessArg accepts raw JSON text or a Lua table.
func businessArg(args map[string]any, key string) (membership.BusinessIdentity, bool, error) {
	raw, ok := args[key]
	if !ok {
		return nil, false, nil
	}
	switch value := raw.(type) {
	case string:
		if !json.Valid([]byte(value)) {
			return nil, false, fmt.Errorf("%s is not valid JSON", key)
		}
		return membership.BusinessIdentity(value), true, nil
	case []any:
		if len(value) == 0 {
			return nil, true, nil
		}
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, false, fmt.Errorf("encode %s: %w", key, err)
	}
	return encoded, true, nil
}
