package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

var (
	// ErrKindRequired indicates an envelope without a command kind.
	ErrKindRequired = errors.New("command kind is required")
	// ErrKindUnknown indicates an envelope naming an unknown command kind.
	ErrKindUnknown = errors.New("command kind is not known")
	// ErrInitiatorForbidden indicates an initiator on a command that has none.
	ErrInitiatorForbidden = errors.New("initiator is only valid for role and business identity modifications")
)

// Envelope is the serialized form of a command.
type Envelope struct {
	Kind      Kind               `json:"kind"`
	Signers   []membership.Party `json:"signers"`
	Initiator membership.Party   `json:"initiator,omitempty"`
}

// Decode converts an envelope into its command variant.
func Decode(env Envelope) (Command, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(string(env.Kind))))
	if kind == "" {
		return nil, ErrKindRequired
	}
	signers := append([]membership.Party(nil), env.Signers...)
	initiator := membership.Party(strings.TrimSpace(string(env.Initiator)))
	if initiator != "" && kind != KindModifyRoles && kind != KindModifyBusinessIdentity {
		return nil, ErrInitiatorForbidden
	}
	switch kind {
	case KindRequest:
		return Request{Signers: signers}, nil
	case KindOnboard:
		return Onboard{Signers: signers}, nil
	case KindActivate:
		return Activate{Signers: signers}, nil
	case KindSuspend:
		return Suspend{Signers: signers}, nil
	case KindRevoke:
		return Revoke{Signers: signers}, nil
	case KindModifyRoles:
		return ModifyRoles{Signers: signers, Initiator: initiator}, nil
	case KindModifyBusinessIdentity:
		return ModifyBusinessIdentity{Signers: signers, Initiator: initiator}, nil
	case KindModifyParticipants:
		return ModifyParticipants{Signers: signers}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrKindUnknown, kind)
	}
}

// Encode converts a command variant into its envelope.
func Encode(cmd Command) (Envelope, error) {
	if cmd == nil {
		return Envelope{}, ErrKindRequired
	}
	env := Envelope{
		Kind:    cmd.Kind(),
		Signers: append([]membership.Party(nil), cmd.DeclaredSigners()...),
	}
	if initiated, ok := cmd.(Initiated); ok {
		env.Initiator = initiated.InitiatedBy()
	}
	return env, nil
}
