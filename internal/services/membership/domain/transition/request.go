package transition

import (
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

// Request is one proposed transition. It is built per validation call and
// never retained.
type Request struct {
	// Prior is the consumed state; nil when the command creates a membership.
	Prior *membership.State
	// Proposed is the produced state; nil when the command terminates a membership.
	Proposed *membership.State
	Command  command.Command
	// Signers is the cryptographically authenticated signer set.
	Signers []membership.Party
}

// declaredSigners returns the command's self-declared signers.
func (r Request) declaredSigners() []membership.Party {
	if r.Command == nil {
		return nil
	}
	return r.Command.DeclaredSigners()
}

// participants returns the participant set signers are drawn from: the
// proposed state's, or the prior state's for terminal transitions.
func (r Request) participants() ([]membership.Party, bool) {
	if r.Proposed != nil {
		return r.Proposed.Participants, true
	}
	if r.Prior != nil {
		return r.Prior.Participants, true
	}
	return nil, false
}
