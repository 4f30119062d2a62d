package command

import "github.com/louisbranch/business-network/internal/services/membership/domain/membership"

// Kind identifies a membership command variant.
type Kind string

const (
	KindRequest                Kind = "request"
	KindOnboard                Kind = "onboard"
	KindActivate               Kind = "activate"
	KindSuspend                Kind = "suspend"
	KindRevoke                 Kind = "revoke"
	KindModifyRoles            Kind = "modify_roles"
	KindModifyBusinessIdentity Kind = "modify_business_identity"
	KindModifyParticipants     Kind = "modify_participants"
)

// Kinds returns every command kind in lifecycle order.
func Kinds() []Kind {
	return []Kind{
		KindRequest,
		KindOnboard,
		KindActivate,
		KindSuspend,
		KindRevoke,
		KindModifyRoles,
		KindModifyBusinessIdentity,
		KindModifyParticipants,
	}
}

// Command is implemented by every membership command variant.
type Command interface {
	Kind() Kind
	// DeclaredSigners returns the signers the command author claims are required.
	DeclaredSigners() []membership.Party
	command()
}

// Initiated is implemented by commands whose signer policy depends on who
// started the change.
type Initiated interface {
	Command
	InitiatedBy() membership.Party
}

// Request asks the operator to admit a new member in pending status.
type Request struct {
	Signers []membership.Party
}

// Onboard admits a new member directly in active status.
type Onboard struct {
	Signers []membership.Party
}

// Activate moves a pending or suspended membership to active.
type Activate struct {
	Signers []membership.Party
}

// Suspend moves a pending or active membership to suspended.
type Suspend struct {
	Signers []membership.Party
}

// Revoke terminates a membership.
type Revoke struct {
	Signers []membership.Party
}

// ModifyRoles changes the role set of an active or suspended membership.
type ModifyRoles struct {
	Signers   []membership.Party
	Initiator membership.Party
}

// ModifyBusinessIdentity changes the business identity payload.
type ModifyBusinessIdentity struct {
	Signers   []membership.Party
	Initiator membership.Party
}

// ModifyParticipants changes who may observe and sign membership transitions.
type ModifyParticipants struct {
	Signers []membership.Party
}

func (Request) Kind() Kind                { return KindRequest }
func (Onboard) Kind() Kind                { return KindOnboard }
func (Activate) Kind() Kind               { return KindActivate }
func (Suspend) Kind() Kind                { return KindSuspend }
func (Revoke) Kind() Kind                 { return KindRevoke }
func (ModifyRoles) Kind() Kind            { return KindModifyRoles }
func (ModifyBusinessIdentity) Kind() Kind { return KindModifyBusinessIdentity }
func (ModifyParticipants) Kind() Kind     { return KindModifyParticipants }

func (c Request) DeclaredSigners() []membership.Party                { return c.Signers }
func (c Onboard) DeclaredSigners() []membership.Party                { return c.Signers }
func (c Activate) DeclaredSigners() []membership.Party               { return c.Signers }
func (c Suspend) DeclaredSigners() []membership.Party                { return c.Signers }
func (c Revoke) DeclaredSigners() []membership.Party                 { return c.Signers }
func (c ModifyRoles) DeclaredSigners() []membership.Party            { return c.Signers }
func (c ModifyBusinessIdentity) DeclaredSigners() []membership.Party { return c.Signers }
func (c ModifyParticipants) DeclaredSigners() []membership.Party     { return c.Signers }

func (c ModifyRoles) InitiatedBy() membership.Party            { return c.Initiator }
func (c ModifyBusinessIdentity) InitiatedBy() membership.Party { return c.Initiator }

func (Request) command()                {}
func (Onboard) command()                {}
func (Activate) command()               {}
func (Suspend) command()                {}
func (Revoke) command()                 {}
func (ModifyRoles) command()            {}
func (ModifyBusinessIdentity) command() {}
func (ModifyParticipants) command()     {}
