// Package errors provides structured errors for membership ledger callers.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Transition errors
	CodeTransitionRejected Code = "TRANSITION_REJECTED"
	CodeCommandInvalid     Code = "COMMAND_INVALID"
	CodeProposalInvalid    Code = "PROPOSAL_INVALID"

	// Membership storage errors
	CodeMembershipNotFound      Code = "MEMBERSHIP_NOT_FOUND"
	CodeMembershipAlreadyExists Code = "MEMBERSHIP_ALREADY_EXISTS"
	CodeMembershipConflict      Code = "MEMBERSHIP_CONFLICT"

	// Listing errors
	CodeFilterInvalid    Code = "FILTER_INVALID"
	CodePageTokenInvalid Code = "PAGE_TOKEN_INVALID"

	// Infrastructure errors
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed input
	case CodeCommandInvalid,
		CodeProposalInvalid,
		CodeFilterInvalid,
		CodePageTokenInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - the membership state does not allow the transition
	case CodeTransitionRejected:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeMembershipNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeMembershipAlreadyExists:
		return codes.AlreadyExists

	// Aborted - concurrent writer won
	case CodeMembershipConflict:
		return codes.Aborted

	case CodeStorageFailure:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
