package transition

import "github.com/louisbranch/business-network/internal/services/membership/domain/command"

// Rejection codes reported by the validator.
const (
	CodeUnsupportedCommand          = "UNSUPPORTED_COMMAND"
	CodeInvalidTimestamp            = "INVALID_TIMESTAMP"
	CodeInconsistentTransition      = "INCONSISTENT_TRANSITION"
	CodeUnauthorizedSigners         = "UNAUTHORIZED_SIGNERS"
	CodeSignerNotParticipant        = "SIGNER_NOT_PARTICIPANT"
	CodeUnexpectedInputState        = "UNEXPECTED_INPUT_STATE"
	CodeMissingInputState           = "MISSING_INPUT_STATE"
	CodeMissingOutputState          = "MISSING_OUTPUT_STATE"
	CodeUnexpectedOutputState       = "UNEXPECTED_OUTPUT_STATE"
	CodeNonEmptyInitialRoles        = "NON_EMPTY_INITIAL_ROLES"
	CodeWrongInitialStatus          = "WRONG_INITIAL_STATUS"
	CodeMissingRequiredSigner       = "MISSING_REQUIRED_SIGNER"
	CodeAlreadyActive               = "ALREADY_ACTIVE"
	CodeAlreadySuspended            = "ALREADY_SUSPENDED"
	CodeWrongTargetStatus           = "WRONG_TARGET_STATUS"
	CodeRolesChanged                = "ROLES_CHANGED"
	CodeRolesUnchanged              = "ROLES_UNCHANGED"
	CodeBusinessIdentityChanged     = "BUSINESS_IDENTITY_CHANGED"
	CodeBusinessIdentityUnchanged   = "BUSINESS_IDENTITY_UNCHANGED"
	CodeParticipantsChanged         = "PARTICIPANTS_CHANGED"
	CodeUnexpectedSubjectSignature  = "UNEXPECTED_SUBJECT_SIGNATURE"
	CodeMissingInitiator            = "MISSING_INITIATOR"
	CodeMissingInitiatorSignature   = "MISSING_INITIATOR_SIGNATURE"
	CodeStatusMismatch              = "STATUS_MISMATCH"
	CodeInvalidStateForModification = "INVALID_STATE_FOR_MODIFICATION"
)

// Field names reported with INVALID_TIMESTAMP and INCONSISTENT_TRANSITION.
const (
	FieldPrior     = "prior"
	FieldProposed  = "proposed"
	FieldID        = "id"
	FieldNetworkID = "network_id"
	FieldIssuer    = "issuer"
	FieldIssued    = "issued"
	FieldModified  = "modified"
	FieldIdentity  = "identity"
)

func reject(code, message string) *command.Rejection {
	return &command.Rejection{Code: code, Message: message}
}

func rejectField(code, field, message string) *command.Rejection {
	return &command.Rejection{Code: code, Message: message, Field: field}
}
