// Package ledger admits membership transitions into storage. It is the
// reference execution environment for the transition validator: it loads the
// consumed state, validates the proposal, audits the verdict, and commits
// accepted transitions under optimistic concurrency.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/business-network/internal/platform/errors"
	"github.com/louisbranch/business-network/internal/platform/otel"
	"github.com/louisbranch/business-network/internal/platform/pagination"
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
	"github.com/louisbranch/business-network/internal/services/membership/domain/transition"
	"github.com/louisbranch/business-network/internal/services/membership/storage"
	"go.opentelemetry.io/otel/attribute"
)

var pageSizes = pagination.PageSizeConfig{Default: 50, Max: 200}

// Config wires a ledger to its collaborators.
type Config struct {
	Memberships storage.MembershipStore
	Verdicts    storage.VerdictStore
	// Validator defaults to the core membership validator.
	Validator *transition.Validator
	// Now defaults to time.Now.
	Now func() time.Time
	// Logger defaults to discarding output.
	Logger *log.Logger
}

// Ledger admits membership transitions.
type Ledger struct {
	memberships storage.MembershipStore
	verdicts    storage.VerdictStore
	validator   *transition.Validator
	now         func() time.Time
	logger      *log.Logger
}

// New builds a ledger from cfg.
func New(cfg Config) (*Ledger, error) {
	if cfg.Memberships == nil {
		return nil, errors.New("membership store is required")
	}
	if cfg.Verdicts == nil {
		return nil, errors.New("verdict store is required")
	}
	l := &Ledger{
		memberships: cfg.Memberships,
		verdicts:    cfg.Verdicts,
		validator:   cfg.Validator,
		now:         cfg.Now,
		logger:      cfg.Logger,
	}
	if l.validator == nil {
		l.validator = transition.NewCoreValidator()
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard, "", 0)
	}
	return l, nil
}

// Proposal is one requested transition.
type Proposal struct {
	// MembershipID names the consumed membership; empty for commands that
	// issue a new one.
	MembershipID string
	// Proposed is the produced state; nil for commands that terminate.
	Proposed *membership.State
	Command  command.Command
	// Signers is the authenticated signer set.
	Signers []membership.Party
}

// Receipt reports how a proposal was handled.
type Receipt struct {
	Decision command.Decision
	Verdict  storage.Verdict
	// State is the committed state, or nil when nothing was committed or the
	// membership was revoked.
	State *membership.State
}

// Submit validates and, when accepted, commits a proposal. Rejections return
// a TRANSITION_REJECTED error alongside a receipt carrying the decision.
func (l *Ledger) Submit(ctx context.Context, proposal Proposal) (receipt Receipt, err error) {
	if proposal.Command == nil {
		return Receipt{}, apperrors.New(apperrors.CodeCommandInvalid, "command is required")
	}
	if proposal.Proposed != nil && strings.TrimSpace(proposal.Proposed.ID) == "" {
		return Receipt{}, apperrors.New(apperrors.CodeProposalInvalid, "proposed membership id is required")
	}
	membershipID := strings.TrimSpace(proposal.MembershipID)
	kind := proposal.Command.Kind()

	ctx, span := otel.StartSpan(ctx, "ledger.Submit",
		attribute.String("membership.command", string(kind)),
		attribute.String("membership.id", membershipID),
	)
	defer func() {
		if receipt.Verdict.Outcome != "" {
			span.SetAttributes(attribute.String("membership.outcome", string(receipt.Verdict.Outcome)))
		}
		otel.EndSpan(span, infrastructureError(err))
	}()

	var prior *membership.State
	if membershipID != "" {
		state, err := l.memberships.GetMembership(ctx, membershipID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Receipt{}, apperrors.Wrap(apperrors.CodeMembershipNotFound, "membership "+membershipID+" not found", err)
			}
			return Receipt{}, apperrors.Wrap(apperrors.CodeStorageFailure, "load membership", err)
		}
		prior = &state
	}
	var proposed *membership.State
	if proposal.Proposed != nil {
		proposed = proposal.Proposed.Ptr()
		proposed.Issued = storage.Timestamp(proposed.Issued)
		proposed.Modified = storage.Timestamp(proposed.Modified)
	}

	decision := l.validator.Validate(transition.Request{
		Prior:    prior,
		Proposed: proposed,
		Command:  proposal.Command,
		Signers:  append([]membership.Party(nil), proposal.Signers...),
	})
	receipt = Receipt{
		Decision: decision,
		Verdict:  l.verdict(decision, kind, prior, proposed, proposal.Signers),
	}

	if !decision.Accepted() {
		if err := l.record(ctx, receipt.Verdict); err != nil {
			return receipt, err
		}
		reason, _ := decision.Reason()
		l.logger.Printf("%s %s rejected: %s", kind, receipt.Verdict.MembershipID, decision)
		return receipt, RejectionError(kind, reason)
	}

	if commitErr := l.memberships.Commit(ctx, prior, proposed); commitErr != nil {
		code := commitErrorCode(commitErr)
		receipt.Verdict.Outcome = storage.OutcomeRejected
		receipt.Verdict.Reason = string(code)
		receipt.Verdict.Message = commitErr.Error()
		if err := l.record(ctx, receipt.Verdict); err != nil {
			l.logger.Printf("%s %s: record failed commit: %v", kind, receipt.Verdict.MembershipID, err)
		}
		return receipt, apperrors.Wrap(code, fmt.Sprintf("commit %s", kind), commitErr)
	}
	if err := l.record(ctx, receipt.Verdict); err != nil {
		return receipt, err
	}
	if proposed != nil {
		receipt.State = proposed.Ptr()
	}
	l.logger.Printf("%s %s accepted", kind, receipt.Verdict.MembershipID)
	return receipt, nil
}

// Get returns the current state of a membership.
func (l *Ledger) Get(ctx context.Context, id string) (membership.State, error) {
	state, err := l.memberships.GetMembership(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return membership.State{}, apperrors.Wrap(apperrors.CodeMembershipNotFound, "membership "+id+" not found", err)
		}
		return membership.State{}, apperrors.Wrap(apperrors.CodeStorageFailure, "get membership", err)
	}
	return state, nil
}

// List pages current memberships of a network; an empty networkID lists all.
func (l *Ledger) List(ctx context.Context, networkID string, pageSize int, pageToken string) (storage.MembershipPage, error) {
	page, err := l.memberships.ListMemberships(ctx, networkID, pagination.ClampPageSize(pageSize, pageSizes), pageToken)
	if err != nil {
		return storage.MembershipPage{}, apperrors.Wrap(apperrors.CodeStorageFailure, "list memberships", err)
	}
	return page, nil
}

// Verdicts pages the audit log with an AIP-160 filter.
func (l *Ledger) Verdicts(ctx context.Context, filter string, pageSize int, pageToken string) (storage.VerdictPage, error) {
	page, err := l.verdicts.ListVerdicts(ctx, filter, pagination.ClampPageSize(pageSize, pageSizes), pageToken)
	switch {
	case err == nil:
		return page, nil
	case errors.Is(err, storage.ErrInvalidFilter):
		return storage.VerdictPage{}, apperrors.Wrap(apperrors.CodeFilterInvalid, err.Error(), err)
	case errors.Is(err, storage.ErrInvalidPageToken):
		return storage.VerdictPage{}, apperrors.Wrap(apperrors.CodePageTokenInvalid, err.Error(), err)
	default:
		return storage.VerdictPage{}, apperrors.Wrap(apperrors.CodeStorageFailure, "list verdicts", err)
	}
}

func (l *Ledger) verdict(decision command.Decision, kind command.Kind, prior, proposed *membership.State, signers []membership.Party) storage.Verdict {
	verdict := storage.VerdictFromDecision(decision)
	verdict.ID = uuid.NewString()
	verdict.Command = kind
	verdict.Signers = append([]membership.Party(nil), signers...)
	verdict.RecordedAt = l.now().UTC()
	switch {
	case prior != nil:
		verdict.MembershipID = prior.ID
		verdict.NetworkID = prior.NetworkID
	case proposed != nil:
		verdict.MembershipID = proposed.ID
		verdict.NetworkID = proposed.NetworkID
	}
	return verdict
}

func (l *Ledger) record(ctx context.Context, verdict storage.Verdict) error {
	if err := l.verdicts.AppendVerdict(ctx, verdict); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, "record verdict", err)
	}
	return nil
}

// RejectionError reports a rejected transition as a TRANSITION_REJECTED
// error whose metadata names the command, reason code, and field.
func RejectionError(kind command.Kind, reason command.Rejection) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeTransitionRejected,
		fmt.Sprintf("%s rejected: %s", kind, reason.Message),
		rejectionMetadata(kind, reason),
	)
}

func rejectionMetadata(kind command.Kind, reason command.Rejection) map[string]string {
	metadata := map[string]string{
		apperrors.MetadataCommand: string(kind),
		apperrors.MetadataReason:  reason.Code,
	}
	if reason.Field != "" {
		metadata[apperrors.MetadataField] = reason.Field
	}
	return metadata
}

func commitErrorCode(err error) apperrors.Code {
	switch {
	case errors.Is(err, storage.ErrConflict):
		return apperrors.CodeMembershipConflict
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.CodeMembershipAlreadyExists
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.CodeMembershipNotFound
	default:
		return apperrors.CodeStorageFailure
	}
}

// infrastructureError hides rejections from span status; only failures to
// reach a verdict or commit mark the span as errored.
func infrastructureError(err error) error {
	if apperrors.CodeOf(err) == apperrors.CodeTransitionRejected {
		return nil
	}
	return err
}
