// Package storage defines persistence contracts for membership ledger state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrConflict indicates the stored membership changed since the prior
	// state was read.
	ErrConflict = errors.New("record changed concurrently")
	// ErrInvalidFilter indicates a listing filter that cannot be parsed.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidPageToken indicates a page token the store did not issue.
	ErrInvalidPageToken = errors.New("invalid page token")
)

// Timestamp truncates value to the millisecond UTC resolution stores keep.
func Timestamp(value time.Time) time.Time {
	return time.UnixMilli(value.UnixMilli()).UTC()
}

// MembershipPage stores one page of memberships.
type MembershipPage struct {
	Memberships   []membership.State
	NextPageToken string
}

// MembershipStore persists the current state of each membership.
type MembershipStore interface {
	GetMembership(ctx context.Context, id string) (membership.State, error)
	// ListMemberships pages memberships in id order; an empty networkID
	// lists every network.
	ListMemberships(ctx context.Context, networkID string, pageSize int, pageToken string) (MembershipPage, error)
	// Commit replaces prior with proposed atomically. A nil prior inserts, a
	// nil proposed deletes. It returns ErrConflict when the stored row no
	// longer equals prior.
	Commit(ctx context.Context, prior, proposed *membership.State) error
}

// Outcome labels a verdict for filtering.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Verdict is one audit record of a validated proposal.
type Verdict struct {
	ID           string
	MembershipID string
	NetworkID    string
	Command      command.Kind
	Outcome      Outcome
	// Reason and Field are empty for accepted proposals.
	Reason     string
	Field      string
	Message    string
	Signers    []membership.Party
	RecordedAt time.Time
}

// Accepted reports whether the verdict admitted the transition.
func (v Verdict) Accepted() bool {
	return v.Outcome == OutcomeAccepted
}

// VerdictFromDecision builds the audit fields of a decision.
func VerdictFromDecision(decision command.Decision) Verdict {
	reason, rejected := decision.Reason()
	if !rejected {
		return Verdict{Outcome: OutcomeAccepted}
	}
	return Verdict{
		Outcome: OutcomeRejected,
		Reason:  reason.Code,
		Field:   reason.Field,
		Message: reason.Message,
	}
}

// VerdictPage stores one page of verdicts.
type VerdictPage struct {
	Verdicts      []Verdict
	NextPageToken string
}

// VerdictStore persists the verdict audit log.
type VerdictStore interface {
	AppendVerdict(ctx context.Context, verdict Verdict) error
	// ListVerdicts pages verdicts oldest first. filter is an AIP-160
	// expression over the verdict fields; empty matches everything.
	ListVerdicts(ctx context.Context, filter string, pageSize int, pageToken string) (VerdictPage, error)
}
