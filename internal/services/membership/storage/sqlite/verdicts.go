package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/louisbranch/business-network/internal/platform/pagination"
	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
	"github.com/louisbranch/business-network/internal/services/membership/storage"
	"github.com/louisbranch/business-network/internal/services/membership/storage/filter"
)

// AppendVerdict records one verdict. A missing id or timestamp is filled in.
func (s *Store) AppendVerdict(ctx context.Context, verdict storage.Verdict) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(string(verdict.Command)) == "" {
		return fmt.Errorf("verdict command is required")
	}
	switch verdict.Outcome {
	case storage.OutcomeAccepted, storage.OutcomeRejected:
	default:
		return fmt.Errorf("verdict outcome %q is invalid", verdict.Outcome)
	}
	if strings.TrimSpace(verdict.ID) == "" {
		verdict.ID = uuid.NewString()
	}
	if verdict.RecordedAt.IsZero() {
		verdict.RecordedAt = s.now()
	}
	signers, err := encodeList(verdict.Signers)
	if err != nil {
		return fmt.Errorf("encode signers: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO verdicts (
		   id, membership_id, network_id, command, outcome, reason, field, message, signers, recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		verdict.ID,
		verdict.MembershipID,
		verdict.NetworkID,
		string(verdict.Command),
		string(verdict.Outcome),
		verdict.Reason,
		verdict.Field,
		verdict.Message,
		signers,
		toMillis(verdict.RecordedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append verdict: %w", err)
	}
	return nil
}

// ListVerdicts returns one page of verdicts in recording order.
func (s *Store) ListVerdicts(ctx context.Context, filterStr string, pageSize int, pageToken string) (storage.VerdictPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.VerdictPage{}, err
	}
	if pageSize <= 0 {
		return storage.VerdictPage{}, fmt.Errorf("page size must be greater than zero")
	}
	cond, err := filter.ParseVerdictFilter(filterStr)
	if err != nil {
		return storage.VerdictPage{}, fmt.Errorf("%w: %v", storage.ErrInvalidFilter, err)
	}
	offset, err := pagination.DecodeOffset(pageToken)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidPageToken) {
			return storage.VerdictPage{}, storage.ErrInvalidPageToken
		}
		return storage.VerdictPage{}, err
	}

	query := `SELECT id, membership_id, network_id, command, outcome, reason, field, message, signers, recorded_at
	            FROM verdicts`
	params := make([]any, 0, len(cond.Params)+2)
	if !cond.Empty() {
		query += ` WHERE ` + cond.Clause
		params = append(params, cond.Params...)
	}
	query += ` ORDER BY seq ASC LIMIT ? OFFSET ?`
	params = append(params, pageSize+1, offset)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.VerdictPage{}, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	page := storage.VerdictPage{
		Verdicts: make([]storage.Verdict, 0, pageSize),
	}
	for rows.Next() {
		var (
			verdict    storage.Verdict
			kind       string
			outcome    string
			signers    string
			recordedAt int64
		)
		if err := rows.Scan(
			&verdict.ID,
			&verdict.MembershipID,
			&verdict.NetworkID,
			&kind,
			&outcome,
			&verdict.Reason,
			&verdict.Field,
			&verdict.Message,
			&signers,
			&recordedAt,
		); err != nil {
			return storage.VerdictPage{}, fmt.Errorf("list verdicts: %w", err)
		}
		verdict.Command = command.Kind(kind)
		verdict.Outcome = storage.Outcome(outcome)
		verdict.Signers, err = decodeList[membership.Party](signers)
		if err != nil {
			return storage.VerdictPage{}, fmt.Errorf("decode signers: %w", err)
		}
		verdict.RecordedAt = fromMillis(recordedAt)
		page.Verdicts = append(page.Verdicts, verdict)
	}
	if err := rows.Err(); err != nil {
		return storage.VerdictPage{}, fmt.Errorf("list verdicts: %w", err)
	}
	if len(page.Verdicts) > pageSize {
		page.Verdicts = page.Verdicts[:pageSize]
		page.NextPageToken = pagination.EncodeOffset(offset + pageSize)
	}
	return page, nil
}
