package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
	"github.com/louisbranch/business-network/internal/services/membership/storage"
)

const membershipColumns = `id, network_id, subject, business_identity, status, roles, participants,
		        issuer, issued_at, modified_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// GetMembership returns the current state of one membership.
func (s *Store) GetMembership(ctx context.Context, id string) (membership.State, error) {
	if err := s.ready(ctx); err != nil {
		return membership.State{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return membership.State{}, fmt.Errorf("membership id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+membershipColumns+`
		   FROM memberships
		  WHERE id = ?`,
		id,
	)
	state, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return membership.State{}, storage.ErrNotFound
		}
		return membership.State{}, fmt.Errorf("get membership: %w", err)
	}
	return state, nil
}

// ListMemberships returns one page of memberships in id order.
func (s *Store) ListMemberships(ctx context.Context, networkID string, pageSize int, pageToken string) (storage.MembershipPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.MembershipPage{}, err
	}
	if pageSize <= 0 {
		return storage.MembershipPage{}, fmt.Errorf("page size must be greater than zero")
	}
	networkID = strings.TrimSpace(networkID)
	pageToken = strings.TrimSpace(pageToken)

	var (
		clauses []string
		params  []any
	)
	if networkID != "" {
		clauses = append(clauses, "network_id = ?")
		params = append(params, networkID)
	}
	if pageToken != "" {
		clauses = append(clauses, "id > ?")
		params = append(params, pageToken)
	}
	query := `SELECT ` + membershipColumns + ` FROM memberships`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY id ASC LIMIT ?`
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.MembershipPage{}, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	page := storage.MembershipPage{
		Memberships: make([]membership.State, 0, pageSize),
	}
	for rows.Next() {
		state, err := scanMembership(rows)
		if err != nil {
			return storage.MembershipPage{}, fmt.Errorf("list memberships: %w", err)
		}
		page.Memberships = append(page.Memberships, state)
	}
	if err := rows.Err(); err != nil {
		return storage.MembershipPage{}, fmt.Errorf("list memberships: %w", err)
	}
	if len(page.Memberships) > pageSize {
		page.NextPageToken = page.Memberships[pageSize-1].ID
		page.Memberships = page.Memberships[:pageSize]
	}
	return page, nil
}

// Commit replaces prior with proposed in one transaction.
func (s *Store) Commit(ctx context.Context, prior, proposed *membership.State) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	switch {
	case prior == nil && proposed == nil:
		return fmt.Errorf("commit requires a prior or proposed membership")
	case prior != nil && proposed != nil && prior.ID != proposed.ID:
		return fmt.Errorf("commit cannot change membership id %s to %s", prior.ID, proposed.ID)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	if err := commitTx(ctx, tx, prior, proposed); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit membership: %w", err)
	}
	return nil
}

func commitTx(ctx context.Context, tx *sql.Tx, prior, proposed *membership.State) error {
	if prior == nil {
		return insertMembership(ctx, tx, *proposed)
	}
	priorState, err := normalizeState(*prior)
	if err != nil {
		return err
	}
	priorDigest, err := digest(priorState)
	if err != nil {
		return err
	}

	var result sql.Result
	if proposed == nil {
		result, err = tx.ExecContext(ctx,
			`DELETE FROM memberships WHERE id = ? AND digest = ?`,
			priorState.ID, priorDigest,
		)
		if err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
	} else {
		values, err := membershipValues(*proposed)
		if err != nil {
			return err
		}
		result, err = tx.ExecContext(ctx,
			`UPDATE memberships
			    SET network_id = ?, subject = ?, business_identity = ?, status = ?, roles = ?,
			        participants = ?, issuer = ?, issued_at = ?, modified_at = ?, digest = ?,
			        version = version + 1
			  WHERE id = ? AND digest = ?`,
			values.networkID, values.subject, values.business, values.status, values.roles,
			values.participants, values.issuer, values.issuedAt, values.modifiedAt, values.digest,
			priorState.ID, priorDigest,
		)
		if err != nil {
			return fmt.Errorf("update membership: %w", err)
		}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("commit membership: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var found int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM memberships WHERE id = ?`, priorState.ID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	return storage.ErrConflict
}

func insertMembership(ctx context.Context, tx *sql.Tx, state membership.State) error {
	if strings.TrimSpace(state.ID) == "" {
		return fmt.Errorf("membership id is required")
	}
	values, err := membershipValues(state)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (
		   id, network_id, subject, business_identity, status, roles, participants,
		   issuer, issued_at, modified_at, digest
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		state.ID, values.networkID, values.subject, values.business, values.status, values.roles,
		values.participants, values.issuer, values.issuedAt, values.modifiedAt, values.digest,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

type membershipRow struct {
	networkID    string
	subject      string
	business     sql.NullString
	status       string
	roles        string
	participants string
	issuer       string
	issuedAt     int64
	modifiedAt   int64
	digest       string
}

func membershipValues(state membership.State) (membershipRow, error) {
	normalized, err := normalizeState(state)
	if err != nil {
		return membershipRow{}, err
	}
	roles, err := encodeList(normalized.Roles)
	if err != nil {
		return membershipRow{}, fmt.Errorf("encode roles: %w", err)
	}
	participants, err := encodeList(normalized.Participants)
	if err != nil {
		return membershipRow{}, fmt.Errorf("encode participants: %w", err)
	}
	sum, err := digest(normalized)
	if err != nil {
		return membershipRow{}, err
	}
	row := membershipRow{
		networkID:    normalized.NetworkID,
		subject:      string(normalized.Identity.Network),
		status:       string(normalized.Status),
		roles:        roles,
		participants: participants,
		issuer:       string(normalized.Issuer),
		issuedAt:     toMillis(normalized.Issued),
		modifiedAt:   toMillis(normalized.Modified),
		digest:       sum,
	}
	if normalized.Identity.Business != nil {
		row.business = sql.NullString{String: string(normalized.Identity.Business), Valid: true}
	}
	return row, nil
}

func scanMembership(scanner rowScanner) (membership.State, error) {
	var (
		state        membership.State
		subject      string
		business     sql.NullString
		status       string
		roles        string
		participants string
		issuer       string
		issuedAt     int64
		modifiedAt   int64
	)
	if err := scanner.Scan(
		&state.ID,
		&state.NetworkID,
		&subject,
		&business,
		&status,
		&roles,
		&participants,
		&issuer,
		&issuedAt,
		&modifiedAt,
	); err != nil {
		return membership.State{}, err
	}

	state.Identity.Network = membership.Party(subject)
	if business.Valid {
		state.Identity.Business = membership.BusinessIdentity(business.String)
	}
	state.Status = membership.Status(status)
	decodedRoles, err := decodeList[membership.Role](roles)
	if err != nil {
		return membership.State{}, fmt.Errorf("decode roles: %w", err)
	}
	state.Roles = decodedRoles
	decodedParticipants, err := decodeList[membership.Party](participants)
	if err != nil {
		return membership.State{}, fmt.Errorf("decode participants: %w", err)
	}
	state.Participants = decodedParticipants
	state.Issuer = membership.Party(issuer)
	state.Issued = fromMillis(issuedAt)
	state.Modified = fromMillis(modifiedAt)
	return state, nil
}
