package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/business-network/internal/services/membership/domain/command"
	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
	"github.com/louisbranch/business-network/internal/services/membership/storage"
)

const (
	member membership.Party = "O=Member,L=London,C=GB"
	bno    membership.Party = "O=BNO,L=London,C=GB"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCommitInsertGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := testMembership("m-1")
	input.Identity.Business = json.RawMessage(`{ "lei" : "5493001KJTIIGC8Y1R12" }`)
	input.Roles = membership.NewRoles("operator")
	if err := store.Commit(context.Background(), nil, &input); err != nil {
		t.Fatalf("commit insert: %v", err)
	}

	got, err := store.GetMembership(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if got.ID != input.ID || got.NetworkID != input.NetworkID {
		t.Fatalf("ids = %q/%q, want %q/%q", got.ID, got.NetworkID, input.ID, input.NetworkID)
	}
	if got.Identity.Network != member || got.Issuer != bno {
		t.Fatalf("parties = %q/%q", got.Identity.Network, got.Issuer)
	}
	if string(got.Identity.Business) != `{"lei":"5493001KJTIIGC8Y1R12"}` {
		t.Fatalf("business = %s", got.Identity.Business)
	}
	if got.Status != membership.StatusPending {
		t.Fatalf("status = %s, want %s", got.Status, membership.StatusPending)
	}
	if !reflect.DeepEqual(got.Roles, input.Roles) {
		t.Fatalf("roles = %v, want %v", got.Roles, input.Roles)
	}
	if !reflect.DeepEqual(got.Participants, input.Participants) {
		t.Fatalf("participants = %v, want %v", got.Participants, input.Participants)
	}
	if !got.Issued.Equal(input.Issued.Truncate(time.Millisecond)) {
		t.Fatalf("issued = %v, want %v", got.Issued, input.Issued)
	}
}

func TestGetMembershipNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetMembership(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCommitInsertDuplicateReturnsAlreadyExists(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := testMembership("m-dup")
	if err := store.Commit(context.Background(), nil, &input); err != nil {
		t.Fatalf("commit insert: %v", err)
	}
	err := store.Commit(context.Background(), nil, &input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate insert error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestCommitUpdateFromStoredPrior(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	input := testMembership("m-2")
	if err := store.Commit(ctx, nil, &input); err != nil {
		t.Fatalf("commit insert: %v", err)
	}
	prior, err := store.GetMembership(ctx, "m-2")
	if err != nil {
		t.Fatalf("get prior: %v", err)
	}
	next := prior.Clone()
	next.Status = membership.StatusActive
	next.Modified = prior.Modified.Add(time.Minute)
	if err := store.Commit(ctx, &prior, &next); err != nil {
		t.Fatalf("commit update: %v", err)
	}

	got, err := store.GetMembership(ctx, "m-2")
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if got.Status != membership.StatusActive {
		t.Fatalf("status = %s, want %s", got.Status, membership.StatusActive)
	}
	if version := queryVersion(t, store, "m-2"); version != 2 {
		t.Fatalf("version = %d, want 2", version)
	}
}

func TestCommitStalePriorReturnsConflict(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	input := testMembership("m-3")
	if err := store.Commit(ctx, nil, &input); err != nil {
		t.Fatalf("commit insert: %v", err)
	}
	prior, err := store.GetMembership(ctx, "m-3")
	if err != nil {
		t.Fatalf("get prior: %v", err)
	}

	winner := prior.Clone()
	winner.Status = membership.StatusActive
	if err := store.Commit(ctx, &prior, &winner); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	loser := prior.Clone()
	loser.Status = membership.StatusSuspended
	if err := store.Commit(ctx, &prior, &loser); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("stale commit error = %v, want %v", err, storage.ErrConflict)
	}
	if err := store.Commit(ctx, &prior, nil); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("stale delete error = %v, want %v", err, storage.ErrConflict)
	}
}

func TestCommitConcurrentWritersOneWins(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	input := testMembership("m-race")
	if err := store.Commit(ctx, nil, &input); err != nil {
		t.Fatalf("commit insert: %v", err)
	}
	prior, err := store.GetMembership(ctx, "m-race")
	if err != nil {
		t.Fatalf("get prior: %v", err)
	}

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := prior.Clone()
			next.Status = membership.StatusActive
			next.Modified = prior.Modified.Add(time.Duration(i+1) * time.Second)
			err := store.Commit(ctx, &prior, &next)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, storage.ErrConflict):
				conflicts++
			default:
				t.Errorf("commit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 || conflicts != writers-1 {
		t.Fatalf("wins = %d conflicts = %d, want 1 and %d", wins, conflicts, writers-1)
	}
}

func TestCommitDelete(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	input := testMembership("m-4")
	if err := store.Commit(ctx, nil, &input); err != nil {
		t.Fatalf("commit insert: %v", err)
	}
	prior, err := store.GetMembership(ctx, "m-4")
	if err != nil {
		t.Fatalf("get prior: %v", err)
	}
	if err := store.Commit(ctx, &prior, nil); err != nil {
		t.Fatalf("commit delete: %v", err)
	}
	if _, err := store.GetMembership(ctx, "m-4"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.Commit(ctx, &prior, nil); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCommitRejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.Commit(ctx, nil, nil); err == nil {
		t.Fatal("expected error for empty commit")
	}
	a := testMembership("a")
	b := testMembership("b")
	if err := store.Commit(ctx, &a, &b); err == nil {
		t.Fatal("expected error for id change")
	}
	bad := testMembership("c")
	bad.Identity.Business = json.RawMessage(`{not json`)
	if err := store.Commit(ctx, nil, &bad); err == nil {
		t.Fatal("expected error for invalid business identity")
	}
}

func TestListMembershipsPagesByID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, id := range []string{"m-c", "m-a", "m-b"} {
		state := testMembership(id)
		if err := store.Commit(ctx, nil, &state); err != nil {
			t.Fatalf("commit %s: %v", id, err)
		}
	}
	other := testMembership("m-other")
	other.NetworkID = "other-network"
	if err := store.Commit(ctx, nil, &other); err != nil {
		t.Fatalf("commit other: %v", err)
	}

	first, err := store.ListMemberships(ctx, "network-id", 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if ids := membershipIDs(first.Memberships); !reflect.DeepEqual(ids, []string{"m-a", "m-b"}) {
		t.Fatalf("first page ids = %v", ids)
	}
	if first.NextPageToken != "m-b" {
		t.Fatalf("next page token = %q, want m-b", first.NextPageToken)
	}
	second, err := store.ListMemberships(ctx, "network-id", 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if ids := membershipIDs(second.Memberships); !reflect.DeepEqual(ids, []string{"m-c"}) {
		t.Fatalf("second page ids = %v", ids)
	}
	if second.NextPageToken != "" {
		t.Fatalf("expected last page, got token %q", second.NextPageToken)
	}

	all, err := store.ListMemberships(ctx, "", 10, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all.Memberships) != 4 {
		t.Fatalf("all memberships = %d, want 4", len(all.Memberships))
	}
	if _, err := store.ListMemberships(ctx, "", 0, ""); err == nil {
		t.Fatal("expected page size error")
	}
}

func TestAppendAndListVerdicts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	verdicts := []storage.Verdict{
		{MembershipID: "m-1", NetworkID: "network-id", Command: command.KindRequest, Outcome: storage.OutcomeAccepted, Signers: []membership.Party{member, bno}, RecordedAt: base},
		{MembershipID: "m-1", NetworkID: "network-id", Command: command.KindActivate, Outcome: storage.OutcomeRejected, Reason: "UNEXPECTED_SUBJECT_SIGNATURE", Signers: []membership.Party{member}, RecordedAt: base.Add(time.Minute)},
		{MembershipID: "m-1", NetworkID: "network-id", Command: command.KindActivate, Outcome: storage.OutcomeAccepted, Signers: []membership.Party{bno}, RecordedAt: base.Add(2 * time.Minute)},
		{MembershipID: "m-2", NetworkID: "network-id", Command: command.KindRequest, Outcome: storage.OutcomeRejected, Reason: "INCONSISTENT_TRANSITION", Field: "issuer", RecordedAt: base.Add(3 * time.Minute)},
	}
	for _, verdict := range verdicts {
		if err := store.AppendVerdict(ctx, verdict); err != nil {
			t.Fatalf("append verdict: %v", err)
		}
	}

	page, err := store.ListVerdicts(ctx, "", 10, "")
	if err != nil {
		t.Fatalf("list verdicts: %v", err)
	}
	if len(page.Verdicts) != 4 {
		t.Fatalf("verdicts = %d, want 4", len(page.Verdicts))
	}
	if page.Verdicts[0].ID == "" {
		t.Fatal("expected generated verdict id")
	}
	if !reflect.DeepEqual(page.Verdicts[0].Signers, []membership.Party{member, bno}) {
		t.Fatalf("signers = %v", page.Verdicts[0].Signers)
	}
	if !page.Verdicts[1].RecordedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("recorded_at = %v", page.Verdicts[1].RecordedAt)
	}

	rejected, err := store.ListVerdicts(ctx, `outcome = "rejected" AND membership_id = "m-1"`, 10, "")
	if err != nil {
		t.Fatalf("list rejected: %v", err)
	}
	if len(rejected.Verdicts) != 1 || rejected.Verdicts[0].Reason != "UNEXPECTED_SUBJECT_SIGNATURE" {
		t.Fatalf("rejected verdicts = %+v", rejected.Verdicts)
	}

	recent, err := store.ListVerdicts(ctx, `recorded_at >= timestamp("2026-03-01T12:02:00Z")`, 10, "")
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent.Verdicts) != 2 {
		t.Fatalf("recent verdicts = %d, want 2", len(recent.Verdicts))
	}
}

func TestListVerdictsPagination(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.AppendVerdict(ctx, storage.Verdict{
			MembershipID: "m-1",
			Command:      command.KindModifyRoles,
			Outcome:      storage.OutcomeAccepted,
		}); err != nil {
			t.Fatalf("append verdict %d: %v", i, err)
		}
	}

	var (
		seen  int
		token string
	)
	for pages := 0; pages < 10; pages++ {
		page, err := store.ListVerdicts(ctx, "", 2, token)
		if err != nil {
			t.Fatalf("list page: %v", err)
		}
		seen += len(page.Verdicts)
		token = page.NextPageToken
		if token == "" {
			break
		}
	}
	if seen != 5 {
		t.Fatalf("seen = %d, want 5", seen)
	}
}

func TestListVerdictsRejectsBadInput(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.ListVerdicts(ctx, `signer = "x"`, 10, ""); !errors.Is(err, storage.ErrInvalidFilter) {
		t.Fatalf("filter error = %v, want %v", err, storage.ErrInvalidFilter)
	}
	if _, err := store.ListVerdicts(ctx, "", 10, "not-a-token"); !errors.Is(err, storage.ErrInvalidPageToken) {
		t.Fatalf("token error = %v, want %v", err, storage.ErrInvalidPageToken)
	}
}

func TestAppendVerdictValidates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.AppendVerdict(ctx, storage.Verdict{Outcome: storage.OutcomeAccepted}); err == nil {
		t.Fatal("expected missing command error")
	}
	if err := store.AppendVerdict(ctx, storage.Verdict{Command: command.KindRevoke, Outcome: "maybe"}); err == nil {
		t.Fatal("expected invalid outcome error")
	}
	verdict := storage.Verdict{ID: "v-1", Command: command.KindRevoke, Outcome: storage.OutcomeAccepted}
	if err := store.AppendVerdict(ctx, verdict); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendVerdict(ctx, verdict); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate append = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetMembership(ctx, "m-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("get error = %v, want %v", err, context.Canceled)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func testMembership(id string) membership.State {
	issued := time.Date(2026, 2, 14, 9, 30, 0, 123456789, time.UTC)
	return membership.State{
		ID:           id,
		Identity:     membership.Identity{Network: member},
		NetworkID:    "network-id",
		Status:       membership.StatusPending,
		Participants: []membership.Party{member, bno},
		Issuer:       bno,
		Issued:       issued,
		Modified:     issued,
	}
}

func membershipIDs(states []membership.State) []string {
	ids := make([]string, 0, len(states))
	for _, state := range states {
		ids = append(ids, state.ID)
	}
	return ids
}

func queryVersion(t *testing.T, store *Store, id string) int {
	t.Helper()
	var version int
	if err := store.sqlDB.QueryRow("SELECT version FROM memberships WHERE id = ?", id).Scan(&version); err != nil {
		t.Fatalf("query version: %v", err)
	}
	return version
}
