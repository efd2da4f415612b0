// Copyright (C) 2025 intelgroups
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
	"github.com/intelgroups/groups/backend/storage/document"
)

type memBlob struct {
	content []byte
	version int
}

type memBlobStore struct {
	files map[string]memBlob
}

func (m *memBlobStore) ReadBlob(_ context.Context, name string) ([]byte, string, error) {
	b, ok := m.files[name]
	if !ok {
		return nil, "", storage.ErrStoreUnavailable
	}
	return b.content, strconv.Itoa(b.version), nil
}

func (m *memBlobStore) WriteBlob(_ context.Context, name string, content []byte, version, _ string) error {
	b := m.files[name]
	if version != strconv.Itoa(b.version) {
		return storage.ErrVersionConflict
	}
	m.files[name] = memBlob{content: content, version: b.version + 1}
	return nil
}

// memOutbox mirrors the postgres outbox: a settlement with no group has no
// earnings to apply and is stored that way.
type memOutbox struct {
	rows map[string]*models.Settlement
}

func newMemOutbox() *memOutbox {
	return &memOutbox{rows: make(map[string]*models.Settlement)}
}

func (o *memOutbox) RecordSettlement(_ context.Context, s *models.Settlement) error {
	row := *s
	if row.GroupID == "" {
		row.EarningsApplied = true
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	o.rows[row.ID] = &row
	return nil
}

func (o *memOutbox) MarkEarningsApplied(_ context.Context, id string) error {
	if row, ok := o.rows[id]; ok {
		row.EarningsApplied = true
	}
	return nil
}

func (o *memOutbox) MarkRosterApplied(_ context.Context, id string) error {
	if row, ok := o.rows[id]; ok {
		row.RosterApplied = true
	}
	return nil
}

func (o *memOutbox) ListPending(_ context.Context, limit int) ([]models.Settlement, error) {
	cutoff := time.Now().Add(-5 * time.Minute)
	var out []models.Settlement
	for _, row := range o.rows {
		if !row.CreatedAt.Before(cutoff) {
			continue
		}
		if !row.EarningsApplied || !row.RosterApplied {
			out = append(out, *row)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeLedger struct {
	err    error
	result models.SettleResult
	calls  int
	last   models.SettleRequest
}

func (l *fakeLedger) SettlePurchase(_ context.Context, settle models.SettleRequest) (*models.SettleResult, error) {
	l.calls++
	l.last = settle
	if l.err != nil {
		return nil, l.err
	}
	result := l.result
	return &result, nil
}

type fakeCounter struct {
	n int64
}

func (c *fakeCounter) IncrAttempts(_ context.Context, _ string) (int64, error) {
	c.n++
	return c.n, nil
}

func newPurchaseFixture(t *testing.T, ledger *fakeLedger) (*PurchaseService, *document.Store, *memOutbox, *memBlobStore) {
	t.Helper()
	groupsDoc, err := document.EncodeGroups(nil)
	if err != nil {
		t.Fatal(err)
	}
	premiumDoc, err := document.EncodePremium(nil)
	if err != nil {
		t.Fatal(err)
	}
	blobs := &memBlobStore{files: map[string]memBlob{
		"groups.js":  {content: groupsDoc},
		"premium.js": {content: premiumDoc},
	}}
	store := document.NewStore(blobs, "groups.js", "premium.js", "admin-1")
	outbox := newMemOutbox()
	svc := NewPurchaseService(store, store, outbox, &fakeCounter{}, ledger)
	return svc, store, outbox, blobs
}

func TestBuyLedgerRejected(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("invalid passcode")}
	svc, store, outbox, blobs := newPurchaseFixture(t, ledger)
	ctx := context.Background()

	groupID, err := store.CreateGroup(ctx, models.CreateGroupParams{OwnerID: "100", OwnerName: "Alice", Name: "G"})
	if err != nil {
		t.Fatal(err)
	}
	groupsBefore := string(blobs.files["groups.js"].content)
	premiumBefore := string(blobs.files["premium.js"].content)

	_, err = svc.Buy(ctx, PurchaseRequest{BuyerID: "300", Passcode: "wrong", GroupID: groupID})
	if err == nil {
		t.Fatal("Buy() succeeded against a rejecting ledger")
	}

	// A ledger rejection must leave every local store untouched.
	if string(blobs.files["groups.js"].content) != groupsBefore {
		t.Error("groups document changed by rejected purchase")
	}
	if string(blobs.files["premium.js"].content) != premiumBefore {
		t.Error("premium roster changed by rejected purchase")
	}
	if len(outbox.rows) != 0 {
		t.Errorf("outbox has %d rows after rejection, want 0", len(outbox.rows))
	}
}

func TestBuyCreditsOwner(t *testing.T) {
	ledger := &fakeLedger{result: models.SettleResult{
		Message:        "🎉 You are now Premium!",
		OwnerEarnedNgn: models.ReferralShareNgn,
	}}
	svc, store, outbox, _ := newPurchaseFixture(t, ledger)
	ctx := context.Background()

	groupID, err := store.CreateGroup(ctx, models.CreateGroupParams{OwnerID: "100", OwnerName: "Alice", Name: "Deals"})
	if err != nil {
		t.Fatal(err)
	}

	result, err := svc.Buy(ctx, PurchaseRequest{
		BuyerID: "300", BuyerName: "Carol", BuyerUsername: "carol",
		Passcode: "123456", GroupID: groupID,
	})
	if err != nil {
		t.Fatalf("Buy() error = %v", err)
	}
	if result.Message != "🎉 You are now Premium!" {
		t.Errorf("message = %q", result.Message)
	}

	if ledger.last.GroupOwnerID != "100" || ledger.last.GroupOwnerName != "Alice" || ledger.last.GroupName != "Deals" {
		t.Errorf("settle request beneficiary = %+v, want owner 100/Alice/Deals", ledger.last)
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		t.Fatal(err)
	}
	if group.TotalEarnings != models.ReferralShareNgn {
		t.Errorf("totalEarnings = %d, want %d", group.TotalEarnings, models.ReferralShareNgn)
	}

	users, err := store.ListPremium(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0] != "300" {
		t.Errorf("roster = %v, want exactly [300]", users)
	}

	if len(outbox.rows) != 1 {
		t.Fatalf("outbox has %d rows, want 1", len(outbox.rows))
	}
	for _, row := range outbox.rows {
		if !row.EarningsApplied || !row.RosterApplied {
			t.Errorf("bookkeeping not applied in-request: %+v", row)
		}
	}
}

func TestBuyOwnGroupEarnsNothing(t *testing.T) {
	ledger := &fakeLedger{result: models.SettleResult{}}
	svc, store, _, _ := newPurchaseFixture(t, ledger)
	ctx := context.Background()

	groupID, err := store.CreateGroup(ctx, models.CreateGroupParams{OwnerID: "100", OwnerName: "Alice", Name: "G"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Buy(ctx, PurchaseRequest{BuyerID: "100", Passcode: "123456", GroupID: groupID}); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}

	if ledger.last.GroupOwnerID != "" {
		t.Errorf("owner buying through their own group resolved a beneficiary: %+v", ledger.last)
	}
	group, _ := store.GetGroup(ctx, groupID)
	if group.TotalEarnings != 0 {
		t.Errorf("totalEarnings = %d, want 0 for self-purchase", group.TotalEarnings)
	}
	users, _ := store.ListPremium(ctx)
	if len(users) != 1 || users[0] != "100" {
		t.Errorf("roster = %v, want [100]", users)
	}
}

func TestBuyEarningsFallback(t *testing.T) {
	// Ledger omits the owner share; local bookkeeping falls back to the
	// standard referral amount.
	ledger := &fakeLedger{result: models.SettleResult{}}
	svc, store, _, _ := newPurchaseFixture(t, ledger)
	ctx := context.Background()

	groupID, err := store.CreateGroup(ctx, models.CreateGroupParams{OwnerID: "100", OwnerName: "Alice", Name: "G"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Buy(ctx, PurchaseRequest{BuyerID: "300", Passcode: "123456", GroupID: groupID}); err != nil {
		t.Fatal(err)
	}
	group, _ := store.GetGroup(ctx, groupID)
	if group.TotalEarnings != models.ReferralShareNgn {
		t.Errorf("totalEarnings = %d, want fallback %d", group.TotalEarnings, models.ReferralShareNgn)
	}
}

func TestBuyRateLimited(t *testing.T) {
	ledger := &fakeLedger{result: models.SettleResult{}}
	svc, _, _, _ := newPurchaseFixture(t, ledger)
	ctx := context.Background()

	var err error
	for i := 0; i <= maxSettleAttempts; i++ {
		_, err = svc.Buy(ctx, PurchaseRequest{BuyerID: "300", Passcode: "123456"})
	}
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("attempt %d error = %v, want ErrTooManyAttempts", maxSettleAttempts+1, err)
	}
	if ledger.calls != maxSettleAttempts {
		t.Errorf("ledger called %d times, want %d (limit trips before the ledger)", ledger.calls, maxSettleAttempts)
	}
}

func TestReconcileAppliesPending(t *testing.T) {
	ledger := &fakeLedger{result: models.SettleResult{}}
	svc, store, outbox, _ := newPurchaseFixture(t, ledger)
	ctx := context.Background()

	groupID, err := store.CreateGroup(ctx, models.CreateGroupParams{OwnerID: "100", OwnerName: "Alice", Name: "G"})
	if err != nil {
		t.Fatal(err)
	}

	// A settlement whose write-backs were lost after the ledger settled,
	// old enough for the reconciler to reclaim it.
	stranded := &models.Settlement{
		ID:        "s1",
		BuyerID:   "300",
		GroupID:   groupID,
		OwnerID:   "100",
		EarnedNgn: models.ReferralShareNgn,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	if err := outbox.RecordSettlement(ctx, stranded); err != nil {
		t.Fatal(err)
	}

	if err := svc.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	group, _ := store.GetGroup(ctx, groupID)
	if group.TotalEarnings != models.ReferralShareNgn {
		t.Errorf("totalEarnings = %d, want %d after reconcile", group.TotalEarnings, models.ReferralShareNgn)
	}
	users, _ := store.ListPremium(ctx)
	if len(users) != 1 || users[0] != "300" {
		t.Errorf("roster = %v, want [300] after reconcile", users)
	}
	pending, _ := outbox.ListPending(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("still pending after reconcile: %+v", pending)
	}

	// A second pass finds nothing to do and changes nothing.
	if err := svc.Reconcile(ctx); err != nil {
		t.Fatal(err)
	}
	group, _ = store.GetGroup(ctx, groupID)
	if group.TotalEarnings != models.ReferralShareNgn {
		t.Errorf("second reconcile re-credited earnings: %d", group.TotalEarnings)
	}
}

// A settlement just recorded by a live request must be invisible to the
// reconciler, otherwise a tick landing between the insert and the request's
// own bookkeeping would credit the owner twice.
func TestReconcileLeavesFreshRows(t *testing.T) {
	ledger := &fakeLedger{result: models.SettleResult{}}
	svc, store, outbox, _ := newPurchaseFixture(t, ledger)
	ctx := context.Background()

	groupID, err := store.CreateGroup(ctx, models.CreateGroupParams{OwnerID: "100", OwnerName: "Alice", Name: "G"})
	if err != nil {
		t.Fatal(err)
	}

	fresh := &models.Settlement{
		ID:        "s1",
		BuyerID:   "300",
		GroupID:   groupID,
		OwnerID:   "100",
		EarnedNgn: models.ReferralShareNgn,
	}
	if err := outbox.RecordSettlement(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	if err := svc.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	group, _ := store.GetGroup(ctx, groupID)
	if group.TotalEarnings != 0 {
		t.Errorf("reconciler touched a fresh settlement: totalEarnings = %d", group.TotalEarnings)
	}
	users, _ := store.ListPremium(ctx)
	if len(users) != 0 {
		t.Errorf("reconciler applied a fresh roster change: %v", users)
	}
}
