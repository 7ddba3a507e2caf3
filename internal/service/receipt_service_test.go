package service

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"splittab/internal/engine"
	"splittab/internal/models"
	"splittab/internal/storage"
	"splittab/internal/storage/sqlite"
)

func newReceiptService(t *testing.T) (*ReceiptService, *sqlite.Store, string) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	owner := &models.User{Email: "owner@example.com", DisplayName: "Owner", PasswordHash: "x"}
	if err := store.CreateUser(context.Background(), owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	return NewReceiptService(store, nil), store, owner.ID
}

// seedReceipt creates a $42.00 receipt: Pasta $18, Wine $24, with Alice and
// Bob, $2.00 proportional tax and $4.50 even tip. No shares assigned yet.
func seedReceipt(t *testing.T, svc *ReceiptService, ownerID string) *models.Receipt {
	t.Helper()

	receipt, err := svc.Create(context.Background(), ownerID, &models.Receipt{
		Tax:     2.00,
		Tip:     4.50,
		TipMode: models.SplitEven,
		Items: []models.Item{
			{Label: "Pasta", Price: 18.00},
			{Label: "Wine", Price: 24.00},
		},
		People: []models.Person{
			{Name: "Alice"},
			{Name: "Bob"},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return receipt
}

func addUser(t *testing.T, store *sqlite.Store, email string) string {
	t.Helper()
	user := &models.User{Email: email, DisplayName: "Other", PasswordHash: "x"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user.ID
}

func TestCreateAndGetReceipt(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()

	created := seedReceipt(t, svc, ownerID)
	if created.ID == "" || created.OwnerID != ownerID {
		t.Errorf("created = %+v, want generated ID and owner set", created)
	}

	got, err := svc.Get(ctx, ownerID, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Items) != 2 || len(got.People) != 2 {
		t.Errorf("got %d items, %d people, want 2 and 2", len(got.Items), len(got.People))
	}
	if got.TaxMode != models.SplitProportional || got.TipMode != models.SplitEven {
		t.Errorf("modes = %s/%s, want proportional/even", got.TaxMode, got.TipMode)
	}
}

func TestGetReceipt_OtherUser(t *testing.T) {
	svc, store, ownerID := newReceiptService(t)
	receipt := seedReceipt(t, svc, ownerID)
	otherID := addUser(t, store, "other@example.com")

	// Someone else's receipt looks exactly like a missing one.
	if _, err := svc.Get(context.Background(), otherID, receipt.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(other user) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateReceipt(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)

	receipt.Title = "Team dinner"
	receipt.Tax = 3.30
	receipt.TaxMode = models.SplitEven
	updated, err := svc.Update(ctx, ownerID, receipt)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Team dinner" || updated.Tax != 3.30 || updated.TaxMode != models.SplitEven {
		t.Errorf("updated = %+v, want new title and settings", updated)
	}
	if len(updated.Items) != 2 {
		t.Errorf("updated items = %d, want the full graph back", len(updated.Items))
	}
}

func TestUpdateReceipt_OtherUser(t *testing.T) {
	svc, store, ownerID := newReceiptService(t)
	receipt := seedReceipt(t, svc, ownerID)
	otherID := addUser(t, store, "other@example.com")

	receipt.Title = "hijacked"
	if _, err := svc.Update(context.Background(), otherID, receipt); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update(other user) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteReceipt(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)

	if err := svc.Delete(ctx, ownerID, receipt.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, ownerID, receipt.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
}

func TestListReceipts(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	seedReceipt(t, svc, ownerID)
	seedReceipt(t, svc, ownerID)

	summaries, err := svc.List(ctx, ownerID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	if summaries[0].Subtotal != 42.00 || summaries[0].ItemCount != 2 {
		t.Errorf("summary = %+v, want subtotal 42.00 and 2 items", summaries[0])
	}
}

func TestItemLifecycle(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)

	added, err := svc.AddItems(ctx, ownerID, receipt.ID, []models.Item{{Label: "Tiramisu", Price: 7.50}})
	if err != nil {
		t.Fatalf("AddItems failed: %v", err)
	}
	if len(added) != 1 || added[0].ID == "" || added[0].Position != 2 {
		t.Errorf("added = %+v, want one item at position 2", added)
	}

	added[0].Price = 8.00
	if err := svc.UpdateItem(ctx, ownerID, receipt.ID, &added[0]); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if err := svc.DeleteItem(ctx, ownerID, receipt.ID, added[0].ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	got, err := svc.Get(ctx, ownerID, receipt.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Errorf("items = %d, want the seeded 2 after add+delete", len(got.Items))
	}
}

func TestItemMutation_OtherUser(t *testing.T) {
	svc, store, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)
	otherID := addUser(t, store, "other@example.com")

	if _, err := svc.AddItems(ctx, otherID, receipt.ID, []models.Item{{Label: "X", Price: 1}}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("AddItems(other user) error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteItem(ctx, otherID, receipt.ID, receipt.Items[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteItem(other user) error = %v, want ErrNotFound", err)
	}
}

func TestPersonLifecycle(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)

	person := &models.Person{Name: "Cara"}
	if err := svc.AddPerson(ctx, ownerID, receipt.ID, person); err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	if person.ID == "" || person.Position != 2 {
		t.Errorf("person = %+v, want generated ID at position 2", person)
	}

	person.Name = "Cara B"
	person.IsPaid = true
	if err := svc.UpdatePerson(ctx, ownerID, receipt.ID, person); err != nil {
		t.Fatalf("UpdatePerson failed: %v", err)
	}

	got, err := svc.Get(ctx, ownerID, receipt.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.People[2].Name != "Cara B" || !got.People[2].IsPaid {
		t.Errorf("person = %+v, want updated name and paid flag", got.People[2])
	}

	if err := svc.DeletePerson(ctx, ownerID, receipt.ID, person.ID); err != nil {
		t.Fatalf("DeletePerson failed: %v", err)
	}
}

func TestTotals(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)
	alice, bob := receipt.People[0], receipt.People[1]

	// Pasta all Alice; Wine split evenly.
	if err := svc.SetItemShares(ctx, ownerID, receipt.ID, receipt.Items[0].ID, []models.ItemShare{
		{PersonID: alice.ID, Weight: 1},
	}); err != nil {
		t.Fatalf("SetItemShares failed: %v", err)
	}
	if err := svc.SetItemShares(ctx, ownerID, receipt.ID, receipt.Items[1].ID, []models.ItemShare{
		{PersonID: alice.ID, Weight: 1},
		{PersonID: bob.ID, Weight: 1},
	}); err != nil {
		t.Fatalf("SetItemShares failed: %v", err)
	}

	totals, err := svc.Totals(ctx, ownerID, receipt.ID)
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}

	if totals.GrandTotal != 48.50 || totals.Unassigned != 0 {
		t.Errorf("grand total = %v, unassigned = %v, want 48.50 and 0", totals.GrandTotal, totals.Unassigned)
	}
	if len(totals.PersonTotals) != 2 {
		t.Fatalf("person totals = %d, want 2", len(totals.PersonTotals))
	}

	// Alice: 18 + 12 subtotal, proportional tax 2.00*30/42, half the tip.
	gotAlice := totals.PersonTotals[0]
	if gotAlice.Subtotal != 30.00 || gotAlice.TaxShare != 1.43 || gotAlice.TipShare != 2.25 || gotAlice.Total != 33.68 {
		t.Errorf("Alice = %+v, want 30.00/1.43/2.25/33.68", gotAlice)
	}
	gotBob := totals.PersonTotals[1]
	if gotBob.Subtotal != 12.00 || gotBob.TaxShare != 0.57 || gotBob.TipShare != 2.25 || gotBob.Total != 14.82 {
		t.Errorf("Bob = %+v, want 12.00/0.57/2.25/14.82", gotBob)
	}
}

func TestTotals_OtherUser(t *testing.T) {
	svc, store, ownerID := newReceiptService(t)
	receipt := seedReceipt(t, svc, ownerID)
	otherID := addUser(t, store, "other@example.com")

	if _, err := svc.Totals(context.Background(), otherID, receipt.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Totals(other user) error = %v, want ErrNotFound", err)
	}
}

func TestBreakdown(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)
	alice, bob := receipt.People[0], receipt.People[1]

	if err := svc.SetItemShares(ctx, ownerID, receipt.ID, receipt.Items[1].ID, []models.ItemShare{
		{PersonID: alice.ID, Weight: 1},
		{PersonID: bob.ID, Weight: 1},
	}); err != nil {
		t.Fatalf("SetItemShares failed: %v", err)
	}

	breakdown, err := svc.Breakdown(ctx, ownerID, receipt.ID)
	if err != nil {
		t.Fatalf("Breakdown failed: %v", err)
	}

	aliceLines := breakdown[alice.ID]
	if len(aliceLines) != 1 || aliceLines[0].Label != "Wine" || aliceLines[0].Amount != 12.00 {
		t.Errorf("Alice lines = %+v, want one Wine line of 12.00", aliceLines)
	}
	if len(breakdown[bob.ID]) != 1 {
		t.Errorf("Bob lines = %+v, want one line", breakdown[bob.ID])
	}
}

func TestPreview(t *testing.T) {
	svc, _, _ := newReceiptService(t)

	items := []models.Item{{ID: "i1", Label: "Burger", Price: 10.00}}
	people := []models.Person{{ID: "p1", Name: "Ana"}, {ID: "p2", Name: "Ben"}}
	shares := []models.ItemShare{
		{ItemID: "i1", PersonID: "p1", Weight: 1},
		{ItemID: "i1", PersonID: "p2", Weight: 1},
	}

	totals := svc.Preview(items, shares, people, engine.Charges{Tax: 1.00, TaxMode: models.SplitProportional})

	if totals.GrandTotal != 11.00 {
		t.Errorf("grand total = %v, want 11.00", totals.GrandTotal)
	}
	sum := 0.0
	for _, pt := range totals.PersonTotals {
		sum += pt.Total
	}
	if sum != 11.00 {
		t.Errorf("person totals sum = %v, want 11.00", sum)
	}
}

// Previewing a receipt's own snapshot reproduces the stored totals exactly.
func TestPreviewMatchesStoredTotals(t *testing.T) {
	svc, _, ownerID := newReceiptService(t)
	ctx := context.Background()
	receipt := seedReceipt(t, svc, ownerID)
	alice, bob := receipt.People[0], receipt.People[1]

	if err := svc.SetItemShares(ctx, ownerID, receipt.ID, receipt.Items[0].ID, []models.ItemShare{
		{PersonID: alice.ID, Weight: 1},
	}); err != nil {
		t.Fatalf("SetItemShares failed: %v", err)
	}
	if err := svc.SetItemShares(ctx, ownerID, receipt.ID, receipt.Items[1].ID, []models.ItemShare{
		{PersonID: alice.ID, Weight: 2},
		{PersonID: bob.ID, Weight: 1},
	}); err != nil {
		t.Fatalf("SetItemShares failed: %v", err)
	}

	stored, err := svc.Totals(ctx, ownerID, receipt.ID)
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}

	fresh, err := svc.Get(ctx, ownerID, receipt.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	previewed := svc.Preview(fresh.Items, fresh.Shares, fresh.People, chargesOf(fresh))

	if !reflect.DeepEqual(*stored, previewed) {
		t.Errorf("preview diverged from stored totals:\n stored  %+v\n preview %+v", *stored, previewed)
	}
}
