package service

import (
	"context"
	"fmt"
	"log/slog"

	"splittab/internal/engine"
	"splittab/internal/metrics"
	"splittab/internal/models"
	"splittab/internal/storage"
)

// ReceiptService owns receipt lifecycle and split computation. All lookups
// and mutations are scoped to the authenticated owner; a receipt owned by
// someone else is indistinguishable from a missing one.
type ReceiptService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewReceiptService creates a new receipt service with the given storage
// backend. Metrics may be nil.
func NewReceiptService(store storage.Store, m *metrics.Metrics) *ReceiptService {
	return &ReceiptService{store: store, metrics: m}
}

// Create persists a new receipt with its initial items and people. The
// store fills in IDs, positions, timestamps, default modes, and a missing
// title.
func (s *ReceiptService) Create(ctx context.Context, ownerID string, receipt *models.Receipt) (*models.Receipt, error) {
	receipt.OwnerID = ownerID
	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		slog.Error("create receipt failed", "owner_id", ownerID, "error", err)
		return nil, err
	}

	slog.Info("receipt created", "receipt_id", receipt.ID, "owner_id", ownerID,
		"items", len(receipt.Items), "people", len(receipt.People))
	return receipt, nil
}

// List returns summaries of the owner's receipts, newest first.
func (s *ReceiptService) List(ctx context.Context, ownerID string) ([]models.ReceiptSummary, error) {
	return s.store.ListReceipts(ctx, ownerID)
}

// Get loads a receipt with its items, people, and shares.
func (s *ReceiptService) Get(ctx context.Context, ownerID, receiptID string) (*models.Receipt, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.OwnerID != ownerID {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	return receipt, nil
}

// Update changes a receipt's title and split settings, returning the fresh
// receipt. Items, people, and shares are managed through their own calls.
func (s *ReceiptService) Update(ctx context.Context, ownerID string, receipt *models.Receipt) (*models.Receipt, error) {
	if err := s.authorize(ctx, ownerID, receipt.ID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateReceipt(ctx, receipt); err != nil {
		slog.Error("update receipt failed", "receipt_id", receipt.ID, "error", err)
		return nil, err
	}
	return s.store.GetReceipt(ctx, receipt.ID)
}

// Delete removes a receipt and everything under it.
func (s *ReceiptService) Delete(ctx context.Context, ownerID, receiptID string) error {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return err
	}
	if err := s.store.DeleteReceipt(ctx, receiptID); err != nil {
		slog.Error("delete receipt failed", "receipt_id", receiptID, "error", err)
		return err
	}
	slog.Info("receipt deleted", "receipt_id", receiptID, "owner_id", ownerID)
	return nil
}

// AddItems appends items to a receipt and returns them with IDs and
// positions assigned.
func (s *ReceiptService) AddItems(ctx context.Context, ownerID, receiptID string, items []models.Item) ([]models.Item, error) {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return nil, err
	}
	return s.store.AddItems(ctx, receiptID, items)
}

// UpdateItem updates an item's label, price, and quantity.
func (s *ReceiptService) UpdateItem(ctx context.Context, ownerID, receiptID string, item *models.Item) error {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return err
	}
	return s.store.UpdateItem(ctx, receiptID, item)
}

// DeleteItem removes an item; its shares go with it.
func (s *ReceiptService) DeleteItem(ctx context.Context, ownerID, receiptID, itemID string) error {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return err
	}
	return s.store.DeleteItem(ctx, receiptID, itemID)
}

// AddPerson appends a person to a receipt.
func (s *ReceiptService) AddPerson(ctx context.Context, ownerID, receiptID string, person *models.Person) error {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return err
	}
	person.ReceiptID = receiptID
	return s.store.AddPerson(ctx, person)
}

// UpdatePerson updates a person's name and paid flag.
func (s *ReceiptService) UpdatePerson(ctx context.Context, ownerID, receiptID string, person *models.Person) error {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return err
	}
	person.ReceiptID = receiptID
	return s.store.UpdatePerson(ctx, person)
}

// DeletePerson removes a person; their shares go with them and remaining
// weights renormalize on the next computation.
func (s *ReceiptService) DeletePerson(ctx context.Context, ownerID, receiptID, personID string) error {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return err
	}
	return s.store.DeletePerson(ctx, receiptID, personID)
}

// SetItemShares replaces the full share set of one item.
func (s *ReceiptService) SetItemShares(ctx context.Context, ownerID, receiptID, itemID string, shares []models.ItemShare) error {
	if err := s.authorize(ctx, ownerID, receiptID); err != nil {
		return err
	}
	return s.store.SetItemShares(ctx, receiptID, itemID, shares)
}

// Totals computes the split for a stored receipt.
func (s *ReceiptService) Totals(ctx context.Context, ownerID, receiptID string) (*engine.BillTotals, error) {
	receipt, err := s.Get(ctx, ownerID, receiptID)
	if err != nil {
		return nil, err
	}

	totals := engine.ComputeTotals(receipt.Items, receipt.Shares, receipt.People, chargesOf(receipt))
	s.metrics.ObserveSplit("receipt", string(receipt.TaxMode), string(receipt.TipMode))

	slog.Debug("totals computed", "receipt_id", receiptID,
		"grand_total", totals.GrandTotal, "unassigned", totals.Unassigned,
		"reconciled_cents", totals.Reconciliation.DistributedCents)
	return &totals, nil
}

// Breakdown returns each person's per-item lines for a stored receipt,
// keyed by person ID. Amounts are unrounded.
func (s *ReceiptService) Breakdown(ctx context.Context, ownerID, receiptID string) (map[string][]engine.AssignedLine, error) {
	receipt, err := s.Get(ctx, ownerID, receiptID)
	if err != nil {
		return nil, err
	}
	return engine.AssignedLines(receipt.Items, receipt.Shares), nil
}

// Preview computes a split from request data without touching storage.
func (s *ReceiptService) Preview(items []models.Item, shares []models.ItemShare, people []models.Person, c engine.Charges) engine.BillTotals {
	totals := engine.ComputeTotals(items, shares, people, c)
	s.metrics.ObserveSplit("preview", string(c.TaxMode), string(c.TipMode))
	return totals
}

// authorize resolves the receipt's owner and hides other users' receipts
// behind storage.ErrNotFound.
func (s *ReceiptService) authorize(ctx context.Context, ownerID, receiptID string) error {
	owner, err := s.store.GetReceiptOwner(ctx, receiptID)
	if err != nil {
		return err
	}
	if owner != ownerID {
		return fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	return nil
}

func chargesOf(r *models.Receipt) engine.Charges {
	return engine.Charges{
		Tax:               r.Tax,
		Tip:               r.Tip,
		TaxMode:           r.TaxMode,
		TipMode:           r.TipMode,
		IncludeZeroPeople: r.IncludeZeroPeople,
	}
}
