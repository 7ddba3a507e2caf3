package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"splittab/internal/models"
	"splittab/internal/storage"
)

// CreateReceipt persists a new receipt with its initial items and people.
// IDs, positions, timestamps, and a missing title are filled in. Shares are
// not written; a fresh receipt starts unassigned.
func (s *Store) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}
	receipt.UpdatedAt = receipt.CreatedAt
	if receipt.TaxMode == "" {
		receipt.TaxMode = models.SplitProportional
	}
	if receipt.TipMode == "" {
		receipt.TipMode = models.SplitProportional
	}
	if receipt.Title == "" {
		names := make([]string, len(receipt.People))
		for i, p := range receipt.People {
			names[i] = p.Name
		}
		receipt.Title = generateTitle(names)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, owner_id, title, tax, tip, tax_mode, tip_mode, include_zero_people, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.OwnerID, receipt.Title, receipt.Tax, receipt.Tip,
		string(receipt.TaxMode), string(receipt.TipMode), receipt.IncludeZeroPeople,
		receipt.CreatedAt, receipt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i := range receipt.People {
		p := &receipt.People[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.ReceiptID = receipt.ID
		p.Position = i
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO people (id, receipt_id, name, is_paid, position) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.ReceiptID, p.Name, p.IsPaid, p.Position,
		); err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for i := range receipt.Items {
		it := &receipt.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReceiptID = receipt.ID
		it.Position = i
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, receipt_id, label, price, quantity, position) VALUES (?, ?, ?, ?, ?, ?)",
			it.ID, it.ReceiptID, it.Label, it.Price, it.Quantity, it.Position,
		); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt by ID with its items, people, and shares.
func (s *Store) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	r := &models.Receipt{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, tax, tip, tax_mode, tip_mode, include_zero_people, created_at, updated_at
		 FROM receipts WHERE id = ?`, id,
	).Scan(&r.ID, &r.OwnerID, &r.Title, &r.Tax, &r.Tip, &r.TaxMode, &r.TipMode,
		&r.IncludeZeroPeople, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, receipt_id, label, price, quantity, position FROM items WHERE receipt_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.ReceiptID, &it.Label, &it.Price, &it.Quantity, &it.Position); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		r.Items = append(r.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	peopleRows, err := s.db.QueryContext(ctx,
		"SELECT id, receipt_id, name, is_paid, position FROM people WHERE receipt_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer peopleRows.Close()
	for peopleRows.Next() {
		var p models.Person
		if err := peopleRows.Scan(&p.ID, &p.ReceiptID, &p.Name, &p.IsPaid, &p.Position); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		r.People = append(r.People, p)
	}
	if err := peopleRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	// Share order feeds straight into the split engine, so keep it pinned
	// to item and person positions.
	shareRows, err := s.db.QueryContext(ctx,
		`SELECT s.item_id, s.person_id, s.weight
		 FROM item_shares s
		 JOIN items i ON i.id = s.item_id
		 JOIN people p ON p.id = s.person_id
		 WHERE i.receipt_id = ?
		 ORDER BY i.position, p.position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer shareRows.Close()
	for shareRows.Next() {
		var sh models.ItemShare
		if err := shareRows.Scan(&sh.ItemID, &sh.PersonID, &sh.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		r.Shares = append(r.Shares, sh)
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return r, nil
}

// GetReceiptOwner returns the owner ID of a receipt.
func (s *Store) GetReceiptOwner(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := s.db.QueryRowContext(ctx, "SELECT owner_id FROM receipts WHERE id = ?", id).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("receipt %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get receipt owner: %w", err)
	}
	return ownerID, nil
}

// ListReceipts returns summaries of the owner's receipts, newest first.
func (s *Store) ListReceipts(ctx context.Context, ownerID string) ([]models.ReceiptSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title,
		        (SELECT COALESCE(SUM(price), 0) FROM items WHERE receipt_id = r.id),
		        (SELECT COUNT(*) FROM items WHERE receipt_id = r.id),
		        (SELECT COUNT(*) FROM people WHERE receipt_id = r.id),
		        created_at
		 FROM receipts r
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	summaries := []models.ReceiptSummary{}
	for rows.Next() {
		var sum models.ReceiptSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Subtotal, &sum.ItemCount, &sum.PeopleCount, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return summaries, nil
}

// UpdateReceipt updates a receipt's title and split settings.
func (s *Store) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	receipt.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE receipts
		 SET title = ?, tax = ?, tip = ?, tax_mode = ?, tip_mode = ?, include_zero_people = ?, updated_at = ?
		 WHERE id = ?`,
		receipt.Title, receipt.Tax, receipt.Tip, string(receipt.TaxMode), string(receipt.TipMode),
		receipt.IncludeZeroPeople, receipt.UpdatedAt, receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("receipt %s: %w", receipt.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteReceipt removes a receipt; items, people, and shares cascade.
func (s *Store) DeleteReceipt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("receipt %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
