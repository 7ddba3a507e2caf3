package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"splittab/internal/models"
	"splittab/internal/storage"
)

// SetItemShares replaces the full share set of one item. Every person
// referenced must belong to the item's receipt; duplicate rows for the same
// person are merged by summing their weights before writing.
func (s *Store) SetItemShares(ctx context.Context, receiptID, itemID string, shares []models.ItemShare) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owningReceipt string
	err = tx.QueryRowContext(ctx, "SELECT receipt_id FROM items WHERE id = ?", itemID).Scan(&owningReceipt)
	if err == sql.ErrNoRows || (err == nil && owningReceipt != receiptID) {
		return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}

	known, err := receiptPeople(ctx, tx, receiptID)
	if err != nil {
		return err
	}

	// Merge duplicates so the share set has one row per person, the same
	// aggregation the engine applies.
	weights := make(map[string]float64, len(shares))
	order := make([]string, 0, len(shares))
	for _, sh := range shares {
		if !known[sh.PersonID] {
			return fmt.Errorf("person %s: %w", sh.PersonID, storage.ErrNotFound)
		}
		if _, seen := weights[sh.PersonID]; !seen {
			order = append(order, sh.PersonID)
		}
		weights[sh.PersonID] += sh.Weight
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_shares WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("failed to clear shares: %w", err)
	}
	for _, personID := range order {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_shares (item_id, person_id, weight) VALUES (?, ?, ?)",
			itemID, personID, weights[personID],
		); err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := touch(ctx, tx, receiptID, time.Now().Unix()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// receiptPeople returns the set of person IDs on a receipt.
func receiptPeople(ctx context.Context, tx *sql.Tx, receiptID string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM people WHERE receipt_id = ?", receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan person id: %w", err)
		}
		known[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return known, nil
}
