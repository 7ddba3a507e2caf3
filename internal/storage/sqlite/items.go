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

// AddItems appends items to a receipt, assigning IDs and positions after the
// existing ones. The stored items are returned with all fields populated.
func (s *Store) AddItems(ctx context.Context, receiptID string, items []models.Item) ([]models.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := receiptExists(ctx, tx, receiptID); err != nil {
		return nil, err
	}

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM items WHERE receipt_id = ?", receiptID).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("failed to get next item position: %w", err)
	}

	for i := range items {
		it := &items[i]
		it.ID = uuid.New().String()
		it.ReceiptID = receiptID
		it.Position = next + i
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, receipt_id, label, price, quantity, position) VALUES (?, ?, ?, ?, ?, ?)",
			it.ID, it.ReceiptID, it.Label, it.Price, it.Quantity, it.Position,
		); err != nil {
			return nil, fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := touch(ctx, tx, receiptID, time.Now().Unix()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return items, nil
}

// UpdateItem updates an item's label, price, and quantity.
func (s *Store) UpdateItem(ctx context.Context, receiptID string, item *models.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE items SET label = ?, price = ?, quantity = ? WHERE id = ? AND receipt_id = ?",
		item.Label, item.Price, item.Quantity, item.ID, receiptID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item %s: %w", item.ID, storage.ErrNotFound)
	}

	if err := touch(ctx, tx, receiptID, time.Now().Unix()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteItem removes an item; its shares cascade.
func (s *Store) DeleteItem(ctx context.Context, receiptID, itemID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM items WHERE id = ? AND receipt_id = ?", itemID, receiptID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}

	if err := touch(ctx, tx, receiptID, time.Now().Unix()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// receiptExists confirms a receipt row is present before dependent writes.
func receiptExists(ctx context.Context, tx *sql.Tx, receiptID string) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM receipts WHERE id = ?", receiptID).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check receipt: %w", err)
	}
	return nil
}
