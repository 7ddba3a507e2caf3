package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"splittab/internal/models"
	"splittab/internal/storage"
)

// AddPerson appends a person to the receipt named by person.ReceiptID,
// assigning an ID and the next position.
func (s *Store) AddPerson(ctx context.Context, person *models.Person) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := receiptExists(ctx, tx, person.ReceiptID); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM people WHERE receipt_id = ?", person.ReceiptID).Scan(&person.Position)
	if err != nil {
		return fmt.Errorf("failed to get next person position: %w", err)
	}

	person.ID = uuid.New().String()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO people (id, receipt_id, name, is_paid, position) VALUES (?, ?, ?, ?, ?)",
		person.ID, person.ReceiptID, person.Name, person.IsPaid, person.Position,
	); err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}

	if err := touch(ctx, tx, person.ReceiptID, time.Now().Unix()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdatePerson updates a person's name and paid flag.
func (s *Store) UpdatePerson(ctx context.Context, person *models.Person) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE people SET name = ?, is_paid = ? WHERE id = ? AND receipt_id = ?",
		person.Name, person.IsPaid, person.ID, person.ReceiptID,
	)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("person %s: %w", person.ID, storage.ErrNotFound)
	}

	if err := touch(ctx, tx, person.ReceiptID, time.Now().Unix()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeletePerson removes a person; their shares cascade so remaining weights
// on each item renormalize on the next computation.
func (s *Store) DeletePerson(ctx context.Context, receiptID, personID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM people WHERE id = ? AND receipt_id = ?", personID, receiptID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("person %s: %w", personID, storage.ErrNotFound)
	}

	if err := touch(ctx, tx, receiptID, time.Now().Unix()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
