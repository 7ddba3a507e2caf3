// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"splittab/internal/models"
)

// ErrNotFound is returned when a requested record does not exist, or exists
// under a different parent than the caller named.
var ErrNotFound = errors.New("not found")

// Store defines the interface for receipt and user persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateReceipt persists a new receipt together with its initial items
	// and people. IDs, positions, timestamps, and a missing title are
	// populated by the store. Shares are not written here; a fresh receipt
	// starts unassigned.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt with its items, people, and shares.
	// Items and people come back in position order, shares in (item
	// position, person position) order.
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)

	// GetReceiptOwner returns the owner ID of a receipt without loading
	// the rest of it.
	GetReceiptOwner(ctx context.Context, id string) (string, error)

	// ListReceipts returns summaries of the owner's receipts, newest first.
	ListReceipts(ctx context.Context, ownerID string) ([]models.ReceiptSummary, error)

	// UpdateReceipt updates a receipt's title and split settings.
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error

	// DeleteReceipt removes a receipt and, via cascade, its items, people,
	// and shares.
	DeleteReceipt(ctx context.Context, id string) error

	// AddItems appends items to a receipt, assigning IDs and positions.
	AddItems(ctx context.Context, receiptID string, items []models.Item) ([]models.Item, error)

	// UpdateItem updates an item's label, price, and quantity.
	UpdateItem(ctx context.Context, receiptID string, item *models.Item) error

	// DeleteItem removes an item and, via cascade, its shares.
	DeleteItem(ctx context.Context, receiptID, itemID string) error

	// AddPerson appends a person to a receipt, assigning an ID and position.
	AddPerson(ctx context.Context, person *models.Person) error

	// UpdatePerson updates a person's name and paid flag.
	UpdatePerson(ctx context.Context, person *models.Person) error

	// DeletePerson removes a person and, via cascade, their shares.
	DeletePerson(ctx context.Context, receiptID, personID string) error

	// SetItemShares replaces the full share set of one item. Every person
	// referenced must belong to the item's receipt.
	SetItemShares(ctx context.Context, receiptID, itemID string, shares []models.ItemShare) error

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
