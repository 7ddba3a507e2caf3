// Package models defines the core domain models for Splittab.
//
// # Models
//
//   - User: registered account that owns receipts
//   - Receipt: a scanned or hand-entered bill with its split settings
//   - Item: individual line item on a receipt
//   - Person: someone splitting a receipt (a name, not an account)
//   - ItemShare: weighted assignment of one item to one person
//
// People are scoped to a single receipt and identified by name only; they do
// not reference User accounts. The User who created a receipt owns it and is
// the only one who can read or modify it.
//
// # Conventions
//
//  1. IDs are UUID strings, generated by the storage layer.
//  2. Timestamps are Unix seconds (int64).
//  3. Money is float64 dollars at the model boundary; the split engine is the
//     only place that rounds, and it rounds in integer cents.
//  4. Items and People carry a Position used as the stable display and
//     iteration order. Split results depend on this order for tie-breaking,
//     so stores must return rows ordered by it.
//  5. Relationships use ID strings, never struct pointers, to avoid cycles.
package models
