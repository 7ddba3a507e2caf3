package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"splittab/internal/middleware"
	"splittab/internal/models"
	"splittab/internal/storage"
)

// CreateReceipt handles POST /api/v1/receipts. Items and people may be
// included inline; split settings default when omitted.
func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req createReceiptRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	receipt, err := h.receipts.Create(r.Context(), middleware.GetUserID(r.Context()), req.receipt())
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, receipt)
}

// ListReceipts handles GET /api/v1/receipts.
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.receipts.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.ReceiptSummary{}
	}
	respond(w, http.StatusOK, summaries)
}

// GetReceipt handles GET /api/v1/receipts/{receiptID}.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.receipts.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, receipt)
}

// UpdateReceipt handles PATCH /api/v1/receipts/{receiptID}. Absent fields
// keep their stored values.
func (h *Handler) UpdateReceipt(w http.ResponseWriter, r *http.Request) {
	var req updateReceiptRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	userID := middleware.GetUserID(r.Context())
	receipt, err := h.receipts.Get(r.Context(), userID, chi.URLParam(r, "receiptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	req.apply(receipt)
	updated, err := h.receipts.Update(r.Context(), userID, receipt)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, updated)
}

// DeleteReceipt handles DELETE /api/v1/receipts/{receiptID}.
func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := h.receipts.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItems handles POST /api/v1/receipts/{receiptID}/items. It appends the
// posted items and returns them with IDs and positions assigned.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	items := make([]models.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.Item{Label: it.Label, Price: it.Price, Quantity: it.Quantity}
	}
	created, err := h.receipts.AddItems(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"), items)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

// UpdateItem handles PATCH /api/v1/receipts/{receiptID}/items/{itemID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	userID := middleware.GetUserID(r.Context())
	receiptID := chi.URLParam(r, "receiptID")
	receipt, err := h.receipts.Get(r.Context(), userID, receiptID)
	if err != nil {
		writeError(w, err)
		return
	}
	item := findItem(receipt, chi.URLParam(r, "itemID"))
	if item == nil {
		writeError(w, fmt.Errorf("item %s: %w", chi.URLParam(r, "itemID"), storage.ErrNotFound))
		return
	}
	req.apply(item)
	if err := h.receipts.UpdateItem(r.Context(), userID, receiptID, item); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/v1/receipts/{receiptID}/items/{itemID}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	err := h.receipts.DeleteItem(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "receiptID"), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPerson handles POST /api/v1/receipts/{receiptID}/people.
func (h *Handler) AddPerson(w http.ResponseWriter, r *http.Request) {
	var req personPayload
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	person := &models.Person{Name: req.Name, IsPaid: req.IsPaid}
	err := h.receipts.AddPerson(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"), person)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, person)
}

// UpdatePerson handles PATCH /api/v1/receipts/{receiptID}/people/{personID}.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req updatePersonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	userID := middleware.GetUserID(r.Context())
	receiptID := chi.URLParam(r, "receiptID")
	receipt, err := h.receipts.Get(r.Context(), userID, receiptID)
	if err != nil {
		writeError(w, err)
		return
	}
	person := findPerson(receipt, chi.URLParam(r, "personID"))
	if person == nil {
		writeError(w, fmt.Errorf("person %s: %w", chi.URLParam(r, "personID"), storage.ErrNotFound))
		return
	}
	req.apply(person)
	if err := h.receipts.UpdatePerson(r.Context(), userID, receiptID, person); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, person)
}

// DeletePerson handles DELETE /api/v1/receipts/{receiptID}/people/{personID}.
// The person's shares are removed with them.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	err := h.receipts.DeletePerson(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "receiptID"), chi.URLParam(r, "personID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetShares handles PUT /api/v1/receipts/{receiptID}/items/{itemID}/shares.
// The posted set replaces every share on the item; an empty set unassigns it.
func (h *Handler) SetShares(w http.ResponseWriter, r *http.Request) {
	var req setSharesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	itemID := chi.URLParam(r, "itemID")
	shares := make([]models.ItemShare, len(req.Shares))
	for i, sh := range req.Shares {
		shares[i] = models.ItemShare{ItemID: itemID, PersonID: sh.PersonID, Weight: sh.Weight}
	}
	err := h.receipts.SetItemShares(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "receiptID"), itemID, shares)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Totals handles GET /api/v1/receipts/{receiptID}/totals.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.receipts.Totals(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, totals)
}

// Breakdown handles GET /api/v1/receipts/{receiptID}/breakdown.
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	lines, err := h.receipts.Breakdown(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, lines)
}

func findItem(receipt *models.Receipt, itemID string) *models.Item {
	for i := range receipt.Items {
		if receipt.Items[i].ID == itemID {
			return &receipt.Items[i]
		}
	}
	return nil
}

func findPerson(receipt *models.Receipt, personID string) *models.Person {
	for i := range receipt.People {
		if receipt.People[i].ID == personID {
			return &receipt.People[i]
		}
	}
	return nil
}
