package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"splittab/internal/engine"
	"splittab/internal/models"
)

var validate = validator.New()

var errBadJSON = errors.New("malformed json body")

// decode unmarshals the request body into v and runs struct validation.
func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return validate.Struct(v)
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is returned by register and login.
type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type itemPayload struct {
	Label    string  `json:"label" validate:"required,max=200"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

type personPayload struct {
	Name   string `json:"name" validate:"required,max=100"`
	IsPaid bool   `json:"is_paid"`
}

type createReceiptRequest struct {
	Title             string          `json:"title" validate:"max=200"`
	Tax               float64         `json:"tax" validate:"gte=0"`
	Tip               float64         `json:"tip" validate:"gte=0"`
	TaxMode           string          `json:"tax_mode" validate:"omitempty,oneof=proportional even"`
	TipMode           string          `json:"tip_mode" validate:"omitempty,oneof=proportional even"`
	IncludeZeroPeople bool            `json:"include_zero_people"`
	Items             []itemPayload   `json:"items" validate:"dive"`
	People            []personPayload `json:"people" validate:"dive"`
}

func (req createReceiptRequest) receipt() *models.Receipt {
	receipt := &models.Receipt{
		Title:             req.Title,
		Tax:               req.Tax,
		Tip:               req.Tip,
		TaxMode:           models.SplitMode(req.TaxMode),
		TipMode:           models.SplitMode(req.TipMode),
		IncludeZeroPeople: req.IncludeZeroPeople,
	}
	for _, it := range req.Items {
		receipt.Items = append(receipt.Items, models.Item{
			Label:    it.Label,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	for _, p := range req.People {
		receipt.People = append(receipt.People, models.Person{
			Name:   p.Name,
			IsPaid: p.IsPaid,
		})
	}
	return receipt
}

// updateReceiptRequest patches receipt settings; absent fields keep their
// stored values.
type updateReceiptRequest struct {
	Title             *string  `json:"title" validate:"omitempty,max=200"`
	Tax               *float64 `json:"tax" validate:"omitempty,gte=0"`
	Tip               *float64 `json:"tip" validate:"omitempty,gte=0"`
	TaxMode           *string  `json:"tax_mode" validate:"omitempty,oneof=proportional even"`
	TipMode           *string  `json:"tip_mode" validate:"omitempty,oneof=proportional even"`
	IncludeZeroPeople *bool    `json:"include_zero_people"`
}

func (req updateReceiptRequest) apply(receipt *models.Receipt) {
	if req.Title != nil {
		receipt.Title = *req.Title
	}
	if req.Tax != nil {
		receipt.Tax = *req.Tax
	}
	if req.Tip != nil {
		receipt.Tip = *req.Tip
	}
	if req.TaxMode != nil {
		receipt.TaxMode = models.SplitMode(*req.TaxMode)
	}
	if req.TipMode != nil {
		receipt.TipMode = models.SplitMode(*req.TipMode)
	}
	if req.IncludeZeroPeople != nil {
		receipt.IncludeZeroPeople = *req.IncludeZeroPeople
	}
}

type addItemsRequest struct {
	Items []itemPayload `json:"items" validate:"required,min=1,dive"`
}

type updateItemRequest struct {
	Label    *string  `json:"label" validate:"omitempty,min=1,max=200"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity *int     `json:"quantity" validate:"omitempty,gte=0"`
}

func (req updateItemRequest) apply(item *models.Item) {
	if req.Label != nil {
		item.Label = *req.Label
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
}

type updatePersonRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	IsPaid *bool   `json:"is_paid"`
}

func (req updatePersonRequest) apply(person *models.Person) {
	if req.Name != nil {
		person.Name = *req.Name
	}
	if req.IsPaid != nil {
		person.IsPaid = *req.IsPaid
	}
}

type sharePayload struct {
	PersonID string  `json:"person_id" validate:"required"`
	Weight   float64 `json:"weight" validate:"gte=0"`
}

type setSharesRequest struct {
	Shares []sharePayload `json:"shares" validate:"dive"`
}

// previewRequest is a full split snapshot posted to the stateless preview
// endpoint. IDs are caller-chosen and only need to be consistent within the
// payload.
type previewRequest struct {
	Items  []previewItem   `json:"items" validate:"dive"`
	People []previewPerson `json:"people" validate:"dive"`
	Shares []previewShare  `json:"shares" validate:"dive"`

	Tax               float64 `json:"tax" validate:"gte=0"`
	Tip               float64 `json:"tip" validate:"gte=0"`
	TaxMode           string  `json:"tax_mode" validate:"omitempty,oneof=proportional even"`
	TipMode           string  `json:"tip_mode" validate:"omitempty,oneof=proportional even"`
	IncludeZeroPeople bool    `json:"include_zero_people"`
}

type previewItem struct {
	ID    string  `json:"id" validate:"required"`
	Label string  `json:"label" validate:"max=200"`
	Price float64 `json:"price" validate:"gte=0"`
}

type previewPerson struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"max=100"`
}

type previewShare struct {
	ItemID   string  `json:"item_id" validate:"required"`
	PersonID string  `json:"person_id" validate:"required"`
	Weight   float64 `json:"weight" validate:"gte=0"`
}

func (req previewRequest) snapshot() ([]models.Item, []models.ItemShare, []models.Person, engine.Charges) {
	items := make([]models.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.Item{ID: it.ID, Label: it.Label, Price: it.Price}
	}
	people := make([]models.Person, len(req.People))
	for i, p := range req.People {
		people[i] = models.Person{ID: p.ID, Name: p.Name}
	}
	shares := make([]models.ItemShare, len(req.Shares))
	for i, sh := range req.Shares {
		shares[i] = models.ItemShare{ItemID: sh.ItemID, PersonID: sh.PersonID, Weight: sh.Weight}
	}
	return items, shares, people, engine.Charges{
		Tax:               req.Tax,
		Tip:               req.Tip,
		TaxMode:           modeOrDefault(req.TaxMode),
		TipMode:           modeOrDefault(req.TipMode),
		IncludeZeroPeople: req.IncludeZeroPeople,
	}
}

func modeOrDefault(mode string) models.SplitMode {
	if mode == "" {
		return models.SplitProportional
	}
	return models.SplitMode(mode)
}
