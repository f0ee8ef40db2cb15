package request

import (
	"errors"
	"fmt"
	"strings"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/usecase"
)

// LineItemRequest is the body of a create and one row of a full replace.
//
// ID is only honored by a full replace; a create always gets a fresh id.
type LineItemRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Measurement string   `json:"measurement"`
	Quantity    *int     `json:"quantity"`
	Unit        string   `json:"unit"`
	Category    string   `json:"category"`
	UnitPrice   *float64 `json:"unit_price"`
	ProposedBid *float64 `json:"proposed_bid"`
	Notes       string   `json:"notes"`
}

// ToLineItem defaults a missing quantity to 1 and rejects anything below.
func (r LineItemRequest) ToLineItem() (entities.LineItem, error) {
	quantity := 1
	if r.Quantity != nil {
		if *r.Quantity < 1 {
			return entities.LineItem{}, &usecase.ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
		}
		quantity = *r.Quantity
	}

	it := entities.LineItem{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Measurement: strings.TrimSpace(r.Measurement),
		Quantity:    quantity,
		Unit:        strings.TrimSpace(r.Unit),
		Category:    entities.UICategory(strings.TrimSpace(r.Category)),
		Notes:       r.Notes,
	}
	if r.UnitPrice != nil {
		it.UnitPrice = *r.UnitPrice
	}
	if r.ProposedBid != nil {
		v := *r.ProposedBid
		it.ProposedBid = &v
	}
	return it, nil
}

// ReplaceItemsRequest is the body of a full item set replace.
type ReplaceItemsRequest struct {
	Items []LineItemRequest `json:"items"`
}

func (r ReplaceItemsRequest) ToLineItems() ([]entities.LineItem, error) {
	out := make([]entities.LineItem, 0, len(r.Items))
	for i, item := range r.Items {
		it, err := item.ToLineItem()
		if err != nil {
			var ve *usecase.ValidationError
			if errors.As(err, &ve) {
				return nil, &usecase.ValidationError{Field: fmt.Sprintf("items[%d].%s", i, ve.Field), Message: ve.Message}
			}
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// LineItemPatchRequest carries a partial update. Absent fields are kept;
// a JSON null proposed_bid cannot be told apart from an absent one, so
// clear_proposed_bid removes the override.
type LineItemPatchRequest struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Measurement      *string  `json:"measurement"`
	Quantity         *int     `json:"quantity"`
	Unit             *string  `json:"unit"`
	Category         *string  `json:"category"`
	UnitPrice        *float64 `json:"unit_price"`
	ProposedBid      *float64 `json:"proposed_bid"`
	ClearProposedBid bool     `json:"clear_proposed_bid"`
	Notes            *string  `json:"notes"`
}

func (r LineItemPatchRequest) ToPatch() (usecase.LineItemPatch, error) {
	if r.Quantity != nil && *r.Quantity < 1 {
		return usecase.LineItemPatch{}, &usecase.ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return usecase.LineItemPatch{}, &usecase.ValidationError{Field: "name", Message: "name is required"}
	}
	if r.ClearProposedBid && r.ProposedBid != nil {
		return usecase.LineItemPatch{}, &usecase.ValidationError{Field: "proposed_bid", Message: "proposed_bid and clear_proposed_bid are mutually exclusive"}
	}

	p := usecase.LineItemPatch{
		Name:             r.Name,
		Description:      r.Description,
		Measurement:      r.Measurement,
		Quantity:         r.Quantity,
		Unit:             r.Unit,
		UnitPrice:        r.UnitPrice,
		ProposedBid:      r.ProposedBid,
		ClearProposedBid: r.ClearProposedBid,
		Notes:            r.Notes,
	}
	if r.Category != nil {
		c := entities.UICategory(strings.TrimSpace(*r.Category))
		p.Category = &c
	}
	return p, nil
}
