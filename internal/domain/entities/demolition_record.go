package entities

import (
	"bytes"
	"encoding/json"
)

// BackendCategory is a category token of the storage vocabulary.
type BackendCategory string

const (
	BackendCategoryGeneral        BackendCategory = "general"
	BackendCategoryDemolition     BackendCategory = "demolition"
	BackendCategoryElectrical     BackendCategory = "electrical"
	BackendCategoryPlumbing       BackendCategory = "plumbing"
	BackendCategoryHVAC           BackendCategory = "hvac"
	BackendCategoryMEP            BackendCategory = "mep"
	BackendCategoryMechanical     BackendCategory = "mechanical"
	BackendCategoryStorefront     BackendCategory = "storefront"
	BackendCategorySignage        BackendCategory = "signage"
	BackendCategoryFireProtection BackendCategory = "fire_protection"
	BackendCategoryWall           BackendCategory = "wall"
	BackendCategoryCeiling        BackendCategory = "ceiling"
	BackendCategoryFlooring       BackendCategory = "flooring"
	BackendCategoryDoor           BackendCategory = "door"
	BackendCategoryWindow         BackendCategory = "window"
	BackendCategoryFixture        BackendCategory = "fixture"
	BackendCategoryCleanup        BackendCategory = "cleanup"
	BackendCategoryStructural     BackendCategory = "structural"
	BackendCategoryInterior       BackendCategory = "interior"
	BackendCategoryExterior       BackendCategory = "exterior"
	BackendCategoryOther          BackendCategory = "other"
)

// DefaultAction is stored when a record does not say what to do with the item.
const DefaultAction = "Remove"

// DemolitionRecord is the item shape of the backend item store.
//
// Every numeric field is an Amount. Keys the service does not know about are
// kept in Extra and written back unchanged.
type DemolitionRecord struct {
	ItemNumber           Identifier        `json:"itemNumber,omitempty"`
	ID                   Identifier        `json:"id,omitempty"`
	BackendID            Identifier        `json:"_id,omitempty"`
	Name                 string            `json:"name,omitempty"`
	Description          string            `json:"description,omitempty"`
	Category             BackendCategory   `json:"category,omitempty"`
	Action               string            `json:"action,omitempty"`
	Measurements         *Measurements     `json:"measurements,omitempty"`
	UnitPrice            Amount            `json:"unitPrice,omitempty"`
	TotalPrice           Amount            `json:"totalPrice,omitempty"`
	Pricing              Amount            `json:"pricing,omitempty"`
	Price                Amount            `json:"price,omitempty"`
	ProposedBid          Amount            `json:"proposedBid,omitempty"`
	CalculatedUnitPrice  Amount            `json:"calculatedUnitPrice,omitempty"`
	CalculatedTotalPrice Amount            `json:"calculatedTotalPrice,omitempty"`
	PriceListMatch       *PriceListMatch   `json:"priceListMatch,omitempty"`
	PriceCalculation     *PriceCalculation `json:"priceCalculation,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	Active               *bool             `json:"active,omitempty"`
	OriginalBidItem      json.RawMessage   `json:"originalBidItem,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var demolitionRecordKeys = []string{
	"itemNumber", "id", "_id", "name", "description", "category", "action",
	"measurements", "unitPrice", "totalPrice", "pricing", "price", "proposedBid",
	"calculatedUnitPrice", "calculatedTotalPrice", "priceListMatch",
	"priceCalculation", "notes", "active", "originalBidItem",
}

func (r *DemolitionRecord) UnmarshalJSON(b []byte) error {
	type alias DemolitionRecord
	var a alias
	extra, err := decodeWithExtra(b, &a, demolitionRecordKeys)
	if err != nil {
		return err
	}
	*r = DemolitionRecord(a)
	r.Extra = extra
	return nil
}

func (r DemolitionRecord) MarshalJSON() ([]byte, error) {
	type alias DemolitionRecord
	return encodeWithExtra(alias(r), r.Extra)
}

// OriginalDescription reads originalBidItem.description, if any.
func (r DemolitionRecord) OriginalDescription() string {
	if len(r.OriginalBidItem) == 0 {
		return ""
	}
	var snap struct {
		Description string `json:"description"`
		Name        string `json:"name"`
	}
	if err := json.Unmarshal(r.OriginalBidItem, &snap); err != nil {
		return ""
	}
	if snap.Description != "" {
		return snap.Description
	}
	return snap.Name
}

// Measurements holds quantity and unit as the store sends them.
type Measurements struct {
	Quantity   Amount          `json:"quantity,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Dimensions json.RawMessage `json:"dimensions,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var measurementKeys = []string{"quantity", "unit", "dimensions"}

func (m *Measurements) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		*m = Measurements{}
		return nil
	}
	type alias Measurements
	var a alias
	extra, err := decodeWithExtra(b, &a, measurementKeys)
	if err != nil {
		return err
	}
	*m = Measurements(a)
	m.Extra = extra
	return nil
}

func (m Measurements) MarshalJSON() ([]byte, error) {
	type alias Measurements
	return encodeWithExtra(alias(m), m.Extra)
}

// PriceCalculation is the breakdown an automated pricing stage attaches.
type PriceCalculation struct {
	UnitPrice  Amount `json:"unitPrice,omitempty"`
	TotalPrice Amount `json:"totalPrice,omitempty"`
	Method     string `json:"method,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var priceCalculationKeys = []string{"unitPrice", "totalPrice", "method"}

func (p *PriceCalculation) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		*p = PriceCalculation{}
		return nil
	}
	type alias PriceCalculation
	var a alias
	extra, err := decodeWithExtra(b, &a, priceCalculationKeys)
	if err != nil {
		return err
	}
	*p = PriceCalculation(a)
	p.Extra = extra
	return nil
}

func (p PriceCalculation) MarshalJSON() ([]byte, error) {
	type alias PriceCalculation
	return encodeWithExtra(alias(p), p.Extra)
}

// PriceListMatch describes a hit against the contractor's price list.
// Older records send a bare boolean instead of an object; Raw keeps it.
type PriceListMatch struct {
	UnitPrice Amount `json:"unitPrice,omitempty"`
	ItemName  string `json:"itemName,omitempty"`
	Matched   *bool  `json:"matched,omitempty"`

	Raw   json.RawMessage            `json:"-"`
	Extra map[string]json.RawMessage `json:"-"`
}

var priceListMatchKeys = []string{"unitPrice", "itemName", "matched"}

func (p *PriceListMatch) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		*p = PriceListMatch{Raw: append(json.RawMessage(nil), bytes.TrimSpace(b)...)}
		return nil
	}
	type alias PriceListMatch
	var a alias
	extra, err := decodeWithExtra(b, &a, priceListMatchKeys)
	if err != nil {
		return err
	}
	*p = PriceListMatch(a)
	p.Extra = extra
	return nil
}

func (p PriceListMatch) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	type alias PriceListMatch
	return encodeWithExtra(alias(p), p.Extra)
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
