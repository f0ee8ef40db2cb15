package entities

import "encoding/json"

// UICategory is a category label of the bid item vocabulary.
type UICategory string

const (
	CategoryGeneral        UICategory = "General"
	CategoryRegular        UICategory = "Regular"
	CategoryDemolition     UICategory = "Demolition"
	CategoryElectrical     UICategory = "Electrical"
	CategoryPlumbing       UICategory = "Plumbing"
	CategoryHVAC           UICategory = "HVAC"
	CategoryMEP            UICategory = "MEP"
	CategoryMechanical     UICategory = "Mechanical"
	CategoryStorefront     UICategory = "Storefront"
	CategorySignage        UICategory = "Signage"
	CategoryFireProtection UICategory = "Fire Protection"
	CategoryWall           UICategory = "Wall"
	CategoryCeiling        UICategory = "Ceiling"
	CategoryFloor          UICategory = "Floor"
	CategoryDoor           UICategory = "Door"
	CategoryWindow         UICategory = "Window"
	CategoryFixture        UICategory = "Fixture"
	CategoryCleanup        UICategory = "Cleanup"
	CategoryStructural     UICategory = "Structural"
	CategoryInterior       UICategory = "Interior"
	CategoryExterior       UICategory = "Exterior"
)

// UICategories lists the closed bid item vocabulary.
var UICategories = []UICategory{
	CategoryGeneral, CategoryRegular, CategoryDemolition, CategoryElectrical,
	CategoryPlumbing, CategoryHVAC, CategoryMEP, CategoryMechanical,
	CategoryStorefront, CategorySignage, CategoryFireProtection, CategoryWall,
	CategoryCeiling, CategoryFloor, CategoryDoor, CategoryWindow,
	CategoryFixture, CategoryCleanup, CategoryStructural, CategoryInterior,
	CategoryExterior,
}

// SyncStatus tracks whether the store has seen the latest local edit.
type SyncStatus string

const (
	SyncStatusClean       SyncStatus = "clean"
	SyncStatusPendingSync SyncStatus = "pending_sync"
	SyncStatusSyncFailed  SyncStatus = "sync_failed"
)

// LineItem is one priced row of a bid as the front end renders it.
//
// ProposedTotal is never left undefined: it is the explicit ProposedBid when
// the user supplied one, otherwise the resolved price of the item.
type LineItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Measurement   string     `json:"measurement"`
	Quantity      int        `json:"quantity"`
	Unit          string     `json:"unit"`
	Category      UICategory `json:"category"`
	UnitPrice     float64    `json:"unit_price"`
	TotalPrice    float64    `json:"total_price"`
	ProposedTotal float64    `json:"proposed_total"`
	ProposedBid   *float64   `json:"proposed_bid,omitempty"`
	Notes         string     `json:"notes,omitempty"`

	CalculatedUnitPrice  Amount            `json:"calculated_unit_price,omitempty"`
	CalculatedTotalPrice Amount            `json:"calculated_total_price,omitempty"`
	PriceListMatch       *PriceListMatch   `json:"price_list_match,omitempty"`
	PriceCalculation     *PriceCalculation `json:"price_calculation,omitempty"`

	Backend    *BackendFields `json:"backend,omitempty"`
	SyncStatus SyncStatus     `json:"sync_status"`
}

// BackendFields carries storage-only values across a read, edit, write cycle.
type BackendFields struct {
	ItemNumber       string                     `json:"item_number,omitempty"`
	ID               string                     `json:"id,omitempty"`
	BackendID        string                     `json:"_id,omitempty"`
	Category         BackendCategory            `json:"category,omitempty"`
	Action           string                     `json:"action,omitempty"`
	QuantityText     Amount                     `json:"quantity_text,omitempty"`
	Dimensions       json.RawMessage            `json:"dimensions,omitempty"`
	MeasurementExtra map[string]json.RawMessage `json:"measurement_extra,omitempty"`
	UnitPrice        Amount                     `json:"unit_price,omitempty"`
	TotalPrice       Amount                     `json:"total_price,omitempty"`
	Pricing          Amount                     `json:"pricing,omitempty"`
	Price            Amount                     `json:"price,omitempty"`
	Active           *bool                      `json:"active,omitempty"`
	OriginalBidItem  json.RawMessage            `json:"original_bid_item,omitempty"`
	Extra            map[string]json.RawMessage `json:"extra,omitempty"`
}
