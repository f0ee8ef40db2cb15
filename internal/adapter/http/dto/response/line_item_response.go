package response

import (
	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/usecase"
)

type LineItemResponse struct {
	ID            string   `json:"id"`
	ItemNumber    string   `json:"item_number,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Measurement   string   `json:"measurement"`
	Quantity      int      `json:"quantity"`
	Unit          string   `json:"unit"`
	Category      string   `json:"category"`
	UnitPrice     float64  `json:"unit_price"`
	TotalPrice    float64  `json:"total_price"`
	ProposedTotal float64  `json:"proposed_total"`
	ProposedBid   *float64 `json:"proposed_bid,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	SyncStatus    string   `json:"sync_status"`

	CalculatedUnitPrice  string                     `json:"calculated_unit_price,omitempty"`
	CalculatedTotalPrice string                     `json:"calculated_total_price,omitempty"`
	PriceListMatch       *entities.PriceListMatch   `json:"price_list_match,omitempty"`
	PriceCalculation     *entities.PriceCalculation `json:"price_calculation,omitempty"`
}

func FromLineItem(it entities.LineItem) LineItemResponse {
	res := LineItemResponse{
		ID:                   it.ID,
		Name:                 it.Name,
		Description:          it.Description,
		Measurement:          it.Measurement,
		Quantity:             it.Quantity,
		Unit:                 it.Unit,
		Category:             string(it.Category),
		UnitPrice:            it.UnitPrice,
		TotalPrice:           it.TotalPrice,
		ProposedTotal:        it.ProposedTotal,
		ProposedBid:          it.ProposedBid,
		Notes:                it.Notes,
		SyncStatus:           string(it.SyncStatus),
		CalculatedUnitPrice:  string(it.CalculatedUnitPrice),
		CalculatedTotalPrice: string(it.CalculatedTotalPrice),
		PriceListMatch:       it.PriceListMatch,
		PriceCalculation:     it.PriceCalculation,
	}
	if it.Backend != nil {
		res.ItemNumber = it.Backend.ItemNumber
	}
	return res
}

func FromLineItems(items []entities.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, FromLineItem(it))
	}
	return out
}

type ItemsResponse struct {
	Items     []LineItemResponse `json:"items"`
	Aggregate AggregateResponse  `json:"aggregate"`
	Warnings  []string           `json:"warnings"`
	Source    string             `json:"source"`
}

func FromItemsResult(r usecase.ItemsResult) ItemsResponse {
	return ItemsResponse{
		Items:     FromLineItems(r.Items),
		Aggregate: FromAggregateState(r.Aggregate),
		Warnings:  nonNil(r.Warnings),
		Source:    string(r.Source),
	}
}

type ItemResponse struct {
	Item      LineItemResponse  `json:"item"`
	Aggregate AggregateResponse `json:"aggregate"`
	Warnings  []string          `json:"warnings"`
}

func FromItemResult(r usecase.ItemResult) ItemResponse {
	return ItemResponse{
		Item:      FromLineItem(r.Item),
		Aggregate: FromAggregateState(r.Aggregate),
		Warnings:  nonNil(r.Warnings),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
