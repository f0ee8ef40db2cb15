package entities

import "time"

// AggregateSource tells where a stored total came from.
type AggregateSource string

const (
	AggregateSourceManual     AggregateSource = "manual"
	AggregateSourceCalculated AggregateSource = "calculated"
	AggregateSourceAPI        AggregateSource = "api"
)

// AggregateBreakdown counts the items that fed a total.
type AggregateBreakdown struct {
	DemolitionItems int `json:"demolition_items"`
	ManualItems     int `json:"manual_items"`
}

// BidAggregate is the stored total proposed amount of one bid.
//
// Storage model (DynamoDB):
//   - PK: bid_id
//
// The record is created by the first save and removed only by an explicit
// clear. TotalProposedAmount is stored as a string, like every other number
// the backend keeps.
type BidAggregate struct {
	BidID               string              `json:"bid_id"`
	TotalProposedAmount float64             `json:"total_proposed_amount"`
	LastUpdated         time.Time           `json:"last_updated"`
	Source              AggregateSource     `json:"source"`
	Breakdown           *AggregateBreakdown `json:"breakdown,omitempty"`
}
