package interfaces

import (
	"context"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"
)

// IDemolitionItemRepository abstracts the backend item store.
//
// The store must be able to:
//   - return every item of a bid, in whatever envelope it keeps them
//   - create, update and delete a single item, echoing the stored record
//   - replace the full item set of a bid in one call
//
// Update returns a zero record (empty ItemNumber) when the item does not exist.

type IDemolitionItemRepository interface {
	FetchByBid(ctx context.Context, bidID string) (mapping.Envelope, error)
	Create(ctx context.Context, bidID string, record entities.DemolitionRecord) (entities.DemolitionRecord, error)
	Update(ctx context.Context, bidID, itemNumber string, record entities.DemolitionRecord) (entities.DemolitionRecord, error)
	Delete(ctx context.Context, bidID, itemNumber string) error
	ReplaceAll(ctx context.Context, bidID string, records []entities.DemolitionRecord) ([]entities.DemolitionRecord, error)
}
