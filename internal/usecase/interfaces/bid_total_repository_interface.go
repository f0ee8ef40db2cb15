package interfaces

import (
	"context"

	"bid_pricing/internal/domain/entities"
)

// IBidTotalRepository abstracts persistence of a bid's total proposed amount.
//
// Get returns a zero BidAggregate (empty BidID) when nothing is stored yet.

type IBidTotalRepository interface {
	Get(ctx context.Context, bidID string) (entities.BidAggregate, error)
	Set(ctx context.Context, aggregate entities.BidAggregate) (entities.BidAggregate, error)
	Clear(ctx context.Context, bidID string) error
}
