package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeDynamo struct {
	getItem     map[string]types.AttributeValue
	queryItems  []map[string]types.AttributeValue
	updateErr   error
	unprocessed int

	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
	deletes []*dynamodb.DeleteItemInput
	batches [][]types.WriteRequest
}

func (f *fakeDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	attrs := map[string]types.AttributeValue{}
	for k, v := range in.Key {
		attrs[k] = v
	}
	for placeholder, name := range in.ExpressionAttributeNames {
		if v, ok := in.ExpressionAttributeValues[":"+strings.TrimPrefix(placeholder, "#")]; ok {
			attrs[name] = v
		}
	}
	return &dynamodb.UpdateItemOutput{Attributes: attrs}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deletes = append(f.deletes, in)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{Items: f.queryItems}, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	for table, reqs := range in.RequestItems {
		f.batches = append(f.batches, reqs)
		if f.unprocessed > 0 {
			f.unprocessed--
			return &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{table: reqs[:1]}}, nil
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func storedDemolitionItem(t *testing.T, bidID, itemNumber, record string) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(demolitionItem{BidID: bidID, ItemNumber: itemNumber, Category: "demolition", Record: record})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return av
}

func TestBidTotalDynamoRepository(t *testing.T) {
	t.Run("set writes the total as a string", func(t *testing.T) {
		fake := &fakeDynamo{}
		repo := newBidTotalDynamoRepository(fake)

		saved, err := repo.Set(context.Background(), entities.BidAggregate{
			BidID:               "bid-1",
			TotalProposedAmount: 1234.5,
			Source:              entities.AggregateSourceCalculated,
			Breakdown:           &entities.AggregateBreakdown{DemolitionItems: 3, ManualItems: 1},
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(fake.updates) != 1 || fake.updates[0].ConditionExpression != nil {
			t.Fatalf("expected one unconditional upsert, got %+v", fake.updates)
		}
		total, ok := fake.updates[0].ExpressionAttributeValues[":total"].(*types.AttributeValueMemberS)
		if !ok || total.Value != "1234.5" {
			t.Fatalf("expected string total 1234.5, got %#v", fake.updates[0].ExpressionAttributeValues[":total"])
		}
		if saved.BidID != "bid-1" || saved.TotalProposedAmount != 1234.5 || saved.Breakdown == nil || saved.Breakdown.DemolitionItems != 3 {
			t.Fatalf("unexpected saved aggregate %+v", saved)
		}
		if saved.LastUpdated.IsZero() {
			t.Fatalf("expected last updated to be set")
		}
	})

	t.Run("get on a missing row", func(t *testing.T) {
		repo := newBidTotalDynamoRepository(&fakeDynamo{})
		agg, err := repo.Get(context.Background(), "bid-1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if agg.BidID != "" {
			t.Fatalf("expected zero aggregate, got %+v", agg)
		}
	})

	t.Run("get tolerates a bad total", func(t *testing.T) {
		av, _ := attributevalue.MarshalMap(bidTotalItem{BidID: "bid-1", TotalProposedAmount: "n/a"})
		repo := newBidTotalDynamoRepository(&fakeDynamo{getItem: av})
		agg, err := repo.Get(context.Background(), "bid-1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if agg.TotalProposedAmount != 0 || agg.Source != entities.AggregateSourceAPI {
			t.Fatalf("unexpected aggregate %+v", agg)
		}
	})

	t.Run("clear", func(t *testing.T) {
		fake := &fakeDynamo{}
		repo := newBidTotalDynamoRepository(fake)
		if err := repo.Clear(context.Background(), "bid-1"); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(fake.deletes) != 1 {
			t.Fatalf("expected one delete, got %d", len(fake.deletes))
		}
	})
}

func TestDemolitionItemDynamoRepository_FetchByBid(t *testing.T) {
	fake := &fakeDynamo{queryItems: []map[string]types.AttributeValue{
		storedDemolitionItem(t, "bid-1", "D-1", `{"itemNumber":"D-1","description":"Remove wall","unitPrice":"10","confidence":0.9}`),
		storedDemolitionItem(t, "bid-1", "D-2", `not json`),
	}}
	repo := newDemolitionItemDynamoRepository(fake)

	env, err := repo.FetchByBid(context.Background(), "bid-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if env.Shape != mapping.ShapeItems || len(env.Items) != 2 {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.Items[0].UnitPrice != "10" || env.Items[0].Extra["confidence"] == nil {
		t.Fatalf("record not decoded: %+v", env.Items[0])
	}
	if env.Items[1].ItemNumber != "D-2" || env.Items[1].Category != entities.BackendCategoryDemolition {
		t.Fatalf("unreadable record should keep its key, got %+v", env.Items[1])
	}
}

func TestDemolitionItemDynamoRepository_Create(t *testing.T) {
	fake := &fakeDynamo{}
	repo := newDemolitionItemDynamoRepository(fake)
	repo.now = func() time.Time { return time.UnixMilli(1700000000000) }

	saved, err := repo.Create(context.Background(), "bid-1", entities.DemolitionRecord{ItemNumber: "temp-1", Description: "Remove sink"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasPrefix(saved.ItemNumber.String(), "ITEM-1700000000000-") || saved.BackendID == "" {
		t.Fatalf("expected generated keys, got %+v", saved)
	}
	if len(fake.puts) != 1 || aws.ToString(fake.puts[0].ConditionExpression) != "attribute_not_exists(#item_number)" {
		t.Fatalf("expected one conditional put, got %+v", fake.puts)
	}

	other, err := repo.Create(context.Background(), "bid-1", entities.DemolitionRecord{ItemNumber: "temp-2", Description: "Remove tub"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if other.ItemNumber == saved.ItemNumber {
		t.Fatalf("creates in the same millisecond share key %q", saved.ItemNumber)
	}
}

func TestDemolitionItemDynamoRepository_Update(t *testing.T) {
	t.Run("echoes the stored record", func(t *testing.T) {
		fake := &fakeDynamo{}
		repo := newDemolitionItemDynamoRepository(fake)

		saved, err := repo.Update(context.Background(), "bid-1", "D-1", entities.DemolitionRecord{Description: "Remove wall", ProposedBid: "500"})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if saved.ItemNumber != "D-1" || saved.ProposedBid != "500" {
			t.Fatalf("unexpected record %+v", saved)
		}
	})

	t.Run("missing item yields a zero record", func(t *testing.T) {
		fake := &fakeDynamo{updateErr: &types.ConditionalCheckFailedException{Message: aws.String("missing")}}
		repo := newDemolitionItemDynamoRepository(fake)

		saved, err := repo.Update(context.Background(), "bid-1", "D-9", entities.DemolitionRecord{})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if saved.ItemNumber != "" {
			t.Fatalf("expected zero record, got %+v", saved)
		}
	})

	t.Run("other errors surface", func(t *testing.T) {
		fake := &fakeDynamo{updateErr: errors.New("throttled")}
		repo := newDemolitionItemDynamoRepository(fake)
		if _, err := repo.Update(context.Background(), "bid-1", "D-1", entities.DemolitionRecord{}); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDemolitionItemDynamoRepository_ReplaceAll(t *testing.T) {
	fake := &fakeDynamo{
		queryItems: []map[string]types.AttributeValue{
			storedDemolitionItem(t, "bid-1", "OLD-1", `{}`),
			storedDemolitionItem(t, "bid-1", "R-0", `{}`),
		},
		unprocessed: 1,
	}
	repo := newDemolitionItemDynamoRepository(fake)
	repo.backoff = time.Millisecond

	records := make([]entities.DemolitionRecord, 0, 30)
	for i := 0; i < 30; i++ {
		records = append(records, entities.DemolitionRecord{ItemNumber: entities.Identifier(fmt.Sprintf("R-%d", i))})
	}

	saved, err := repo.ReplaceAll(context.Background(), "bid-1", records)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(saved) != 30 {
		t.Fatalf("expected 30 saved, got %d", len(saved))
	}

	// 31 requests: 25 + retry of 1 unprocessed + 6
	if len(fake.batches) != 3 || len(fake.batches[0]) != 25 || len(fake.batches[1]) != 1 || len(fake.batches[2]) != 6 {
		t.Fatalf("unexpected batches: %d", len(fake.batches))
	}
	last := fake.batches[2][5]
	if last.DeleteRequest == nil {
		t.Fatalf("expected the stale item to be deleted last")
	}
	if key := last.DeleteRequest.Key["item_number"].(*types.AttributeValueMemberS).Value; key != "OLD-1" {
		t.Fatalf("expected OLD-1 deleted, got %s", key)
	}
}
