package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultBidTotalsTableName = "bid_totals"

type bidTotalItem struct {
	BidID               string `dynamodbav:"bid_id"`
	TotalProposedAmount string `dynamodbav:"total_proposed_amount"`
	LastUpdated         string `dynamodbav:"last_updated"`
	Source              string `dynamodbav:"source"`
	DemolitionItems     *int   `dynamodbav:"demolition_items,omitempty"`
	ManualItems         *int   `dynamodbav:"manual_items,omitempty"`
}

// BidTotalDynamoRepository persists BidAggregate entities in DynamoDB.
//
// Table requirements:
//   - PK: bid_id (string)
//
// One row per bid. Set is an upsert, so the row is created by the first save.

type BidTotalDynamoRepository struct {
	ddb       dynamoDBAPI
	tableName string
}

var _ interfaces.IBidTotalRepository = (*BidTotalDynamoRepository)(nil)

func NewBidTotalDynamoRepository(ddb *dynamodb.Client) *BidTotalDynamoRepository {
	return newBidTotalDynamoRepository(ddb)
}

func newBidTotalDynamoRepository(ddb dynamoDBAPI) *BidTotalDynamoRepository {
	return &BidTotalDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("BID_TOTALS_TABLE", defaultBidTotalsTableName),
	}
}

func (r *BidTotalDynamoRepository) Get(ctx context.Context, bidID string) (entities.BidAggregate, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"bid_id": &types.AttributeValueMemberS{Value: bidID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.BidAggregate{}, err
	}
	if len(out.Item) == 0 {
		return entities.BidAggregate{}, nil
	}

	var it bidTotalItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.BidAggregate{}, err
	}
	return fromBidTotalItem(it), nil
}

func (r *BidTotalDynamoRepository) Set(ctx context.Context, agg entities.BidAggregate) (entities.BidAggregate, error) {
	if agg.LastUpdated.IsZero() {
		agg.LastUpdated = time.Now().UTC()
	}
	it := toBidTotalItem(agg)

	expr := "SET #total = :total, #last_updated = :last_updated, #source = :source"
	vals := map[string]types.AttributeValue{
		":total":        &types.AttributeValueMemberS{Value: it.TotalProposedAmount},
		":last_updated": &types.AttributeValueMemberS{Value: it.LastUpdated},
		":source":       &types.AttributeValueMemberS{Value: it.Source},
	}
	names := map[string]string{
		"#total":        "total_proposed_amount",
		"#last_updated": "last_updated",
		"#source":       "source",
	}
	if agg.Breakdown != nil {
		expr += ", #demolition_items = :demolition_items, #manual_items = :manual_items"
		vals[":demolition_items"] = &types.AttributeValueMemberN{Value: strconv.Itoa(agg.Breakdown.DemolitionItems)}
		vals[":manual_items"] = &types.AttributeValueMemberN{Value: strconv.Itoa(agg.Breakdown.ManualItems)}
		names["#demolition_items"] = "demolition_items"
		names["#manual_items"] = "manual_items"
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"bid_id": &types.AttributeValueMemberS{Value: agg.BidID},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: vals,
		ExpressionAttributeNames:  names,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return entities.BidAggregate{}, err
	}
	if len(out.Attributes) == 0 {
		return agg, nil
	}
	var saved bidTotalItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &saved); err != nil {
		return entities.BidAggregate{}, err
	}
	return fromBidTotalItem(saved), nil
}

func (r *BidTotalDynamoRepository) Clear(ctx context.Context, bidID string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"bid_id": &types.AttributeValueMemberS{Value: bidID},
		},
	})
	return err
}

func toBidTotalItem(a entities.BidAggregate) bidTotalItem {
	it := bidTotalItem{
		BidID:               a.BidID,
		TotalProposedAmount: floatToString(a.TotalProposedAmount),
		LastUpdated:         a.LastUpdated.UTC().Format(time.RFC3339Nano),
		Source:              string(a.Source),
	}
	if a.Breakdown != nil {
		demolition, manual := a.Breakdown.DemolitionItems, a.Breakdown.ManualItems
		it.DemolitionItems = &demolition
		it.ManualItems = &manual
	}
	return it
}

func fromBidTotalItem(it bidTotalItem) entities.BidAggregate {
	lastUpdated, _ := time.Parse(time.RFC3339Nano, it.LastUpdated)
	total, _ := entities.Amount(strings.TrimSpace(it.TotalProposedAmount)).Positive()
	a := entities.BidAggregate{
		BidID:               it.BidID,
		TotalProposedAmount: total,
		LastUpdated:         lastUpdated,
		Source:              entities.AggregateSource(it.Source),
	}
	if a.Source == "" {
		a.Source = entities.AggregateSourceAPI
	}
	if it.DemolitionItems != nil || it.ManualItems != nil {
		a.Breakdown = &entities.AggregateBreakdown{}
		if it.DemolitionItems != nil {
			a.Breakdown.DemolitionItems = *it.DemolitionItems
		}
		if it.ManualItems != nil {
			a.Breakdown.ManualItems = *it.ManualItems
		}
	}
	return a
}
