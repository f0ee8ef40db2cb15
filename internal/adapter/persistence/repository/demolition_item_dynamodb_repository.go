package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"
	"bid_pricing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const (
	defaultDemolitionItemsTableName = "demolition_items"

	// BatchWriteItem accepts at most 25 requests per call.
	batchWriteLimit    = 25
	batchWriteAttempts = 5
)

var ErrDemolitionItemExists = errors.New("demolition item already exists")

type demolitionItem struct {
	BidID      string `dynamodbav:"bid_id"`
	ItemNumber string `dynamodbav:"item_number"`
	Category   string `dynamodbav:"category"`
	Record     string `dynamodbav:"record"`
	UpdatedAt  string `dynamodbav:"updated_at"`
}

// DemolitionItemDynamoRepository persists DemolitionRecord entities in DynamoDB.
//
// Table requirements:
//   - PK: bid_id (string)
//   - SK: item_number (string)
//
// The record is kept as its JSON document so keys this service does not know
// about survive unchanged.

type DemolitionItemDynamoRepository struct {
	ddb       dynamoDBAPI
	tableName string
	now       func() time.Time
	backoff   time.Duration
}

var _ interfaces.IDemolitionItemRepository = (*DemolitionItemDynamoRepository)(nil)

func NewDemolitionItemDynamoRepository(ddb *dynamodb.Client) *DemolitionItemDynamoRepository {
	return newDemolitionItemDynamoRepository(ddb)
}

func newDemolitionItemDynamoRepository(ddb dynamoDBAPI) *DemolitionItemDynamoRepository {
	return &DemolitionItemDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("DEMOLITION_ITEMS_TABLE", defaultDemolitionItemsTableName),
		now:       func() time.Time { return time.Now().UTC() },
		backoff:   50 * time.Millisecond,
	}
}

func (r *DemolitionItemDynamoRepository) FetchByBid(ctx context.Context, bidID string) (mapping.Envelope, error) {
	items, err := r.query(ctx, bidID)
	if err != nil {
		return mapping.Envelope{}, err
	}
	if len(items) == 0 {
		return mapping.Envelope{Shape: mapping.ShapeEmpty}, nil
	}
	records := make([]entities.DemolitionRecord, 0, len(items))
	for _, it := range items {
		records = append(records, fromDemolitionItem(it))
	}
	return mapping.Envelope{Shape: mapping.ShapeItems, Items: records}, nil
}

func (r *DemolitionItemDynamoRepository) Create(ctx context.Context, bidID string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
	rec = r.withKeys(rec, r.singleKey)
	it, err := toDemolitionItem(bidID, rec, r.now())
	if err != nil {
		return entities.DemolitionRecord{}, err
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.DemolitionRecord{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#item_number)"),
		ExpressionAttributeNames: map[string]string{
			"#item_number": "item_number",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.DemolitionRecord{}, fmt.Errorf("%w: %s", ErrDemolitionItemExists, rec.ItemNumber)
		}
		return entities.DemolitionRecord{}, err
	}
	return rec, nil
}

func (r *DemolitionItemDynamoRepository) Update(ctx context.Context, bidID, itemNumber string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
	rec.ItemNumber = entities.Identifier(itemNumber)
	rec = r.withKeys(rec, r.singleKey)
	it, err := toDemolitionItem(bidID, rec, r.now())
	if err != nil {
		return entities.DemolitionRecord{}, err
	}

	return r.update(ctx, bidID, itemNumber, func() (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #record = :record, #category = :category, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":record":     &types.AttributeValueMemberS{Value: it.Record},
			":category":   &types.AttributeValueMemberS{Value: it.Category},
			":updated_at": &types.AttributeValueMemberS{Value: it.UpdatedAt},
		}
		names := map[string]string{
			"#record":     "record",
			"#category":   "category",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
}

func (r *DemolitionItemDynamoRepository) Delete(ctx context.Context, bidID, itemNumber string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       demolitionKey(bidID, itemNumber),
	})
	return err
}

// ReplaceAll writes records as the bid's full item set: stored items that
// are not in records are deleted.
func (r *DemolitionItemDynamoRepository) ReplaceAll(ctx context.Context, bidID string, records []entities.DemolitionRecord) ([]entities.DemolitionRecord, error) {
	existing, err := r.query(ctx, bidID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	saved := make([]entities.DemolitionRecord, 0, len(records))
	keep := make(map[string]bool, len(records))
	requests := make([]types.WriteRequest, 0, len(records)+len(existing))
	for i, rec := range records {
		rec = r.withKeys(rec, func() string { return mapping.NewItemKey(now, i) })
		it, err := toDemolitionItem(bidID, rec, now)
		if err != nil {
			return nil, err
		}
		av, err := attributevalue.MarshalMap(it)
		if err != nil {
			return nil, err
		}
		keep[it.ItemNumber] = true
		saved = append(saved, rec)
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}
	for _, it := range existing {
		if !keep[it.ItemNumber] {
			requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: demolitionKey(bidID, it.ItemNumber)}})
		}
	}

	for start := 0; start < len(requests); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(requests))
		if err := r.batchWrite(ctx, requests[start:end]); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

func (r *DemolitionItemDynamoRepository) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.tableName: requests}
	for attempt := 1; len(pending[r.tableName]) > 0; attempt++ {
		if attempt > batchWriteAttempts {
			return fmt.Errorf("batch write: %d requests left unprocessed", len(pending[r.tableName]))
		}
		out, err := r.ddb.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems
		if len(pending[r.tableName]) == 0 {
			return nil
		}
		log.Printf("[items][dynamodb] unprocessed batch requests=%d attempt=%d", len(pending[r.tableName]), attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}
	return nil
}

func (r *DemolitionItemDynamoRepository) query(ctx context.Context, bidID string) ([]demolitionItem, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("bid_id = :bid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bid": &types.AttributeValueMemberS{Value: bidID},
		},
		ConsistentRead: aws.Bool(true),
	})

	var items []demolitionItem
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			var it demolitionItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *DemolitionItemDynamoRepository) update(
	ctx context.Context,
	bidID, itemNumber string,
	build func() (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (entities.DemolitionRecord, error) {
	updateExpr, values, names := build()

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       demolitionKey(bidID, itemNumber),
		ConditionExpression:       aws.String("attribute_exists(#item_number)"),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#item_number": "item_number"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.DemolitionRecord{}, nil
		}
		return entities.DemolitionRecord{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.DemolitionRecord{}, nil
	}
	var it demolitionItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.DemolitionRecord{}, err
	}
	return fromDemolitionItem(it), nil
}

// withKeys fills in the item number and the document id the store owns.
func (r *DemolitionItemDynamoRepository) withKeys(rec entities.DemolitionRecord, newKey func() string) entities.DemolitionRecord {
	if mapping.IsNewItem(rec.ItemNumber.String()) {
		rec.ItemNumber = entities.Identifier(newKey())
	}
	if rec.BackendID.String() == "" {
		rec.BackendID = entities.Identifier(uuid.NewString())
	}
	return rec
}

func (r *DemolitionItemDynamoRepository) singleKey() string {
	return mapping.NewSingleItemKey(r.now())
}

func demolitionKey(bidID, itemNumber string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"bid_id":      &types.AttributeValueMemberS{Value: bidID},
		"item_number": &types.AttributeValueMemberS{Value: itemNumber},
	}
}

func toDemolitionItem(bidID string, rec entities.DemolitionRecord, now time.Time) (demolitionItem, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return demolitionItem{}, err
	}
	return demolitionItem{
		BidID:      bidID,
		ItemNumber: rec.ItemNumber.String(),
		Category:   string(rec.Category),
		Record:     string(b),
		UpdatedAt:  now.UTC().Format(time.RFC3339Nano),
	}, nil
}

// fromDemolitionItem never fails: an unreadable document still yields a
// record carrying its key, so the item is not lost from the list.
func fromDemolitionItem(it demolitionItem) entities.DemolitionRecord {
	var rec entities.DemolitionRecord
	if err := json.Unmarshal([]byte(it.Record), &rec); err != nil {
		log.Printf("[items][dynamodb] unreadable record bid_id=%s item_number=%s err=%v", it.BidID, it.ItemNumber, err)
		rec = entities.DemolitionRecord{}
	}
	if strings.TrimSpace(rec.ItemNumber.String()) == "" {
		rec.ItemNumber = entities.Identifier(it.ItemNumber)
	}
	if rec.Category == "" {
		rec.Category = entities.BackendCategory(it.Category)
	}
	return rec
}
