package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/frelsi/frelsi-api/internal/domain"
)

// ItemRepo provides typed DynamoDB operations for the items table.
// PK: item_id. The table holds at most a few hundred rows (a personal site),
// so listing scans the table and sorts in memory.
type ItemRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewItemRepo(client *dynamodb.Client, tableName string) *ItemRepo {
	return &ItemRepo{client: client, tableName: tableName}
}

func (r *ItemRepo) Put(ctx context.Context, i *domain.Item) error {
	item, err := attributevalue.MarshalMap(i)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ItemRepo) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("item_id", itemID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	var i domain.Item
	if err := attributevalue.UnmarshalMap(out.Item, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// ScanPublic returns all public items.
func (r *ItemRepo) ScanPublic(ctx context.Context) ([]domain.Item, error) {
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("is_public = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
}

// ScanAll returns every item, public and private.
func (r *ItemRepo) ScanAll(ctx context.Context) ([]domain.Item, error) {
	return r.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
}

func (r *ItemRepo) scan(ctx context.Context, input *dynamodb.ScanInput) ([]domain.Item, error) {
	var items []domain.Item
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Item
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *ItemRepo) Update(ctx context.Context, itemID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("item_id", itemID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(item_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *ItemRepo) Delete(ctx context.Context, itemID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("item_id", itemID),
	})
	return err
}

// IncrementLikes bumps the like counter atomically and returns the new count.
func (r *ItemRepo) IncrementLikes(ctx context.Context, itemID string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("item_id", itemID),
		UpdateExpression: aws.String("ADD likes :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ConditionExpression: aws.String("attribute_exists(item_id)"),
		ReturnValues:        types.ReturnValueUpdatedNew,
	})
	if isConditionFailed(err) {
		return 0, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	if v, ok := out.Attributes["likes"].(*types.AttributeValueMemberN); ok {
		n, err := strconv.Atoi(v.Value)
		if err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("likes counter missing from update response")
}

func isConditionFailed(err error) bool {
	if err == nil {
		return false
	}
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
