package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/frelsi/frelsi-api/internal/domain"
)

// AuthCodeRepo manages one-time login codes.
// PK: email, SK: code_id (ULID). Because ULIDs sort by creation time, a
// descending query over the range key yields newest-first without a
// created_at index.
type AuthCodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAuthCodeRepo(client *dynamodb.Client, tableName string) *AuthCodeRepo {
	return &AuthCodeRepo{client: client, tableName: tableName}
}

func (r *AuthCodeRepo) Put(ctx context.Context, c *domain.AuthCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal auth code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// DeleteAllForEmail removes every code row for an email. Runs before each new
// insert so at most one code is ever active per address.
func (r *AuthCodeRepo) DeleteAllForEmail(ctx context.Context, email string) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
		ProjectionExpression: aws.String("email, code_id"),
	})
	if err != nil {
		return err
	}
	for _, item := range out.Items {
		codeID, ok := item["code_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       compositeKey("email", email, "code_id", codeID.Value),
		}); err != nil {
			return err
		}
	}
	return nil
}

// FindActive returns the most recently created unexpired code row matching
// both email and the exact code string. The single-active-code invariant means
// at most one row should match, but the query is defensive: newest first,
// limited to one result.
func (r *AuthCodeRepo) FindActive(ctx context.Context, email, code string, now int64) (*domain.AuthCode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :e"),
		FilterExpression:       aws.String("code = :c AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":   &types.AttributeValueMemberS{Value: email},
			":c":   &types.AttributeValueMemberS{Value: code},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
		},
		ScanIndexForward: aws.Bool(false), // newest ULID first
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("auth code not found: %w", domain.ErrNotFound)
	}
	var c domain.AuthCode
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementAttempts bumps the attempt counter on every unexpired code row for
// the email. The increment is a server-side ADD expression, atomic under
// concurrent wrong guesses, never read-then-write.
func (r *AuthCodeRepo) IncrementAttempts(ctx context.Context, email string, now int64) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :e"),
		FilterExpression:       aws.String("expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":   &types.AttributeValueMemberS{Value: email},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
		},
		ProjectionExpression: aws.String("email, code_id"),
	})
	if err != nil {
		return err
	}
	for _, item := range out.Items {
		codeID, ok := item["code_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(r.tableName),
			Key:              compositeKey("email", email, "code_id", codeID.Value),
			UpdateExpression: aws.String("ADD attempts :one"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":one": &types.AttributeValueMemberN{Value: "1"},
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

// Delete consumes a code row (single-use enforcement).
func (r *AuthCodeRepo) Delete(ctx context.Context, email, codeID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("email", email, "code_id", codeID),
	})
	return err
}
