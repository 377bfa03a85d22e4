package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/frelsi/frelsi-api/internal/domain"
)

// AuthLogRepo appends rows to the authentication audit trail.
// The table is append-only: nothing in the application updates or deletes rows.
type AuthLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAuthLogRepo(client *dynamodb.Client, tableName string) *AuthLogRepo {
	return &AuthLogRepo{client: client, tableName: tableName}
}

func (r *AuthLogRepo) Append(ctx context.Context, e *domain.AuthLogEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal auth log entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
