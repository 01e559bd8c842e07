package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/linguahub/api/internal/domain"
)

// ModuleRepo provides typed DynamoDB operations for the foundation-module
// catalog table. The catalog is small and shared, so a full Scan is fine.
type ModuleRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewModuleRepo(client *dynamodb.Client, tableName string) *ModuleRepo {
	return &ModuleRepo{client: client, tableName: tableName}
}

func (r *ModuleRepo) Put(ctx context.Context, m *domain.Module) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal module: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ModuleRepo) Get(ctx context.Context, moduleID string) (*domain.Module, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("module_id", moduleID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("module not found: %w", domain.ErrNotFound)
	}
	var m domain.Module
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModuleRepo) Scan(ctx context.Context) ([]domain.Module, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var modules []domain.Module
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *ModuleRepo) Update(ctx context.Context, moduleID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("module_id", moduleID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// HardDelete removes a catalog entry (no soft delete for modules).
func (r *ModuleRepo) HardDelete(ctx context.Context, moduleID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("module_id", moduleID),
	})
	return err
}
