package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/linguahub/api/internal/domain"
)

// GoalRepo provides typed DynamoDB operations for the goals table.
type GoalRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewGoalRepo(client *dynamodb.Client, tableName string) *GoalRepo {
	return &GoalRepo{client: client, tableName: tableName}
}

func (r *GoalRepo) Put(ctx context.Context, g *domain.Goal) error {
	item, err := attributevalue.MarshalMap(g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *GoalRepo) Get(ctx context.Context, goalID string) (*domain.Goal, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("goal_id", goalID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("goal not found: %w", domain.ErrNotFound)
	}
	var g domain.Goal
	if err := attributevalue.UnmarshalMap(out.Item, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListByUser queries the user_id-created_at GSI, returning goals oldest first.
func (r *GoalRepo) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	var goals []domain.Goal
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// SetCompleted flips the completion flag and stamps completed_at.
func (r *GoalRepo) SetCompleted(ctx context.Context, goalID string, completed bool) error {
	updates := map[string]interface{}{
		fieldCompleted:  completed,
		"updated_at":    time.Now().UTC().Format(time.RFC3339),
	}
	if completed {
		updates[fieldCompletedAt] = time.Now().UTC()
	} else {
		updates[fieldCompletedAt] = nil
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("goal_id", goalID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *GoalRepo) Delete(ctx context.Context, goalID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("goal_id", goalID),
	})
	return err
}
