package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ordersvc/order-dispatch/internal/aws"
	"github.com/ordersvc/order-dispatch/internal/dispatch"
)

// ErrUserExists indicates a conditional create hit an existing user id.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound indicates an update or delete targeted a missing user.
var ErrUserNotFound = errors.New("user not found")

// Store encapsulates operations on the users table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new users Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new user. Returns ErrUserExists when the id is taken.
func (s *Store) Create(ctx context.Context, user User) (*User, error) {
	now := s.nowFunc()
	user.CreatedAt = now
	user.UpdatedAt = now

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(user_id)"),
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("put item: %w", err)
	}
	return &user, nil
}

// Get fetches a user by user_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, userID string) (*User, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var u User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

// List returns all users in the table.
func (s *Store) List(ctx context.Context) ([]User, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{TableName: &s.tableName})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	users := make([]User, 0, len(out.Items))
	for _, item := range out.Items {
		var u User
		if err := attributevalue.UnmarshalMap(item, &u); err != nil {
			return nil, fmt.Errorf("unmarshal user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// Update applies the non-nil fields of in to an existing user and returns the
// updated record. Returns ErrUserNotFound when the user does not exist.
func (s *Store) Update(ctx context.Context, userID string, in UpdateUserInput) (*User, error) {
	sets := []string{"updated_at = :ua"}
	values := map[string]types.AttributeValue{
		":ua": &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339Nano)},
	}
	names := map[string]string{}

	if in.Name != nil {
		sets = append(sets, "#n = :n")
		names["#n"] = "name"
		values[":n"] = &types.AttributeValueMemberS{Value: *in.Name}
	}
	if in.Email != nil {
		sets = append(sets, "email = :e")
		values[":e"] = &types.AttributeValueMemberS{Value: *in.Email}
	}

	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:          awsString("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("attribute_exists(user_id)"),
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	var u User
	if err := attributevalue.UnmarshalMap(out.Attributes, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

// Delete removes a user. Returns ErrUserNotFound when the user does not exist.
func (s *Store) Delete(ctx context.Context, userID string) error {
	input := &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ConditionExpression: awsString("attribute_exists(user_id)"),
	}
	_, err := s.client.DeleteItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Resolve implements dispatch.UserResolver on top of Get.
func (s *Store) Resolve(ctx context.Context, userID string) (*dispatch.ResolvedUser, error) {
	u, err := s.Get(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	return &dispatch.ResolvedUser{ID: u.UserID}, nil
}

// Helper
func awsString(s string) *string { return &s }
