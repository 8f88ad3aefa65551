package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-signup-gate/internal/domain"
)

// OTPRepo manages one-time codes issued by email.
// PK: user_id, SK: type. A new code for the same pair replaces the old one.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, c *domain.OTPCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, userID, otpType string) (*domain.OTPCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "type", otpType),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var c domain.OTPCode
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *OTPRepo) Delete(ctx context.Context, userID, otpType string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "type", otpType),
	})
	return err
}

// RecordFailure increments the wrong-guess counter of an existing code and
// returns the new value.
func (r *OTPRepo) RecordFailure(ctx context.Context, userID, otpType string) (int, error) {
	in, err := r.failureInput(userID, otpType)
	if err != nil {
		return 0, err
	}
	out, err := r.client.UpdateItem(ctx, in)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
		}
		return 0, err
	}
	var n int
	if err := attributevalue.Unmarshal(out.Attributes[fieldAttempts], &n); err != nil {
		return 0, fmt.Errorf("unmarshal otp attempts: %w", err)
	}
	return n, nil
}

func (r *OTPRepo) failureInput(userID, otpType string) (*dynamodb.UpdateItemInput, error) {
	ue, err := buildUpsertExpr(nil, map[string]int{fieldAttempts: 1})
	if err != nil {
		return nil, err
	}
	ue.Names["#pk"] = "user_id"
	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("user_id", userID, "type", otpType),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueUpdatedNew,
	}, nil
}
