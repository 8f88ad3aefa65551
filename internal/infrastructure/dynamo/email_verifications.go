package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-signup-gate/internal/domain"
)

// EmailVerificationRepo stores deliverability results, one item per email.
// PK: email (stored exactly as submitted).
type EmailVerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEmailVerificationRepo(client *dynamodb.Client, tableName string) *EmailVerificationRepo {
	return &EmailVerificationRepo{client: client, tableName: tableName}
}

func (r *EmailVerificationRepo) Get(ctx context.Context, email string) (*domain.VerificationRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("email verification not found: %w", domain.ErrNotFound)
	}
	var rec domain.VerificationRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal email verification: %w", err)
	}
	return &rec, nil
}

// Save writes a fresh checker result for email. The item is created when
// missing; an existing one has every result field overwritten, its
// verification_date reset to at, and check_count incremented.
func (r *EmailVerificationRepo) Save(ctx context.Context, email string, res domain.DeliverabilityResult, at time.Time) error {
	in, err := r.saveInput(email, res, at)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, in)
	return err
}

// Touch records a cache hit: check_count++ and last_checked_at = at.
// It never creates an item.
func (r *EmailVerificationRepo) Touch(ctx context.Context, email string, at time.Time) error {
	in, err := r.touchInput(email, at)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, in)
	return err
}

func (r *EmailVerificationRepo) saveInput(email string, res domain.DeliverabilityResult, at time.Time) (*dynamodb.UpdateItemInput, error) {
	at = at.UTC()
	ue, err := buildUpsertExpr(map[string]interface{}{
		fieldIsDeliverable:    res.IsDeliverable,
		fieldIsDisposable:     res.IsDisposable,
		fieldIsRoleAccount:    res.IsRoleAccount,
		fieldIsSafeToSend:     res.IsSafeToSend,
		fieldMXAcceptsMail:    res.MXAcceptsMail,
		fieldStatus:           res.Status,
		fieldRawResponse:      string(res.Raw),
		fieldVerificationDate: at,
		fieldLastCheckedAt:    at,
	}, map[string]int{fieldCheckCount: 1})
	if err != nil {
		return nil, err
	}
	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}, nil
}

func (r *EmailVerificationRepo) touchInput(email string, at time.Time) (*dynamodb.UpdateItemInput, error) {
	ue, err := buildUpsertExpr(map[string]interface{}{
		fieldLastCheckedAt: at.UTC(),
	}, map[string]int{fieldCheckCount: 1})
	if err != nil {
		return nil, err
	}
	ue.Names["#pk"] = "email"
	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}, nil
}
