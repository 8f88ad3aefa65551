package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-signup-gate/internal/config"
)

// tableSpec describes one table. Every key attribute is a string.
type tableSpec struct {
	name     string
	hashKey  string
	rangeKey string
	// indexes maps a GSI name to its hash key.
	indexes map[string]string
	ttlAttr string
}

func tableSpecs(tables config.DynamoTables) []tableSpec {
	return []tableSpec{
		{name: tables.Users, hashKey: "user_id", indexes: map[string]string{emailIndex: "email"}},
		{name: tables.Sessions, hashKey: "session_id", indexes: map[string]string{"user_id-index": "user_id"}, ttlAttr: "expires_at"},
		{name: tables.OTPs, hashKey: "user_id", rangeKey: "type", ttlAttr: "expires_at"},
		// Verification results are history: no TTL.
		{name: tables.EmailVerifications, hashKey: "email"},
	}
}

// Bootstrap creates every table the service uses if it does not exist yet.
// It is safe to run on each startup.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	for _, spec := range tableSpecs(tables) {
		createTable(ctx, client, spec.input())
		if spec.ttlAttr != "" {
			enableTTL(ctx, client, spec.name, spec.ttlAttr)
		}
	}
}

func (s tableSpec) input() *dynamodb.CreateTableInput {
	attrs := map[string]bool{s.hashKey: true}
	keys := []types.KeySchemaElement{
		{AttributeName: aws.String(s.hashKey), KeyType: types.KeyTypeHash},
	}
	if s.rangeKey != "" {
		attrs[s.rangeKey] = true
		keys = append(keys, types.KeySchemaElement{AttributeName: aws.String(s.rangeKey), KeyType: types.KeyTypeRange})
	}

	var indexes []types.GlobalSecondaryIndex
	for name, hash := range s.indexes {
		attrs[hash] = true
		indexes = append(indexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(name),
			KeySchema:  []types.KeySchemaElement{{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash}},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	defs := make([]types.AttributeDefinition, 0, len(attrs))
	for name := range attrs {
		defs = append(defs, types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS})
	}

	return &dynamodb.CreateTableInput{
		TableName:              aws.String(s.name),
		BillingMode:            types.BillingModePayPerRequest,
		AttributeDefinitions:   defs,
		KeySchema:              keys,
		GlobalSecondaryIndexes: indexes,
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	var inUse *types.ResourceInUseException
	switch {
	case err == nil:
		slog.Info("created table", "table", *input.TableName)
	case errors.As(err, &inUse):
		// already exists
	default:
		slog.Warn("could not create table", "table", *input.TableName, "err", err)
	}
}

func enableTTL(ctx context.Context, client *dynamodb.Client, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}
