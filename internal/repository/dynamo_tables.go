package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/prohmpiriya/career-passport/pkg/config"
)

// Global secondary index names
const (
	IndexOrgWallet = "orgWalletAddress-index"
	IndexEventID   = "eventId-index"
	IndexWallet    = "walletAddress-index"
	IndexSender    = "senderWallet-index"
	IndexRecipient = "recipientWallet-index"
	IndexStudent   = "studentWallet-index"
)

// TableSpec describes one DynamoDB table and its string-keyed GSIs.
// Index names map to their hash key attribute.
type TableSpec struct {
	Name    string
	HashKey string
	Indexes map[string]string
}

// DynamoTables returns the table layout for the configured table names
func DynamoTables(cfg config.StoreConfig) []TableSpec {
	return []TableSpec{
		{
			Name:    cfg.EventsTable,
			HashKey: "eventId",
			Indexes: map[string]string{IndexOrgWallet: "orgWalletAddress"},
		},
		{
			Name:    cfg.ApplicationsTable,
			HashKey: "applicationId",
			Indexes: map[string]string{IndexEventID: "eventId", IndexWallet: "walletAddress"},
		},
		{
			Name:    cfg.MessagesTable,
			HashKey: "messageId",
			Indexes: map[string]string{IndexSender: "senderWallet", IndexRecipient: "recipientWallet"},
		},
		{
			Name:    cfg.MatchesTable,
			HashKey: "matchId",
			Indexes: map[string]string{IndexStudent: "studentWallet", IndexOrgWallet: "orgWalletAddress"},
		},
	}
}

// CreateTableInput builds an on-demand table with all of its GSIs
func (s TableSpec) CreateTableInput() *dynamodb.CreateTableInput {
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String(s.HashKey), AttributeType: types.ScalarAttributeTypeS},
	}
	seen := map[string]bool{s.HashKey: true}

	gsis := make([]types.GlobalSecondaryIndex, 0, len(s.Indexes))
	for _, name := range sortedKeys(s.Indexes) {
		key := s.Indexes[name]
		if !seen[key] {
			seen[key] = true
			attrs = append(attrs, types.AttributeDefinition{
				AttributeName: aws.String(key),
				AttributeType: types.ScalarAttributeTypeS,
			})
		}
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(key), KeyType: types.KeyTypeHash},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	in := &dynamodb.CreateTableInput{
		TableName:            aws.String(s.Name),
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(s.HashKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
	if len(gsis) > 0 {
		in.GlobalSecondaryIndexes = gsis
	}
	return in
}

// EnsureResult reports what EnsureTables did for one table
type EnsureResult struct {
	Table   string
	Created bool
}

// EnsureTables creates every missing table and waits for it to become
// active. Existing tables are left alone.
func EnsureTables(ctx context.Context, api DynamoAPI, specs []TableSpec, wait time.Duration) ([]EnsureResult, error) {
	results := make([]EnsureResult, 0, len(specs))
	for _, spec := range specs {
		_, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)})
		if err == nil {
			results = append(results, EnsureResult{Table: spec.Name})
			continue
		}
		var rnf *types.ResourceNotFoundException
		if !errors.As(err, &rnf) {
			return results, fmt.Errorf("describe table %s: %w", spec.Name, err)
		}

		if _, err := api.CreateTable(ctx, spec.CreateTableInput()); err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				results = append(results, EnsureResult{Table: spec.Name})
				continue
			}
			return results, fmt.Errorf("create table %s: %w", spec.Name, err)
		}

		if wait > 0 {
			waiter := dynamodb.NewTableExistsWaiter(api)
			if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)}, wait); err != nil {
				return results, fmt.Errorf("wait for table %s: %w", spec.Name, err)
			}
		}
		results = append(results, EnsureResult{Table: spec.Name, Created: true})
	}
	return results, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
