package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/pkg/config"
)

// DynamoAPI is the subset of the DynamoDB client the repositories use
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// NewDynamoClient builds a DynamoDB client. A configured endpoint points the
// client at DynamoDB Local; static keys override the default credential chain.
func NewDynamoClient(ctx context.Context, cfg config.AWSConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

// NewDynamoStore wires the DynamoDB repositories for the configured tables
func NewDynamoStore(api DynamoAPI, tables config.StoreConfig) *Store {
	specs := DynamoTables(tables)
	return &Store{
		Driver:       config.StoreDriverDynamoDB,
		Events:       &dynamoEventRepository{api: api, table: tables.EventsTable},
		Applications: &dynamoApplicationRepository{api: api, table: tables.ApplicationsTable},
		Messages:     &dynamoMessageRepository{api: api, table: tables.MessagesTable},
		Matches:      &dynamoMatchRepository{api: api, table: tables.MatchesTable},
		ping: func(ctx context.Context) error {
			for _, spec := range specs {
				_, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)})
				if err != nil {
					return translateDynamoErr("store.ping", err)
				}
			}
			return nil
		},
	}
}

// translateDynamoErr maps DynamoDB errors onto domain kinds. A missing table
// or index means the store was never set up.
func translateDynamoErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return domain.Unavailable(op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException":
			return domain.Unavailable(op, err)
		case "ValidationException":
			if strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "index") {
				return domain.Unavailable(op, err)
			}
		}
	}

	return domain.Internal(op, err)
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func putNew(ctx context.Context, api DynamoAPI, op, table, hashKey string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return domain.Internal(op, err)
	}
	_, err = api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": hashKey},
	})
	if isConditionFailed(err) {
		return domain.Conflict(op, "item already exists")
	}
	return translateDynamoErr(op, err)
}

func getOne[T any](ctx context.Context, api DynamoAPI, op, table, hashKey, id, what string) (*T, error) {
	out, err := api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       stringKey(hashKey, id),
	})
	if err != nil {
		return nil, translateDynamoErr(op, err)
	}
	if out.Item == nil {
		return nil, domain.NotFound(op, what+" not found")
	}
	var v T
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, domain.Internal(op, err)
	}
	return &v, nil
}

func queryIndex[T any](ctx context.Context, api DynamoAPI, op, table, index, attr, value string) ([]*T, error) {
	p := dynamodb.NewQueryPaginator(api, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	})

	out := make([]*T, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, translateDynamoErr(op, err)
		}
		items, err := unmarshalItems[T](page.Items)
		if err != nil {
			return nil, domain.Internal(op, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func scanAll[T any](ctx context.Context, api DynamoAPI, op, table string) ([]*T, error) {
	p := dynamodb.NewScanPaginator(api, &dynamodb.ScanInput{TableName: aws.String(table)})

	out := make([]*T, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, translateDynamoErr(op, err)
		}
		items, err := unmarshalItems[T](page.Items)
		if err != nil {
			return nil, domain.Internal(op, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func unmarshalItems[T any](items []map[string]types.AttributeValue) ([]*T, error) {
	vals := make([]T, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &vals); err != nil {
		return nil, err
	}
	out := make([]*T, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

// updateBuilder accumulates a SET expression
type updateBuilder struct {
	sets   []string
	names  map[string]string
	values map[string]types.AttributeValue
}

func newUpdateBuilder() *updateBuilder {
	return &updateBuilder{
		names:  make(map[string]string),
		values: make(map[string]types.AttributeValue),
	}
}

func (b *updateBuilder) set(attr string, value interface{}) error {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return err
	}
	b.names["#"+attr] = attr
	b.values[":"+attr] = av
	b.sets = append(b.sets, fmt.Sprintf("#%s = :%s", attr, attr))
	return nil
}

func (b *updateBuilder) setIfNotExists(attr string, value interface{}) error {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return err
	}
	b.names["#"+attr] = attr
	b.values[":"+attr] = av
	b.sets = append(b.sets, fmt.Sprintf("#%s = if_not_exists(#%s, :%s)", attr, attr, attr))
	return nil
}

func (b *updateBuilder) input(table string, key map[string]types.AttributeValue, hashKey string, returnNew bool) *dynamodb.UpdateItemInput {
	b.names["#pk"] = hashKey
	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String("SET " + strings.Join(b.sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  b.names,
		ExpressionAttributeValues: b.values,
	}
	if returnNew {
		in.ReturnValues = types.ReturnValueAllNew
	}
	return in
}

// --- events ---

type dynamoEventRepository struct {
	api   DynamoAPI
	table string
}

func (r *dynamoEventRepository) Create(ctx context.Context, event *domain.Event) error {
	return putNew(ctx, r.api, "events.create", r.table, "eventId", event)
}

func (r *dynamoEventRepository) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	return getOne[domain.Event](ctx, r.api, "events.get", r.table, "eventId", eventID, "event")
}

func (r *dynamoEventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return scanAll[domain.Event](ctx, r.api, "events.list", r.table)
}

func (r *dynamoEventRepository) ListByOrg(ctx context.Context, orgWalletAddress string) ([]*domain.Event, error) {
	return queryIndex[domain.Event](ctx, r.api, "events.list_by_org", r.table, IndexOrgWallet, "orgWalletAddress", orgWalletAddress)
}

func (r *dynamoEventRepository) Update(ctx context.Context, eventID string, patch *domain.EventPatch, updatedAt string) (*domain.Event, error) {
	const op = "events.update"

	b := newUpdateBuilder()
	fields := []struct {
		attr  string
		value interface{}
		set   bool
	}{
		{"title", patch.Title, patch.Title != nil},
		{"description", patch.Description, patch.Description != nil},
		{"startDate", patch.StartDate, patch.StartDate != nil},
		{"endDate", patch.EndDate, patch.EndDate != nil},
		{"location", patch.Location, patch.Location != nil},
		{"maxParticipants", patch.MaxParticipants, patch.MaxParticipants != nil},
		{"status", patch.Status, patch.Status != nil},
		{"updatedAt", updatedAt, true},
	}
	for _, f := range fields {
		if !f.set {
			continue
		}
		if err := b.set(f.attr, f.value); err != nil {
			return nil, domain.Internal(op, err)
		}
	}

	out, err := r.api.UpdateItem(ctx, b.input(r.table, stringKey("eventId", eventID), "eventId", true))
	if isConditionFailed(err) {
		return nil, domain.NotFound(op, "event not found")
	}
	if err != nil {
		return nil, translateDynamoErr(op, err)
	}

	var event domain.Event
	if err := attributevalue.UnmarshalMap(out.Attributes, &event); err != nil {
		return nil, domain.Internal(op, err)
	}
	return &event, nil
}

func (r *dynamoEventRepository) Delete(ctx context.Context, eventID string) error {
	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       stringKey("eventId", eventID),
	})
	return translateDynamoErr("events.delete", err)
}

// --- applications ---

type dynamoApplicationRepository struct {
	api   DynamoAPI
	table string
}

func (r *dynamoApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return putNew(ctx, r.api, "applications.create", r.table, "applicationId", app)
}

func (r *dynamoApplicationRepository) GetByID(ctx context.Context, applicationID string) (*domain.Application, error) {
	return getOne[domain.Application](ctx, r.api, "applications.get", r.table, "applicationId", applicationID, "application")
}

func (r *dynamoApplicationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Application, error) {
	return queryIndex[domain.Application](ctx, r.api, "applications.list_by_event", r.table, IndexEventID, "eventId", eventID)
}

func (r *dynamoApplicationRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Application, error) {
	return queryIndex[domain.Application](ctx, r.api, "applications.list_by_wallet", r.table, IndexWallet, "walletAddress", walletAddress)
}

func (r *dynamoApplicationRepository) UpdateStatus(ctx context.Context, applicationID, status, updatedAt string) error {
	const op = "applications.update_status"

	b := newUpdateBuilder()
	if err := b.set("status", status); err != nil {
		return domain.Internal(op, err)
	}
	if err := b.set("updatedAt", updatedAt); err != nil {
		return domain.Internal(op, err)
	}

	_, err := r.api.UpdateItem(ctx, b.input(r.table, stringKey("applicationId", applicationID), "applicationId", false))
	if isConditionFailed(err) {
		return domain.NotFound(op, "application not found")
	}
	return translateDynamoErr(op, err)
}

// --- messages ---

type dynamoMessageRepository struct {
	api   DynamoAPI
	table string
}

func (r *dynamoMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return putNew(ctx, r.api, "messages.create", r.table, "messageId", msg)
}

func (r *dynamoMessageRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Message, error) {
	const op = "messages.list_by_wallet"

	sent, err := queryIndex[domain.Message](ctx, r.api, op, r.table, IndexSender, "senderWallet", walletAddress)
	if err != nil {
		return nil, err
	}
	received, err := queryIndex[domain.Message](ctx, r.api, op, r.table, IndexRecipient, "recipientWallet", walletAddress)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(sent))
	out := make([]*domain.Message, 0, len(sent)+len(received))
	for _, m := range append(sent, received...) {
		if _, dup := seen[m.MessageID]; dup {
			continue
		}
		seen[m.MessageID] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

func (r *dynamoMessageRepository) ListConversation(ctx context.Context, walletA, walletB string) ([]*domain.Message, error) {
	const op = "messages.list_conversation"

	fromA, err := queryIndex[domain.Message](ctx, r.api, op, r.table, IndexSender, "senderWallet", walletA)
	if err != nil {
		return nil, err
	}
	fromB, err := queryIndex[domain.Message](ctx, r.api, op, r.table, IndexSender, "senderWallet", walletB)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Message, 0)
	for _, m := range append(fromA, fromB...) {
		if m.Between(walletA, walletB) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *dynamoMessageRepository) MarkRead(ctx context.Context, messageID, readAt string) error {
	const op = "messages.mark_read"

	b := newUpdateBuilder()
	if err := b.set("read", true); err != nil {
		return domain.Internal(op, err)
	}
	if err := b.setIfNotExists("readAt", readAt); err != nil {
		return domain.Internal(op, err)
	}

	_, err := r.api.UpdateItem(ctx, b.input(r.table, stringKey("messageId", messageID), "messageId", false))
	if isConditionFailed(err) {
		return domain.NotFound(op, "message not found")
	}
	return translateDynamoErr(op, err)
}

// --- matches ---

type dynamoMatchRepository struct {
	api   DynamoAPI
	table string
}

func (r *dynamoMatchRepository) Create(ctx context.Context, match *domain.Match) error {
	return putNew(ctx, r.api, "matches.create", r.table, "matchId", match)
}

func (r *dynamoMatchRepository) GetByID(ctx context.Context, matchID string) (*domain.Match, error) {
	return getOne[domain.Match](ctx, r.api, "matches.get", r.table, "matchId", matchID, "match")
}

func (r *dynamoMatchRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Match, error) {
	const op = "matches.list_by_wallet"

	asStudent, err := queryIndex[domain.Match](ctx, r.api, op, r.table, IndexStudent, "studentWallet", walletAddress)
	if err != nil {
		return nil, err
	}
	asOrg, err := queryIndex[domain.Match](ctx, r.api, op, r.table, IndexOrgWallet, "orgWalletAddress", walletAddress)
	if err != nil {
		return nil, err
	}
	return append(asStudent, asOrg...), nil
}

func (r *dynamoMatchRepository) UpdateStatus(ctx context.Context, matchID, status, updatedAt string) (*domain.Match, error) {
	const op = "matches.update_status"

	b := newUpdateBuilder()
	if err := b.set("status", status); err != nil {
		return nil, domain.Internal(op, err)
	}
	if err := b.set("updatedAt", updatedAt); err != nil {
		return nil, domain.Internal(op, err)
	}

	out, err := r.api.UpdateItem(ctx, b.input(r.table, stringKey("matchId", matchID), "matchId", true))
	if isConditionFailed(err) {
		return nil, domain.NotFound(op, "match not found")
	}
	if err != nil {
		return nil, translateDynamoErr(op, err)
	}

	var match domain.Match
	if err := attributevalue.UnmarshalMap(out.Attributes, &match); err != nil {
		return nil, domain.Internal(op, err)
	}
	return &match, nil
}
