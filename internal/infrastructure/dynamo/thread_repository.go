package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

const (
	pkPrefixThread = "THREAD#"
	skMeta         = "META#"
	skPrefixMsg    = "MSG#"

	// A transaction holds at most 100 items; one is the thread update.
	maxMessagesPerAppend = 99
)

// dynamodbAPI is the subset of the DynamoDB client the repository uses.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// ThreadRepository stores threads in a single table. A thread is the META#
// item under THREAD#{id}; its messages are MSG#{time}#{id} items in the same
// partition.
type ThreadRepository struct {
	api       dynamodbAPI
	tableName string
}

// NewThreadRepository creates a repository over tableName.
func NewThreadRepository(api dynamodbAPI, tableName string) (*ThreadRepository, error) {
	if api == nil {
		return nil, errors.New("dynamo: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamo: table name must not be empty")
	}
	return &ThreadRepository{api: api, tableName: tableName}, nil
}

func threadPK(id string) string {
	return pkPrefixThread + id
}

func msgSK(m *entity.StoredMessage) string {
	return skPrefixMsg + formatTime(m.CreatedAt) + "#" + m.ID
}

// formatTime uses a fixed-width layout so sort keys order chronologically.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func (r *ThreadRepository) CreateThread(ctx context.Context, thread *entity.Thread) error {
	_, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                threadItem(thread),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.NewInvalidInputError("thread already exists")
		}
		return fmt.Errorf("dynamo: CreateThread: %w", err)
	}
	return nil
}

func (r *ThreadRepository) GetThread(ctx context.Context, id string) (*entity.Thread, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: threadPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo: GetThread: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, domain.NewNotFoundError("Thread", id)
	}
	thread, err := itemToThread(out.Item)
	if err != nil {
		return nil, fmt.Errorf("dynamo: GetThread: %w", err)
	}
	return thread, nil
}

// ListThreads scans META# items and orders them by last update. The table
// has no index on updatedAt, so every thread is read.
func (r *ThreadRepository) ListThreads(ctx context.Context, limit int) ([]*entity.Thread, error) {
	in := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("SK = :meta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":meta": &types.AttributeValueMemberS{Value: skMeta},
		},
	}

	threads := make([]*entity.Thread, 0)
	for {
		out, err := r.api.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("dynamo: ListThreads scan: %w", err)
		}
		for _, item := range out.Items {
			thread, err := itemToThread(item)
			if err != nil {
				return nil, fmt.Errorf("dynamo: ListThreads unmarshal: %w", err)
			}
			threads = append(threads, thread)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(threads, func(i, j int) bool {
		if threads[i].UpdatedAt.Equal(threads[j].UpdatedAt) {
			return threads[i].ID < threads[j].ID
		}
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})
	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

// AppendMessages writes the messages and bumps the thread's updatedAt in one
// transaction that fails when the thread does not exist.
func (r *ThreadRepository) AppendMessages(ctx context.Context, threadID string, messages []*entity.StoredMessage) error {
	if len(messages) == 0 {
		return nil
	}
	if len(messages) > maxMessagesPerAppend {
		return domain.NewInvalidInputError(fmt.Sprintf("cannot append more than %d messages at once", maxMessagesPerAppend))
	}

	updatedAt := messages[len(messages)-1].CreatedAt
	items := make([]types.TransactWriteItem, 0, len(messages)+1)
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: threadPK(threadID)},
				"SK": &types.AttributeValueMemberS{Value: skMeta},
			},
			UpdateExpression:    aws.String("SET updatedAt = :u"),
			ConditionExpression: aws.String("attribute_exists(PK)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":u": &types.AttributeValueMemberS{Value: formatTime(updatedAt)},
			},
		},
	})
	for _, m := range messages {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      messageItem(threadID, m),
			},
		})
	}

	_, err := r.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if threadMissing(err) {
			return domain.NewNotFoundError("Thread", threadID)
		}
		return fmt.Errorf("dynamo: AppendMessages: %w", err)
	}
	return nil
}

// threadMissing reports whether the thread update's condition failed.
func threadMissing(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || len(tce.CancellationReasons) == 0 {
		return false
	}
	return aws.ToString(tce.CancellationReasons[0].Code) == "ConditionalCheckFailed"
}

func (r *ThreadRepository) ListMessages(ctx context.Context, threadID string) ([]*entity.StoredMessage, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: threadPK(threadID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixMsg},
		},
		ScanIndexForward: aws.Bool(true),
	}

	messages := make([]*entity.StoredMessage, 0)
	for {
		out, err := r.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("dynamo: ListMessages query: %w", err)
		}
		for _, item := range out.Items {
			msg, err := itemToMessage(item)
			if err != nil {
				return nil, fmt.Errorf("dynamo: ListMessages unmarshal: %w", err)
			}
			msg.ThreadID = threadID
			messages = append(messages, msg)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return messages, nil
}
