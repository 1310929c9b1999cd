package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/liliang-cn/qualia/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// *dynamodb.Client satisfies it.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps chat history in a DynamoDB table keyed by id.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
}

// NewDynamoStore creates a new DynamoDB-backed store.
func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName}, nil
}

// Save writes one message. An existing id is never overwritten.
func (s *DynamoStore) Save(ctx context.Context, message domain.Message) error {
	if message.ID == "" {
		return errors.New("repository: Save: id is required")
	}
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                messageItem(message),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("repository: Save: %w", err)
	}
	return nil
}

// Load scans the whole table and orders messages by timestamp.
func (s *DynamoStore) Load(ctx context.Context) ([]domain.Message, error) {
	var (
		messages []domain.Message
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: Load scan: %w", err)
		}
		for _, item := range out.Items {
			msg, err := itemToMessage(item)
			if err != nil {
				return nil, fmt.Errorf("repository: Load unmarshal: %w", err)
			}
			messages = append(messages, msg)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// Count returns the number of items in the table.
func (s *DynamoStore) Count(ctx context.Context) (int, error) {
	var (
		total    int
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("repository: Count scan: %w", err)
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func messageItem(msg domain.Message) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":        &types.AttributeValueMemberS{Value: msg.ID},
		"role":      &types.AttributeValueMemberS{Value: string(msg.Role)},
		"content":   &types.AttributeValueMemberS{Value: msg.Content},
		"timestamp": &types.AttributeValueMemberS{Value: formatTimestamp(msg.Timestamp)},
	}
}

func itemToMessage(item map[string]types.AttributeValue) (domain.Message, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Message{}, err
	}
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.Message{}, err
	}
	if !domain.Role(role).Valid() {
		return domain.Message{}, fmt.Errorf("repository: item %s: %w %q", id, domain.ErrInvalidRole, role)
	}
	content, _ := strAttr(item, "content") // allow empty
	raw, err := strAttr(item, "timestamp")
	if err != nil {
		return domain.Message{}, err
	}
	ts, err := parseTimestamp(raw)
	if err != nil {
		return domain.Message{}, err
	}

	return domain.Message{
		ID:        id,
		Role:      domain.Role(role),
		Content:   content,
		Timestamp: ts,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
