package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/qualia/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	scanPages    []*dynamodb.ScanOutput
	scanErr      error
	scanCalls    int
	lastPutInput *dynamodb.PutItemInput
	scanInputs   []*dynamodb.ScanInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	page := f.scanPages[f.scanCalls]
	f.scanCalls++
	return page, nil
}

func mustNewDynamoStore(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "chat_history")
	require.NoError(t, err)
	return s
}

func TestNewDynamoStore_Validates(t *testing.T) {
	_, err := NewDynamoStore(nil, "chat_history")
	require.Error(t, err)
	_, err = NewDynamoStore(&fakeDynamo{}, " ")
	require.Error(t, err)
}

func TestDynamoStore_SaveWritesConditionalItem(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)
	ts := time.Date(2025, 1, 19, 7, 7, 46, 544_000_000, time.UTC)

	require.NoError(t, s.Save(context.Background(), domain.Message{ID: "m-1", Role: domain.RoleUser, Content: "hello", Timestamp: ts}))
	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "chat_history", *db.lastPutInput.TableName)
	require.Equal(t, "attribute_not_exists(id)", *db.lastPutInput.ConditionExpression)
	require.Equal(t, "2025-01-19T07:07:46.544Z", db.lastPutInput.Item["timestamp"].(*types.AttributeValueMemberS).Value)
}

func TestDynamoStore_SaveErrors(t *testing.T) {
	s := mustNewDynamoStore(t, &fakeDynamo{putErr: errors.New("throttled")})
	err := s.Save(context.Background(), domain.Message{ID: "m-1", Role: domain.RoleUser, Timestamp: time.Now()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "throttled")

	require.Error(t, s.Save(context.Background(), domain.Message{}))
}

func TestDynamoStore_RoundTripAcrossPages(t *testing.T) {
	base := time.Date(2025, 1, 19, 7, 0, 0, 0, time.UTC)
	first := domain.Message{ID: "a", Role: domain.RoleUser, Content: "first", Timestamp: base}
	second := domain.Message{ID: "b", Role: domain.RoleAssistant, Content: "second", Timestamp: base.Add(time.Second)}

	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{messageItem(second)},
			LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "b"}},
		},
		{Items: []map[string]types.AttributeValue{messageItem(first)}},
	}}
	s := mustNewDynamoStore(t, db)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Message{first, second}, got)
	require.Len(t, db.scanInputs, 2)
	require.NotNil(t, db.scanInputs[1].ExclusiveStartKey)
}

func TestDynamoStore_LoadErrors(t *testing.T) {
	s := mustNewDynamoStore(t, &fakeDynamo{scanErr: errors.New("boom")})
	_, err := s.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Load scan")

	bad := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{{
		"id":   &types.AttributeValueMemberS{Value: "x"},
		"role": &types.AttributeValueMemberN{Value: "1"},
	}}}}}
	_, err = mustNewDynamoStore(t, bad).Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a string")
}

func TestDynamoStore_LoadRejectsUnknownRole(t *testing.T) {
	item := messageItem(domain.Message{ID: "b", Role: "tool", Content: "x", Timestamp: time.Now()})
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{item}}}}

	got, err := mustNewDynamoStore(t, db).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidRole)
	require.Nil(t, got)
}

func TestDynamoStore_Count(t *testing.T) {
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{Count: 2, LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "b"}}},
		{Count: 3},
	}}
	n, err := mustNewDynamoStore(t, db).Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, types.SelectCount, db.scanInputs[0].Select)
}
