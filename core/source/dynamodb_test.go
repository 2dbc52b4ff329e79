package source

import (
	"context"
	"errors"
	"testing"

	"collection-reconciler/core/document"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamoDB serves scan pages in order.
type fakeDynamoDB struct {
	pages   []*dynamodb.ScanOutput
	scans   int
	scanErr error
	listErr error
}

func (f *fakeDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	page := f.pages[f.scans]
	f.scans++
	return page, nil
}

func (f *fakeDynamoDB) ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	return &dynamodb.ListTablesOutput{}, f.listErr
}

func TestDynamoDBFetcher_Fetch(t *testing.T) {
	client := &fakeDynamoDB{pages: []*dynamodb.ScanOutput{
		{
			Items: []map[string]types.AttributeValue{{
				"pk":    &types.AttributeValueMemberS{Value: "u1"},
				"age":   &types.AttributeValueMemberN{Value: "42"},
				"score": &types.AttributeValueMemberN{Value: "1.5"},
				"tags":  &types.AttributeValueMemberSS{Value: []string{"b", "a"}},
				"ttl":   &types.AttributeValueMemberN{Value: "1700000000"},
			}},
			LastEvaluatedKey: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: "u1"},
			},
		},
		{
			Items: []map[string]types.AttributeValue{{
				"pk":     &types.AttributeValueMemberS{Value: "u2"},
				"active": &types.AttributeValueMemberBOOL{Value: true},
				"profile": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
					"langs": &types.AttributeValueMemberL{Value: []types.AttributeValue{
						&types.AttributeValueMemberS{Value: "go"},
						&types.AttributeValueMemberNULL{Value: true},
					}},
				}},
			}},
		},
	}}

	fetcher := NewDynamoDBFetcher(client)
	docs, err := fetcher.Fetch(context.Background(), "users", document.NewExclusionSet("ttl"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 2, client.scans)

	assert.Equal(t, document.Document{
		"pk":    "u1",
		"age":   int64(42),
		"score": 1.5,
		"tags":  document.Set{"b", "a"},
	}, docs[0])
	assert.Equal(t, document.Document{
		"pk":      "u2",
		"active":  true,
		"profile": map[string]any{"langs": []any{"go", nil}},
	}, docs[1])
	assert.True(t, document.Equal(docs[0]["tags"], document.Set{"a", "b"}))
}

func TestDynamoDBFetcher_Errors(t *testing.T) {
	client := &fakeDynamoDB{scanErr: errors.New("throttled"), listErr: errors.New("denied")}
	fetcher := NewDynamoDBFetcher(client)

	_, err := fetcher.Fetch(context.Background(), "users", document.ExclusionSet{})
	assert.ErrorContains(t, err, "throttled")
	assert.ErrorContains(t, fetcher.Ping(context.Background()), "denied")
}

func TestFromAttributeMap_Sets(t *testing.T) {
	doc, err := FromAttributeMap(map[string]types.AttributeValue{
		"ns": &types.AttributeValueMemberNS{Value: []string{"1", "2.5"}},
		"bs": &types.AttributeValueMemberBS{Value: [][]byte{{0x01}}},
		"b":  &types.AttributeValueMemberB{Value: []byte{0xab}},
	})
	require.NoError(t, err)

	assert.Equal(t, document.Set{int64(1), 2.5}, doc["ns"])
	assert.Equal(t, document.Set{document.OpaqueID("01")}, doc["bs"])
	assert.Equal(t, document.OpaqueID("ab"), doc["b"])

	_, err = FromAttributeMap(map[string]types.AttributeValue{
		"n": &types.AttributeValueMemberN{Value: "not-a-number"},
	})
	assert.ErrorIs(t, err, document.ErrUnsupportedType)
}
