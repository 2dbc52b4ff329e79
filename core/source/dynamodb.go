package source

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"collection-reconciler/core/document"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client used here.
type DynamoDBAPI interface {
	dynamodb.ScanAPIClient
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

// DynamoDBFetcher reads tables with paginated scans.
type DynamoDBFetcher struct {
	client DynamoDBAPI
}

// OpenDynamoDB loads the default AWS configuration (env, shared config,
// instance role) and creates a client.
func OpenDynamoDB(ctx context.Context, cfg Config) (*DynamoDBFetcher, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewDynamoDBFetcher(client), nil
}

// NewDynamoDBFetcher wraps an existing client.
func NewDynamoDBFetcher(client DynamoDBAPI) *DynamoDBFetcher {
	return &DynamoDBFetcher{client: client}
}

// Name returns the driver name.
func (f *DynamoDBFetcher) Name() string {
	return DriverDynamoDB
}

// Fetch scans the whole table. DynamoDB projections cannot exclude
// attributes, so exclusion happens client-side.
func (f *DynamoDBFetcher) Fetch(ctx context.Context, table string, exclude document.ExclusionSet) ([]document.Document, error) {
	paginator := dynamodb.NewScanPaginator(f.client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})

	docs := make([]document.Document, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", table, err)
		}
		for _, item := range page.Items {
			doc, err := FromAttributeMap(item)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", table, err)
			}
			docs = append(docs, exclude.Apply(doc))
		}
	}

	return docs, nil
}

// Ping lists at most one table to verify credentials and reachability.
func (f *DynamoDBFetcher) Ping(ctx context.Context) error {
	_, err := f.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err
}

// Close is a no-op; the SDK client holds no persistent connection.
func (f *DynamoDBFetcher) Close(ctx context.Context) error {
	return nil
}

// FromAttributeMap converts a DynamoDB item into the document model.
// String, number and binary sets become document.Set.
func FromAttributeMap(item map[string]types.AttributeValue) (document.Document, error) {
	doc := make(document.Document, len(item))
	for k, av := range item {
		v, err := fromAttribute(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		doc[k] = v
	}
	return doc, nil
}

func fromAttribute(av types.AttributeValue) (any, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return parseNumber(v.Value)
	case *types.AttributeValueMemberBOOL:
		return v.Value, nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberB:
		return document.OpaqueID(hex.EncodeToString(v.Value)), nil
	case *types.AttributeValueMemberM:
		m, err := FromAttributeMap(v.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any(m), nil
	case *types.AttributeValueMemberL:
		items := make([]any, len(v.Value))
		for i, elem := range v.Value {
			item, err := fromAttribute(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = item
		}
		return items, nil
	case *types.AttributeValueMemberSS:
		set := make(document.Set, len(v.Value))
		for i, s := range v.Value {
			set[i] = s
		}
		return set, nil
	case *types.AttributeValueMemberNS:
		set := make(document.Set, len(v.Value))
		for i, s := range v.Value {
			n, err := parseNumber(s)
			if err != nil {
				return nil, err
			}
			set[i] = n
		}
		return set, nil
	case *types.AttributeValueMemberBS:
		set := make(document.Set, len(v.Value))
		for i, b := range v.Value {
			set[i] = document.OpaqueID(hex.EncodeToString(b))
		}
		return set, nil
	default:
		return nil, fmt.Errorf("%w: dynamodb attribute %T", document.ErrUnsupportedType, av)
	}
}

func parseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed number %q", document.ErrUnsupportedType, s)
	}
	return f, nil
}
