package source

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"collection-reconciler/core/document"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoFetcher reads collections from a MongoDB database.
type MongoFetcher struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to MongoDB and verifies the connection with a ping.
func OpenMongo(ctx context.Context, cfg Config) (*MongoFetcher, error) {
	timeout := time.Duration(cfg.timeoutSeconds()) * time.Second

	opts := options.Client().
		ApplyURI(cfg.MongoURI()).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoFetcher{client: client, db: client.Database(cfg.Database)}, nil
}

// Name returns the driver name.
func (f *MongoFetcher) Name() string {
	return DriverMongoDB
}

// Fetch reads every document of the collection. Excluded fields are dropped
// by a server-side projection.
func (f *MongoFetcher) Fetch(ctx context.Context, collection string, exclude document.ExclusionSet) ([]document.Document, error) {
	findOpts := options.Find()
	if proj := projection(exclude); len(proj) > 0 {
		findOpts.SetProjection(proj)
	}

	cursor, err := f.db.Collection(collection).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}

	return decodeCursor(ctx, cursor, exclude)
}

// Ping verifies the server is reachable.
func (f *MongoFetcher) Ping(ctx context.Context) error {
	return f.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (f *MongoFetcher) Close(ctx context.Context) error {
	return f.client.Disconnect(ctx)
}

// Paths under an excluded ancestor are skipped; the server rejects a
// projection naming both with a path collision.
func projection(exclude document.ExclusionSet) bson.D {
	fields := exclude.Fields()
	excluded := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		excluded[field] = struct{}{}
	}

	var proj bson.D
	for _, field := range fields {
		if hasExcludedAncestor(field, excluded) {
			continue
		}
		proj = append(proj, bson.E{Key: field, Value: 0})
	}
	return proj
}

func hasExcludedAncestor(field string, excluded map[string]struct{}) bool {
	for i := 0; i < len(field); i++ {
		if field[i] != '.' {
			continue
		}
		if _, ok := excluded[field[:i]]; ok {
			return true
		}
	}
	return false
}

// decodeCursor drains the cursor into documents. The exclusion is applied
// again client-side so results match other drivers exactly.
func decodeCursor(ctx context.Context, cursor *mongo.Cursor, exclude document.ExclusionSet) ([]document.Document, error) {
	defer cursor.Close(ctx)

	docs := make([]document.Document, 0)
	for cursor.Next(ctx) {
		var raw bson.D
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		doc, err := FromBSON(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, exclude.Apply(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor failed: %w", err)
	}

	return docs, nil
}

// FromBSON converts a decoded BSON document into the document model.
func FromBSON(raw bson.D) (document.Document, error) {
	v, err := document.NormalizeWith(raw, convertBSON)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to convert document: got %T", v)
	}
	return document.Document(m), nil
}

// convertBSON maps BSON-specific types into the document model.
func convertBSON(v any) (any, bool, error) {
	switch val := v.(type) {
	case bson.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = e.Value
		}
		return m, true, nil
	case bson.M:
		return map[string]any(val), true, nil
	case bson.A:
		return []any(val), true, nil
	case bson.ObjectID:
		return document.OpaqueID(val.Hex()), true, nil
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano), true, nil
	case bson.Decimal128:
		return document.OpaqueID(val.String()), true, nil
	case bson.Binary:
		return document.OpaqueID(hex.EncodeToString(val.Data)), true, nil
	case bson.Timestamp:
		return document.OpaqueID(fmt.Sprintf("Timestamp(%d, %d)", val.T, val.I)), true, nil
	case bson.Regex:
		return document.OpaqueID("/" + val.Pattern + "/" + val.Options), true, nil
	case bson.Symbol:
		return string(val), true, nil
	case bson.JavaScript:
		return string(val), true, nil
	case bson.Null, bson.Undefined:
		return nil, true, nil
	case bson.MinKey:
		return document.OpaqueID("MinKey"), true, nil
	case bson.MaxKey:
		return document.OpaqueID("MaxKey"), true, nil
	}
	return nil, false, nil
}
