package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"collection-reconciler/core/reconcile"
	"collection-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectSink archives each result as a JSON object.
type ObjectSink struct {
	client storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewObjectSink creates an object sink writing under prefix in bucket.
func NewObjectSink(client storage.Client, bucket, prefix string) *ObjectSink {
	return &ObjectSink{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// ObjectName returns the key a result is archived under.
func ObjectName(prefix, collection string, at time.Time) string {
	name := fmt.Sprintf("differences_%s_%s.json", collection, at.Format("20060102_150405"))
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Emit uploads the JSON-encoded result.
func (s *ObjectSink) Emit(ctx context.Context, result *reconcile.Result) error {
	data, err := Encode(result, FormatJSON)
	if err != nil {
		return err
	}

	at := result.StartedAt
	if at.IsZero() {
		at = s.now()
	}
	name := ObjectName(s.prefix, result.Collection, at)

	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}
