package source

import (
	"context"
	"fmt"
	"sync"

	"collection-reconciler/core/document"
)

// Memory is an in-process Fetcher backed by a map of collections.
// It is used in tests and when reconciling already-loaded data.
type Memory struct {
	mu          sync.RWMutex
	name        string
	collections map[string][]document.Document
}

// NewMemory creates an in-memory fetcher.
func NewMemory(name string, collections map[string][]document.Document) *Memory {
	if collections == nil {
		collections = make(map[string][]document.Document)
	}
	return &Memory{name: name, collections: collections}
}

// Put replaces the documents of a collection.
func (m *Memory) Put(collection string, docs []document.Document) {
	m.mu.Lock()
	m.collections[collection] = docs
	m.mu.Unlock()
}

// Name returns the configured name.
func (m *Memory) Name() string {
	return m.name
}

// Fetch returns copies of the stored documents with exclusions applied.
// Unknown collections are an error, matching a missing table.
func (m *Memory) Fetch(ctx context.Context, collection string, exclude document.ExclusionSet) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	docs, ok := m.collections[collection]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("collection %s not found", collection)
	}

	out := make([]document.Document, len(docs))
	for i, doc := range docs {
		out[i] = exclude.Apply(doc)
	}
	return out, nil
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (m *Memory) Close(ctx context.Context) error {
	return nil
}
