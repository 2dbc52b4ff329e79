package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"collection-reconciler/core/config"
	"collection-reconciler/core/document"
	"collection-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckResults(t *testing.T) {
	clean := &reconcile.Result{Collection: "orders"}
	dirty := &reconcile.Result{
		Collection:      "users",
		MissingInTarget: []document.Document{{"_id": int64(1)}},
	}
	l := zap.NewNop()

	assert.NoError(t, checkResults(l, []*reconcile.Result{clean, dirty}, false))
	assert.NoError(t, checkResults(l, []*reconcile.Result{clean}, true))

	err := checkResults(l, []*reconcile.Result{clean, dirty}, true)
	require.ErrorIs(t, err, ErrDifferencesFound)
	assert.Contains(t, err.Error(), "users")
}

func TestBuildSink(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Format = "json"

	var buf bytes.Buffer
	s, err := buildSink(context.Background(), cfg, &buf, zap.NewNop())
	require.NoError(t, err)

	err = s.Emit(context.Background(), &reconcile.Result{Collection: "users", IdentityField: "_id"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "users", got["collection"])
}

func TestBuildSink_None(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Format = "none"

	var buf bytes.Buffer
	s, err := buildSink(context.Background(), cfg, &buf, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Emit(context.Background(), &reconcile.Result{Collection: "users"}))
	assert.Zero(t, buf.Len())

	cfg.Output.Format = "xml"
	_, err = buildSink(context.Background(), cfg, &buf, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reconciler.yaml")
	content := `
source:
  driver: mongodb
  uri: mongodb://localhost:27017
  db_name: app
target:
  driver: postgres
  host: localhost
  db_name: app
collections:
  - name: users
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	configFile = file
	t.Cleanup(func() { configFile = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Collections, 1)
	assert.Equal(t, "users", cfg.Collections[0].Name)
}
