package reconciliation_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"collection-reconciler/core/document"
	"collection-reconciler/core/reconcile"
	"collection-reconciler/core/source"
	"collection-reconciler/feature/reconciliation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type unreachable struct {
	*source.Memory
}

func (u unreachable) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func (u unreachable) Fetch(ctx context.Context, collection string, exclude document.ExclusionSet) ([]document.Document, error) {
	return nil, errors.New("connection refused")
}

func newApp(t *testing.T, engine *reconcile.Engine, specs []reconcile.CollectionSpec) *fiber.App {
	t.Helper()
	app := fiber.New()
	feature := reconciliation.NewFeature(engine, specs, zap.NewNop())
	assert.Equal(t, "reconciliation", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app
}

type summariesBody struct {
	Summaries []reconcile.Summary `json:"summaries"`
	Results   []map[string]any    `json:"results"`
}

func decode(t *testing.T, body io.Reader, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(out))
}

func TestHandleReconcileCollection(t *testing.T) {
	_, _, engine, specs := newFixture(nil)
	app := newApp(t, engine, specs)

	resp, err := app.Test(httptest.NewRequest("GET", "/reconcile/users", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	decode(t, resp.Body, &body)
	assert.Equal(t, "users", body["collection"])
	assert.Equal(t, "_id", body["identity_field"])
	assert.Len(t, body["missing_in_source"], 1)
	assert.Len(t, body["missing_in_target"], 1)
	assert.EqualValues(t, 1, body["common_count"])

	diffs, ok := body["content_differences"].([]any)
	require.True(t, ok)
	require.Len(t, diffs, 1)
	entry := diffs[0].(map[string]any)
	assert.Equal(t, "1", entry["identity"])
}

func TestHandleReconcileCollection_NotFound(t *testing.T) {
	_, _, engine, specs := newFixture(nil)
	app := newApp(t, engine, specs)

	resp, err := app.Test(httptest.NewRequest("GET", "/reconcile/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleReconcileCollection_FetchError(t *testing.T) {
	src, _, _, specs := newFixture(nil)
	engine := reconcile.NewEngine(src, unreachable{source.NewMemory("target", nil)}, zap.NewNop(), reconcile.EngineOptions{})
	app := newApp(t, engine, specs)

	resp, err := app.Test(httptest.NewRequest("GET", "/reconcile/users", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decode(t, resp.Body, &body)
	assert.Contains(t, body["error"], "connection refused")
}

func TestHandleReconcileMany(t *testing.T) {
	_, _, engine, specs := newFixture(nil)
	app := newApp(t, engine, specs)

	req := httptest.NewRequest("POST", "/reconcile", strings.NewReader(`{"collections":["orders"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body summariesBody
	decode(t, resp.Body, &body)
	require.Len(t, body.Summaries, 1)
	assert.Equal(t, reconcile.Summary{Collection: "orders", Common: 1}, body.Summaries[0])
	require.Len(t, body.Results, 1)
	assert.Equal(t, "orders", body.Results[0]["collection"])
}

func TestHandleReconcileMany_All(t *testing.T) {
	_, _, engine, specs := newFixture(nil)
	app := newApp(t, engine, specs)

	resp, err := app.Test(httptest.NewRequest("POST", "/reconcile", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body summariesBody
	decode(t, resp.Body, &body)
	require.Len(t, body.Summaries, 2)
	assert.Equal(t, "users", body.Summaries[0].Collection)
	assert.Equal(t, 1, body.Summaries[0].Differences)
}

func TestHandleReconcileMany_BadBody(t *testing.T) {
	_, _, engine, specs := newFixture(nil)
	app := newApp(t, engine, specs)

	req := httptest.NewRequest("POST", "/reconcile", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleListCollections(t *testing.T) {
	_, _, engine, specs := newFixture(nil)
	app := newApp(t, engine, specs)

	resp, err := app.Test(httptest.NewRequest("GET", "/collections", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []reconcile.CollectionSpec
	decode(t, resp.Body, &body)
	require.Len(t, body, 2)
	assert.Equal(t, "users", body[0].Name)
}

func TestHandleHealth(t *testing.T) {
	_, _, engine, specs := newFixture(nil)
	app := newApp(t, engine, specs)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	down := reconcile.NewEngine(source.NewMemory("source", nil), unreachable{source.NewMemory("target", nil)}, zap.NewNop(), reconcile.EngineOptions{})
	app = newApp(t, down, specs)

	resp, err = app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
