package commerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)

	c, err := NewClient(Config{APIURL: server.URL, ProjectKey: "proj"},
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }))
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{APIURL: "http://api"})
	require.Error(t, err)
}

func TestFindByParentCode(t *testing.T) {
	t.Parallel()

	var where string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /proj/product-projections", func(w http.ResponseWriter, r *http.Request) {
		where = r.URL.Query().Get("where")
		assert.Equal(t, "true", r.URL.Query().Get("staged"))
		if r.URL.Query().Get("where") == `masterVariant(attributes(name="akeneo_parent_code" and value="missing"))` {
			_, _ = w.Write([]byte(`{"total":0,"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"total":1,"results":[{"id":"prod-1","version":7,"published":true,
			"masterVariant":{"id":1,"sku":"p1","attributes":[{"name":"akeneo_id","value":"u-1"}]},
			"variants":[{"id":2,"sku":"p2","attributes":[{"name":"akeneo_id","value":"u-2"}]}],
			"categories":[{"id":"cat-1","typeId":"category"}]}]}`))
	})
	c := newTestClient(t, mux)

	p, err := c.FindByParentCode(context.Background(), "model-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, `masterVariant(attributes(name="akeneo_parent_code" and value="model-1"))`, where)
	assert.Equal(t, int64(7), p.Version)
	assert.True(t, p.Published)
	assert.Equal(t, []string{"cat-1"}, p.CategoryIDs())

	v, ok := p.FindVariant(2)
	require.True(t, ok)
	assert.True(t, v.HasAttribute("akeneo_id", "u-2"))
	assert.Len(t, p.AllVariants(), 2)

	missing, err := c.FindByParentCode(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	var got struct {
		Version int64             `json:"version"`
		Actions []json.RawMessage `json:"actions"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /proj/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "stale" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"statusCode":409,"message":"Object has a different version"}`))
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"prod-1","version":8}`))
	})
	c := newTestClient(t, mux)

	p, err := c.UpdateProduct(context.Background(), "prod-1", 7, []UpdateAction{
		SetAttribute(1, "brand", false),
		AddToCategory("cat-2"),
		Publish(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), p.Version)
	assert.Equal(t, int64(7), got.Version)
	require.Len(t, got.Actions, 3)
	assert.JSONEq(t, `{"action":"setAttribute","variantId":1,"name":"brand","value":false}`, string(got.Actions[0]))
	assert.JSONEq(t, `{"action":"addToCategory","category":{"id":"cat-2","typeId":"category"}}`, string(got.Actions[1]))
	assert.JSONEq(t, `{"action":"publish"}`, string(got.Actions[2]))

	_, err = c.UpdateProduct(context.Background(), "stale", 1, []UpdateAction{Publish()})
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestAddProductImage(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /proj/products/{id}/images", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		assert.Equal(t, "front-shot", r.URL.Query().Get("filename"))
		assert.Equal(t, "p1", r.URL.Query().Get("sku"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte{1, 2, 3}, body)
		_, _ = w.Write([]byte(`{"id":"prod-1","version":9}`))
	})
	c := newTestClient(t, mux)

	p, err := c.AddProductImage(context.Background(), "prod-1", ImageUpload{
		Data: []byte{1, 2, 3}, Filename: "front-shot", ContentType: "image/jpeg", SKU: "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.Version)
	assert.Equal(t, int32(2), calls.Load(), "a 503 is retried")
}

func TestCustomObjects(t *testing.T) {
	t.Parallel()

	var stored *CustomObject
	mux := http.NewServeMux()
	mux.HandleFunc("GET /proj/custom-objects/{container}/{key}", func(w http.ResponseWriter, _ *http.Request) {
		if stored == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(stored)
	})
	mux.HandleFunc("POST /proj/custom-objects", func(w http.ResponseWriter, r *http.Request) {
		var draft CustomObjectDraft
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		if draft.Version != nil && (stored == nil || *draft.Version != stored.Version) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		next := int64(1)
		if stored != nil {
			next = stored.Version + 1
		}
		stored = &CustomObject{Container: draft.Container, Key: draft.Key, Value: draft.Value, Version: next}
		_ = json.NewEncoder(w).Encode(stored)
	})
	mux.HandleFunc("DELETE /proj/custom-objects/{container}/{key}", func(w http.ResponseWriter, _ *http.Request) {
		if stored == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		stored = nil
		_, _ = w.Write([]byte(`{}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.GetCustomObject(ctx, "ct-connect-akeneo", "full-sync")
	require.Error(t, err)

	obj, err := c.PutCustomObject(ctx, CustomObjectDraft{Container: "ct-connect-akeneo", Key: "full-sync", Value: json.RawMessage(`"{}"`)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), obj.Version)

	stale := int64(5)
	_, err = c.PutCustomObject(ctx, CustomObjectDraft{Container: "ct-connect-akeneo", Key: "full-sync", Value: json.RawMessage(`"{}"`), Version: &stale})
	assert.ErrorIs(t, err, ErrConcurrentModification)

	got, err := c.GetCustomObject(ctx, "ct-connect-akeneo", "full-sync")
	require.NoError(t, err)
	assert.JSONEq(t, `"{}"`, string(got.Value))

	require.NoError(t, c.DeleteCustomObject(ctx, "ct-connect-akeneo", "full-sync"))
	require.NoError(t, c.DeleteCustomObject(ctx, "ct-connect-akeneo", "full-sync"), "deleting twice is fine")
}
