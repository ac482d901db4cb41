package apify

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunActorSync(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotInput map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotInput)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"title": "Engineer", "company": "Acme"}]`))
	}))
	defer server.Close()

	client := New("secret-token", zap.NewNop())
	client.APIURL = server.URL

	items, err := client.RunActorSync(context.Background(), "user/some-actor", map[string]any{"keywords": "go"})
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "Engineer", items[0]["title"])
	assert.Equal(t, "/v2/acts/user~some-actor/run-sync-get-dataset-items", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "go", gotInput["keywords"])
}

func TestRunActorSyncGzipResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`[{"title": "Engineer"}]`))
		_ = gz.Close()
	}))
	defer server.Close()

	client := New("token", zap.NewNop())
	client.APIURL = server.URL
	// The default transport would transparently decompress; the explicit
	// Accept-Encoding header disables that, so exercise our own path.
	items, err := client.RunActorSync(context.Background(), "user/actor", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestRunActorSyncBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "actor failed", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New("token", zap.NewNop())
	client.APIURL = server.URL

	_, err := client.RunActorSync(context.Background(), "user/actor", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status")
}

func TestPushItems(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New("token", zap.NewNop())
	client.APIURL = server.URL

	err := client.PushItems(context.Background(), "ds-1", []map[string]any{{"eventName": "job_score"}})
	require.NoError(t, err)
	assert.Equal(t, "/v2/datasets/ds-1/items", gotPath)
}
