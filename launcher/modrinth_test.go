package launcher_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastheco/craftdeck/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(srv *httptest.Server) *launcher.ModrinthClient {
	return launcher.NewModrinthClient(srv.URL+"/", srv.URL+"/meta", "craftdeck/test", srv.Client())
}

func TestModrinthClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/search", r.URL.Path)
		assert.Equal(t, "craftdeck/test", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		assert.Equal(t, `[["project_type:mod"],["categories:fabric"],["versions:1.20.1"]]`, q.Get("facets"))
		assert.Equal(t, "sodium", q.Get("query"))
		assert.Equal(t, "relevance", q.Get("index"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("offset"))
		writeJSON(t, w, map[string]any{
			"hits": []map[string]any{
				{"project_id": "AANobbMI", "title": "Sodium", "downloads": 12345, "follows": 999},
			},
			"offset":     20,
			"limit":      10,
			"total_hits": 21,
		})
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Search(context.Background(), launcher.SearchQuery{
		Facets: []string{"project_type:mod", "categories:fabric", "versions:1.20.1"},
		Query:  "sodium",
		Limit:  10,
		Offset: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, res.TotalHits)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "Sodium", res.Hits[0].Title)
	assert.Equal(t, "12.3k", res.Hits[0].DownloadsLabel())
	assert.Equal(t, "999", res.Hits[0].FollowsLabel())
}

func TestModrinthClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Project(context.Background(), "x")
	require.Error(t, err)

	var apiErr *launcher.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "rate limited", apiErr.Body)
	assert.Contains(t, err.Error(), "429")
}

func TestModrinthClient_ProjectVersionsNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/project/P1/version", r.URL.Path)
		assert.Equal(t, `["1.20.1"]`, r.URL.Query().Get("game_versions"))
		assert.Equal(t, `["fabric"]`, r.URL.Query().Get("loaders"))
		writeJSON(t, w, []map[string]any{
			{"id": "old", "date_published": "2024-01-01T00:00:00Z"},
			{"id": "new", "date_published": "2025-01-01T00:00:00Z"},
		})
	}))
	defer srv.Close()

	versions, err := newTestClient(srv).ProjectVersions(context.Background(), "P1", "1.20.1", launcher.LoaderFabric)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "new", versions[0].ID)
}

func TestModrinthClient_ProjectVersionsVanillaHasNoLoaderFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["loaders"]
		assert.False(t, ok)
		writeJSON(t, w, []any{})
	}))
	defer srv.Close()

	versions, err := newTestClient(srv).ProjectVersions(context.Background(), "P1", "1.20.1", launcher.LoaderVanilla)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestModrinthClient_GameVersionsReleasesOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/tag/game_version", r.URL.Path)
		writeJSON(t, w, []map[string]any{
			{"version": "1.20.1", "version_type": "release", "date": "2023-06-12T00:00:00Z"},
			{"version": "23w31a", "version_type": "snapshot", "date": "2023-08-01T00:00:00Z"},
			{"version": "1.21", "version_type": "release", "date": "2024-06-13T00:00:00Z"},
		})
	}))
	defer srv.Close()

	versions, err := newTestClient(srv).GameVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "1.21", versions[0].Version)
	assert.Equal(t, "1.20.1", versions[1].Version)
}

func TestModrinthClient_LoaderVersion(t *testing.T) {
	manifests := map[string]any{
		"/meta/fabric/v0/manifest.json": map[string]any{
			"gameVersions": []map[string]any{
				{"id": "${modrinth.gameVersion}", "loaders": []map[string]any{
					{"id": "0.16.0-beta", "stable": false},
					{"id": "0.15.11", "stable": true},
				}},
			},
		},
		"/meta/neo/v0/manifest.json": map[string]any{
			"gameVersions": []map[string]any{
				{"id": "1.20.1", "loaders": []map[string]any{{"id": "47.1.0", "stable": false}}},
			},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, ok := manifests[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, m)
	}))
	defer srv.Close()
	c := newTestClient(srv)
	ctx := context.Background()

	t.Run("placeholder entry covers every game version", func(t *testing.T) {
		v, err := c.LoaderVersion(ctx, launcher.LoaderFabric, "1.21")
		require.NoError(t, err)
		assert.Equal(t, "0.15.11", v)
	})

	t.Run("falls back to an unstable build", func(t *testing.T) {
		v, err := c.LoaderVersion(ctx, launcher.LoaderNeoForge, "1.20.1")
		require.NoError(t, err)
		assert.Equal(t, "47.1.0", v)
	})

	t.Run("no build for the game version", func(t *testing.T) {
		_, err := c.LoaderVersion(ctx, launcher.LoaderNeoForge, "1.8.9")
		assert.ErrorIs(t, err, launcher.ErrNoCompatibleVersion)
	})

	t.Run("vanilla needs no request", func(t *testing.T) {
		v, err := c.LoaderVersion(ctx, launcher.LoaderVanilla, "1.21")
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

func TestModrinthClient_Download(t *testing.T) {
	payload := []byte("jar bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()
	c := newTestClient(srv)
	dir := t.TempDir()

	t.Run("verified", func(t *testing.T) {
		dest := filepath.Join(dir, "mods", "a.jar")
		n, err := c.Download(context.Background(), srv.URL+"/a.jar", dest, sha1Hex(payload))
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), n)
		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("hash mismatch leaves nothing behind", func(t *testing.T) {
		dest := filepath.Join(dir, "mods", "b.jar")
		_, err := c.Download(context.Background(), srv.URL+"/b.jar", dest, sha1Hex([]byte("other")))
		assert.ErrorIs(t, err, launcher.ErrHashMismatch)
		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))

		entries, err := os.ReadDir(filepath.Join(dir, "mods"))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file must be cleaned up")
	})
}

func TestSearchHitLabels(t *testing.T) {
	hit := launcher.SearchHit{Downloads: 2_500_000, Follows: 0, DateModified: time.Now().Add(-72 * time.Hour)}
	assert.Equal(t, "2.5M", hit.DownloadsLabel())
	assert.Equal(t, "0", hit.FollowsLabel())
	assert.Equal(t, "3 days ago", hit.ModifiedLabel())
	assert.Empty(t, launcher.SearchHit{}.ModifiedLabel())
}
