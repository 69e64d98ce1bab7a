package vanilla

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/log"
)

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	m := NewManager(log.NewNoop())
	m.client = srv.Client()
	return m, srv
}

func TestManager_Manifest_FetchesAndCaches(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(Manifest{Versions: []ManifestEntry{{ID: "1.20.1", URL: "http://example.test/1.20.1.json"}}})
	})
	m, srv := newTestManager(t, mux)

	origURL := ManifestURL
	t.Cleanup(func() { ManifestURL = origURL })
	ManifestURL = srv.URL + "/manifest.json"

	manifest, err := m.Manifest(context.Background())
	require.NoError(t, err)
	require.Len(t, manifest.Versions, 1)

	_, err = m.Manifest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, calls, "second call should be served from cache")
}

func TestManager_Version_NotFoundInManifest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Manifest{})
	})
	m, srv := newTestManager(t, mux)

	origURL := ManifestURL
	t.Cleanup(func() { ManifestURL = origURL })
	ManifestURL = srv.URL + "/manifest.json"

	v := mustVersion(t, "1.20.1")
	_, err := m.Version(context.Background(), v)
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	require.NoError(t, err)
	return v
}
