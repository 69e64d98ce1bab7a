package vanilla

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creeperpm/creeper/internal/cas"
	"github.com/creeperpm/creeper/internal/log"
	"github.com/creeperpm/creeper/internal/testutil"
)

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func TestManager_Install_AssemblesFullInstall(t *testing.T) {
	clientJarBody := []byte("fake client jar")
	libBody := []byte("fake library jar")
	assetIndexBody := []byte(`{"objects":{}}`)

	mux := http.NewServeMux()
	mux.HandleFunc("/client.jar", func(w http.ResponseWriter, r *http.Request) { w.Write(clientJarBody) })
	mux.HandleFunc("/lib.jar", func(w http.ResponseWriter, r *http.Request) { w.Write(libBody) })
	mux.HandleFunc("/assets.json", func(w http.ResponseWriter, r *http.Request) { w.Write(assetIndexBody) })

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Manifest{Versions: []ManifestEntry{{ID: "1.20.1", URL: srv.URL + "/version.json"}}})
	})
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VersionMeta{
			Downloads: struct {
				Client DownloadInfo `json:"client"`
			}{Client: DownloadInfo{URL: srv.URL + "/client.jar", SHA1: sha1Hex(clientJarBody), Size: int64(len(clientJarBody))}},
			MainClass: "net.minecraft.client.main.Main",
			Libraries: []Library{
				{
					Name:      "com.example:lib:1.0",
					Downloads: &LibraryDownloads{Artifact: &DownloadInfo{URL: srv.URL + "/lib.jar", SHA1: sha1Hex(libBody), Size: int64(len(libBody))}},
				},
			},
			AssetIndex: DownloadInfo{ID: "1.20", URL: srv.URL + "/assets.json", SHA1: sha1Hex(assetIndexBody), Size: int64(len(assetIndexBody))},
		})
	})

	cfg, cleanup := testutil.NewTestConfig(t)
	t.Cleanup(cleanup)
	store, err := cas.Open(cfg, log.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := NewManager(log.NewNoop())
	origURL := ManifestURL
	t.Cleanup(func() { ManifestURL = origURL })
	ManifestURL = srv.URL + "/manifest.json"

	v := mustVersion(t, "1.20.1")
	in, err := m.Install(context.Background(), v, store)
	require.NoError(t, err)

	require.Equal(t, "net.minecraft.client.main.Main", in.JavaMainClass)
	require.NotNil(t, in.McJar)
	require.Equal(t, sha1Hex(clientJarBody), in.McJar.SHA1)
	require.NotNil(t, in.McAssetIndex)
	require.Equal(t, sha1Hex(assetIndexBody), in.McAssetIndex.SHA1)
	require.Len(t, in.JavaLib, 1)
	require.Equal(t, sha1Hex(libBody), in.JavaLib[0].SHA1)
}
