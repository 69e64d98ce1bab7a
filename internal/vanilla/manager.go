package vanilla

import (
	"context"
	"net/http"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/creeperpm/creeper/internal/config"
	"github.com/creeperpm/creeper/internal/errs"
	"github.com/creeperpm/creeper/internal/httputil"
	"github.com/creeperpm/creeper/internal/log"
)

// Manager memoizes the version manifest and individual version
// metadata documents behind a single mutex standing in for a
// set-once/read-write lock pair: manifest and version lookups are
// infrequent enough relative to install work that a single mutex
// costs nothing observable, and it keeps the memoization logic in one
// place instead of two.
type Manager struct {
	client *http.Client
	log    log.Logger

	mu       sync.Mutex
	manifest *Manifest
	versions map[string]*VersionMeta
}

// NewManager returns a Manager backed by a hardened HTTP client.
func NewManager(logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Manager{
		client:   httputil.NewClient(httputil.MetadataOptions(config.GetAPITimeout())),
		log:      logger,
		versions: make(map[string]*VersionMeta),
	}
}

// Manifest returns the version manifest, fetching and caching it on
// first use.
func (m *Manager) Manifest(ctx context.Context) (*Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.manifest != nil {
		return m.manifest, nil
	}

	m.log.Info("synchronizing minecraft version manifest")
	var manifest Manifest
	if err := fetchJSON(ctx, m.client, ManifestURL, &manifest); err != nil {
		return nil, err
	}
	m.manifest = &manifest
	return m.manifest, nil
}

// Version returns the per-version metadata for version, fetching and
// caching it on first use. It returns a *errs.NotFoundError if version
// isn't listed in the manifest.
func (m *Manager) Version(ctx context.Context, version *semver.Version) (*VersionMeta, error) {
	key := version.String()

	m.mu.Lock()
	if cached, ok := m.versions[key]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	manifest, err := m.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	entry := manifest.Find(key)
	if entry == nil {
		return nil, &errs.NotFoundError{Kind: "version", Key: key}
	}

	m.log.Info("synchronizing minecraft version metadata", "version", key)
	var meta VersionMeta
	if err := fetchJSON(ctx, m.client, entry.URL, &meta); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.versions[key] = &meta
	m.mu.Unlock()
	return &meta, nil
}
