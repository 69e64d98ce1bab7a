// Package vanilla implements the Vanilla Install Pipeline: fetching
// Mojang's version manifest and per-version metadata, filtering
// libraries against the current platform (via internal/platform), and
// turning the result into an install.Install via the artifact store.
package vanilla

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/creeperpm/creeper/internal/errs"
)

// ManifestURL is Mojang's published version manifest, the same
// endpoint every vanilla launcher bootstraps from. It's a var rather
// than a const so tests can point it at a local server.
var ManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"

// Manifest is the top-level version manifest: the latest release and
// snapshot ids, and an entry per known version.
type Manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []ManifestEntry `json:"versions"`
}

// ManifestEntry is one version's manifest listing: just enough to
// locate and validate the per-version metadata document.
type ManifestEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	SHA1        string `json:"sha1"`
	ReleaseTime string `json:"releaseTime"`
}

// Find returns the manifest entry for id, or nil if no such version is
// listed.
func (m *Manifest) Find(id string) *ManifestEntry {
	for i := range m.Versions {
		if m.Versions[i].ID == id {
			return &m.Versions[i]
		}
	}
	return nil
}

// VersionMeta is the per-version metadata document: downloads, main
// class, libraries, and asset index, trimmed to the fields the install
// pipeline consumes.
type VersionMeta struct {
	Downloads struct {
		Client DownloadInfo `json:"client"`
	} `json:"downloads"`
	MainClass  string       `json:"mainClass"`
	Libraries  []Library    `json:"libraries"`
	AssetIndex DownloadInfo `json:"assetIndex"`
}

// DownloadInfo is a single downloadable artifact's location and
// checksum, as Mojang's metadata documents describe it.
type DownloadInfo struct {
	ID   string `json:"id,omitempty"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
	Path string `json:"path,omitempty"`
}

// Library is one entry in a version's library list: a Maven
// coordinate, its downloadable artifacts, and the rules gating whether
// it applies to the current platform.
type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
}

// LibraryDownloads is a library's downloadable forms: the main
// artifact, and any platform-specific native classifiers.
type LibraryDownloads struct {
	Artifact    *DownloadInfo           `json:"artifact,omitempty"`
	Classifiers map[string]DownloadInfo `json:"classifiers,omitempty"`
}

// Rule is a manifest rule entry, in Mojang's own JSON shape. See
// internal/platform.Rule for the evaluated form.
type Rule struct {
	Action   string          `json:"action"`
	OS       *RuleOS         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// RuleOS is a rule's "os" qualifier, in Mojang's own JSON shape.
type RuleOS struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("vanilla: build request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return &errs.IOError{Op: "GET", Path: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &errs.IOError{Op: "GET", Path: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.IOError{Op: "read", Path: url, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &errs.ParseError{Path: url, Err: err}
	}
	return nil
}
