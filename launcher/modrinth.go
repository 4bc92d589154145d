package launcher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response ends up in an APIError.
const maxErrorBody = 512

// ModrinthVersion is one published version of a project.
type ModrinthVersion struct {
	ID            string         `json:"id"`
	ProjectID     string         `json:"project_id"`
	Name          string         `json:"name"`
	VersionNumber string         `json:"version_number"`
	DatePublished time.Time      `json:"date_published"`
	Loaders       []string       `json:"loaders"`
	GameVersions  []string       `json:"game_versions"`
	Files         []ModrinthFile `json:"files"`
}

// PrimaryFile returns the file flagged primary, or the first file.
func (v ModrinthVersion) PrimaryFile() (ModrinthFile, bool) {
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	if len(v.Files) > 0 {
		return v.Files[0], true
	}
	return ModrinthFile{}, false
}

// ModrinthFile is a downloadable artifact of a version.
type ModrinthFile struct {
	Hashes   map[string]string `json:"hashes"`
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Size     int64             `json:"size"`
}

type loaderManifest struct {
	GameVersions []struct {
		ID      string `json:"id"`
		Stable  bool   `json:"stable"`
		Loaders []struct {
			ID     string `json:"id"`
			Stable bool   `json:"stable"`
		} `json:"loaders"`
	} `json:"gameVersions"`
}

// anyGameVersion is the manifest placeholder for loaders that support every
// game version.
const anyGameVersion = "${modrinth.gameVersion}"

// ModrinthClient talks to the Modrinth API and the launcher meta service.
type ModrinthClient struct {
	baseURL   string
	metaURL   string
	userAgent string
	http      *http.Client
}

// NewModrinthClient creates a client. Pass a nil httpClient for the default.
func NewModrinthClient(baseURL, metaURL, userAgent string, httpClient *http.Client) *ModrinthClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ModrinthClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		metaURL:   strings.TrimRight(metaURL, "/"),
		userAgent: userAgent,
		http:      httpClient,
	}
}

func (c *ModrinthClient) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Method: http.MethodGet,
			URL:    rawURL,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

func (c *ModrinthClient) getJSON(ctx context.Context, rawURL string, out any) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// Search runs a project search. Each facet is one OR-group.
func (c *ModrinthClient) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	params := url.Values{}
	if len(q.Facets) > 0 {
		groups := make([][]string, len(q.Facets))
		for i, f := range q.Facets {
			groups[i] = []string{f}
		}
		facets, err := json.Marshal(groups)
		if err != nil {
			return SearchResult{}, fmt.Errorf("encode facets: %w", err)
		}
		params.Set("facets", string(facets))
	}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	index := q.Index
	if index == "" {
		index = "relevance"
	}
	params.Set("index", index)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("offset", strconv.Itoa(max(q.Offset, 0)))

	var result SearchResult
	if err := c.getJSON(ctx, c.baseURL+"/v2/search?"+params.Encode(), &result); err != nil {
		return SearchResult{}, err
	}
	return result, nil
}

// Project fetches a project page.
func (c *ModrinthClient) Project(ctx context.Context, projectID string) (ProjectDetail, error) {
	var p ProjectDetail
	err := c.getJSON(ctx, c.baseURL+"/v2/project/"+url.PathEscape(projectID), &p)
	return p, err
}

// ProjectVersions lists versions of a project compatible with gameVersion and
// loader, newest first. Vanilla passes no loader filter.
func (c *ModrinthClient) ProjectVersions(ctx context.Context, projectID, gameVersion string, loader Loader) ([]ModrinthVersion, error) {
	params := url.Values{}
	if gameVersion != "" {
		params.Set("game_versions", jsonList(gameVersion))
	}
	if loader != "" && loader != LoaderVanilla {
		params.Set("loaders", jsonList(string(loader)))
	}
	u := c.baseURL + "/v2/project/" + url.PathEscape(projectID) + "/version"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var versions []ModrinthVersion
	if err := c.getJSON(ctx, u, &versions); err != nil {
		return nil, err
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].DatePublished.After(versions[j].DatePublished)
	})
	return versions, nil
}

// GameVersions returns release game versions, newest first.
func (c *ModrinthClient) GameVersions(ctx context.Context) ([]GameVersion, error) {
	var all []GameVersion
	if err := c.getJSON(ctx, c.baseURL+"/v2/tag/game_version", &all); err != nil {
		return nil, err
	}
	out := make([]GameVersion, 0, len(all))
	for _, v := range all {
		if v.VersionType == ReleaseType {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// LoaderVersion resolves the newest stable loader build for gameVersion.
// Unstable builds are used only when no stable one exists.
func (c *ModrinthClient) LoaderVersion(ctx context.Context, loader Loader, gameVersion string) (string, error) {
	if loader == LoaderVanilla || loader == "" {
		return "", nil
	}
	var m loaderManifest
	if err := c.getJSON(ctx, c.metaURL+"/"+metaName(loader)+"/v0/manifest.json", &m); err != nil {
		return "", err
	}

	for _, want := range []string{gameVersion, anyGameVersion} {
		for _, gv := range m.GameVersions {
			if gv.ID != want || len(gv.Loaders) == 0 {
				continue
			}
			for _, l := range gv.Loaders {
				if l.Stable {
					return l.ID, nil
				}
			}
			return gv.Loaders[0].ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s for %s", ErrNoCompatibleVersion, loader, gameVersion)
}

// Download fetches rawURL into dest, verifying the sha1 when one is given.
// Nothing is left at dest on failure.
func (c *ModrinthClient) Download(ctx context.Context, rawURL, dest, wantSHA1 string) (int64, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha1.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", rawURL, err)
	}

	if wantSHA1 != "" {
		if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, wantSHA1) {
			return 0, fmt.Errorf("%w: %s: want %s, got %s", ErrHashMismatch, filepath.Base(dest), wantSHA1, got)
		}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("move download into place: %w", err)
	}
	return n, nil
}

// metaName maps a loader to its launcher meta directory.
func metaName(l Loader) string {
	if l == LoaderNeoForge {
		return "neo"
	}
	return string(l)
}

func jsonList(items ...string) string {
	b, _ := json.Marshal(items)
	return string(b)
}
