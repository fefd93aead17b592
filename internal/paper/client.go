// Package paper talks to the PaperMC v2 download API.
package paper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the public PaperMC API.
const DefaultEndpoint = "https://api.papermc.io"

// Client queries the PaperMC catalog for versions, builds, and download
// metadata.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a catalog client. An empty endpoint uses
// DefaultEndpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type projectResponse struct {
	ProjectID string   `json:"project_id"`
	Versions  []string `json:"versions"`
}

type versionResponse struct {
	Version string `json:"version"`
	Builds  []int  `json:"builds"`
}

type buildResponse struct {
	Build     int                  `json:"build"`
	Channel   string               `json:"channel"`
	Downloads map[string]buildFile `json:"downloads"`
}

type buildFile struct {
	Name   string `json:"name"`
	Sha256 string `json:"sha256"`
}

// Download describes one downloadable server jar.
type Download struct {
	Version  string
	Build    int
	FileName string
	URL      string
	Sha256   string
}

// Versions returns the published Paper versions, newest first.
func (c *Client) Versions(ctx context.Context) ([]string, error) {
	var p projectResponse
	if err := c.getJSON(ctx, "/v2/projects/paper", &p); err != nil {
		return nil, fmt.Errorf("failed to fetch version list: %w", err)
	}

	// The API lists oldest first.
	for i, j := 0, len(p.Versions)-1; i < j; i, j = i+1, j-1 {
		p.Versions[i], p.Versions[j] = p.Versions[j], p.Versions[i]
	}
	return p.Versions, nil
}

// LatestBuild returns the newest build number for a version.
func (c *Client) LatestBuild(ctx context.Context, version string) (int, error) {
	if version == "" {
		return 0, fmt.Errorf("version is required")
	}

	var v versionResponse
	path := fmt.Sprintf("/v2/projects/paper/versions/%s", url.PathEscape(version))
	if err := c.getJSON(ctx, path, &v); err != nil {
		return 0, fmt.Errorf("failed to fetch builds for %s: %w", version, err)
	}

	if len(v.Builds) == 0 {
		return 0, fmt.Errorf("no builds published for version %s", version)
	}
	return v.Builds[len(v.Builds)-1], nil
}

// ResolveDownload returns the download metadata for a version and build.
func (c *Client) ResolveDownload(ctx context.Context, version string, build int) (*Download, error) {
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}

	var b buildResponse
	path := fmt.Sprintf("/v2/projects/paper/versions/%s/builds/%d", url.PathEscape(version), build)
	if err := c.getJSON(ctx, path, &b); err != nil {
		return nil, fmt.Errorf("failed to fetch build %d for %s: %w", build, version, err)
	}

	app, ok := b.Downloads["application"]
	if !ok {
		return nil, fmt.Errorf("build %d for %s has no application download", build, version)
	}

	fileName := app.Name
	if fileName == "" {
		fileName = fmt.Sprintf("paper-%s-%d.jar", version, build)
	}

	downloadURL := fmt.Sprintf("%s/v2/projects/paper/versions/%s/builds/%d/downloads/%s",
		c.endpoint, url.PathEscape(version), build, url.PathEscape(fileName))

	return &Download{
		Version:  version,
		Build:    build,
		FileName: fileName,
		URL:      downloadURL,
		Sha256:   app.Sha256,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "quarry-cli/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// VerifyChecksum compares a file's sha256 digest against the expected
// catalog value. An empty expected checksum skips verification.
func VerifyChecksum(data []byte, expected string) error {
	if expected == "" {
		return nil
	}

	hash := sha256.Sum256(data)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}
