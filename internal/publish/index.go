// Package publish uploads release artifacts to their destinations: a
// basic-auth artifact index, and optionally an S3 mirror.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fedlogin/fedlogin/internal/ui"
)

// requestTimeout bounds each index request; the artifacts are small.
const requestTimeout = 60 * time.Second

// IndexClient talks to a basic-auth artifact index. Uploads use
// skip-existing semantics: an artifact already present at the destination is
// left alone so re-running a release with the same version is safe.
type IndexClient struct {
	BaseURL  string
	Username string
	Password string

	// HTTPClient is replaceable for tests; nil means a default client.
	HTTPClient *http.Client
}

func (c *IndexClient) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: requestTimeout}
}

func (c *IndexClient) artifactURL(name string) (string, error) {
	return url.JoinPath(c.BaseURL, name)
}

// Exists reports whether the index already holds an artifact with this name.
func (c *IndexClient) Exists(ctx context.Context, name string) (bool, error) {
	u, err := c.artifactURL(name)
	if err != nil {
		return false, fmt.Errorf("building artifact URL for %s: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return false, err
	}
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.client().Do(req)
	if err != nil {
		return false, fmt.Errorf("checking %s on index: %w", name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("checking %s on index: unexpected status %s", name, resp.Status)
	}
}

// Upload puts a single artifact file on the index. Returns skipped=true when
// the artifact was already present and no upload happened.
func (c *IndexClient) Upload(ctx context.Context, path string) (skipped bool, err error) {
	name := filepath.Base(path)

	exists, err := c.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening artifact %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat artifact %s: %w", path, err)
	}

	u, err := c.artifactURL(name)
	if err != nil {
		return false, fmt.Errorf("building artifact URL for %s: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, f)
	if err != nil {
		return false, err
	}
	req.SetBasicAuth(c.Username, c.Password)
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client().Do(req)
	if err != nil {
		return false, fmt.Errorf("uploading %s: %w", name, err)
	}
	defer resp.Body.Close()

	// Some indexes answer 409 for a concurrent duplicate; treat it the same
	// as the HEAD-detected case.
	if resp.StatusCode == http.StatusConflict {
		return true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("uploading %s: unexpected status %s", name, resp.Status)
	}
	return false, nil
}

// UploadDir uploads every regular file in dir, in name order. Artifacts
// already on the index are skipped per file; the batch only fails on a real
// upload error.
func (c *IndexClient) UploadDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading artifact dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		skipped, err := c.Upload(ctx, filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if skipped {
			ui.Infof("%s %s already on index, skipped", ui.Dim("-"), name)
		} else {
			ui.Infof("%s uploaded %s", ui.OKTag(), name)
		}
	}
	return nil
}
