// Package hub downloads model snapshots from the Hugging Face hub into a
// local cache directory. A directory that already has content is trusted
// as a complete snapshot and left untouched.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/common/fsutil"
)

// DefaultBaseURL is the public Hugging Face endpoint.
const DefaultBaseURL = "https://huggingface.co"

// Client fetches repo snapshots over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient builds a hub client. baseURL may be empty for the public hub;
// token may be empty for ungated repos.
func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	// No client-wide timeout: weight files can be large and slow on CPU
	// boxes. Each request carries the caller's context instead.
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        log,
	}
}

// repoInfo is the subset of the hub model API we need.
type repoInfo struct {
	Siblings []struct {
		Rfilename string `json:"rfilename"`
	} `json:"siblings"`
}

// Snapshot ensures the named repo is present under dir. It is a no-op when
// dir already contains files, mirroring the usual snapshot cache
// convention.
func (c *Client) Snapshot(ctx context.Context, repo, dir string) error {
	dir, err := fsutil.ExpandHome(dir)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return err
	}
	if fsutil.DirNonEmpty(dir) {
		c.log.Debug().Str("repo", repo).Str("dir", dir).Msg("snapshot already present")
		return nil
	}

	c.log.Info().Str("repo", repo).Str("dir", dir).Msg("downloading snapshot")
	files, err := c.listFiles(ctx, repo)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("hub: repo %s has no files", repo)
	}
	for _, name := range files {
		if err := c.fetchFile(ctx, repo, name, dir); err != nil {
			return err
		}
	}
	c.log.Info().Str("repo", repo).Int("files", len(files)).Msg("snapshot complete")
	return nil
}

// listFiles queries the model API for the repo file listing.
func (c *Client) listFiles(ctx context.Context, repo string) ([]string, error) {
	url := c.baseURL + "/api/models/" + repo
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hub: list %s: %w", repo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("hub: list %s: %s: %s", repo, resp.Status, strings.TrimSpace(string(b)))
	}
	var info repoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("hub: decode repo info: %w", err)
	}
	names := make([]string, 0, len(info.Siblings))
	for _, s := range info.Siblings {
		if s.Rfilename != "" {
			names = append(names, s.Rfilename)
		}
	}
	return names, nil
}

// fetchFile streams one repo file to dir, creating parent directories for
// nested paths.
func (c *Client) fetchFile(ctx context.Context, repo, name, dir string) error {
	if !safeRelPath(name) {
		return fmt.Errorf("hub: refusing file name %q", name)
	}
	url := c.baseURL + "/" + repo + "/resolve/main/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hub: fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("hub: fetch %s: %s: %s", name, resp.Status, strings.TrimSpace(string(b)))
	}

	dst := filepath.Join(dir, filepath.FromSlash(name))
	if err := fsutil.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	// Write to a temp name then rename so a partial transfer never makes
	// the directory look like a complete snapshot.
	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("hub: create %s: %w", tmp, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("hub: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("hub: rename %s: %w", name, err)
	}
	c.log.Debug().Str("file", name).Int64("bytes", n).Msg("fetched")
	return nil
}

// safeRelPath reports whether name stays inside the snapshot directory
// once joined. File names come from the remote listing and are not
// trusted.
func safeRelPath(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
