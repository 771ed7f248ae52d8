package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"alibi-backend/internal/fsutil"
)

// Client renders the proof page to a PNG through an external HTML-to-image
// API and caches the result under the data dir so the emergency email can
// attach it later.
type Client struct {
	APIURL  string
	DataDir string
}

func New(apiURL, dataDir string) *Client {
	return &Client{APIURL: apiURL, DataDir: dataDir}
}

// Path is where the last rendered screenshot lives.
func (c *Client) Path() string {
	return filepath.Join(c.DataDir, "screenshot.png")
}

// Render asks the API to screenshot the given URL and returns the PNG path.
func (c *Client) Render(ctx context.Context, pageURL string) (string, error) {
	if c.APIURL == "" {
		return "", fmt.Errorf("screenshot API not configured")
	}

	body := map[string]interface{}{
		"url":    pageURL,
		"format": "png",
		"width":  1200,
		"height": 800,
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", c.APIURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("screenshot API: status %d: %s", res.StatusCode, raw)
	}

	png, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if err := fsutil.WriteFileAtomic(c.Path(), png); err != nil {
		return "", err
	}
	return c.Path(), nil
}

// Exists reports whether a rendered screenshot is available.
func (c *Client) Exists() bool {
	_, err := os.Stat(c.Path())
	return err == nil
}
