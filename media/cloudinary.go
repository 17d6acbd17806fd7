package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroach-creatives/studio-backend/config"
)

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// Client talks to the Cloudinary REST API. Uploads and destroys use the
// signed upload API; listing uses the admin API with basic auth. A media
// object is addressed by its public ID, which is stable across the versioned
// delivery URLs Cloudinary hands out.
type Client struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// UploadResult is the subset of Cloudinary's upload response the app cares about.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Format    string `json:"format,omitempty"`
}

// Resource is one hosted image as returned by the list API.
type Resource struct {
	PublicID  string `json:"public_id"`
	URL       string `json:"url"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Format    string `json:"format,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ListResult is one page of hosted images under a folder prefix.
type ListResult struct {
	Items      []Resource `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
	TotalCount int        `json:"total_count,omitempty"`
}

func NewClient(cloudName, apiKey, apiSecret string) *Client {
	return &Client{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		now:        time.Now,
	}
}

// NewClientFromConfig builds a Client from CLOUDINARY_CLOUD_NAME,
// CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET.
func NewClientFromConfig(cfg map[string]string) (*Client, error) {
	cloudName := config.GetString(cfg, "CLOUDINARY_CLOUD_NAME", "")
	apiKey := config.GetString(cfg, "CLOUDINARY_API_KEY", "")
	apiSecret := config.GetString(cfg, "CLOUDINARY_API_SECRET", "")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}
	return NewClient(cloudName, apiKey, apiSecret), nil
}

// Destroy deletes an image by public ID and returns Cloudinary's outcome tag
// ("ok", "not found", ...). The caller decides which tags count as success.
func (c *Client) Destroy(ctx context.Context, publicID string) (string, error) {
	params := map[string]string{
		"public_id":  publicID,
		"invalidate": "true",
	}
	form := c.signedForm(params)

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Cloudinary destroy: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read destroy response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cloudinary destroy error (status %d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse destroy response: %w", err)
	}
	return out.Result, nil
}

// Upload streams one file into the given folder and returns the stored
// object's public ID and delivery URL.
func (c *Client) Upload(ctx context.Context, r io.Reader, filename, folder string) (*UploadResult, error) {
	params := map[string]string{}
	if folder != "" {
		params["folder"] = folder
	}
	signed := c.signedForm(params)

	// The multipart body is piped straight into the request so the file is
	// never buffered in memory.
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		for key := range signed {
			if err := writer.WriteField(key, signed.Get(key)); err != nil {
				pw.CloseWithError(fmt.Errorf("failed to build upload form: %w", err))
				return
			}
		}
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("failed to build upload form: %w", err))
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to read upload payload: %w", err))
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Cloudinary upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudinary upload error (status %d): %s", resp.StatusCode, string(body))
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	return &result, nil
}

// List returns one page of images whose public IDs start with the folder
// prefix. cursor is the opaque next_cursor from a previous page, or empty.
func (c *Client) List(ctx context.Context, folder, cursor string, maxResults int) (*ListResult, error) {
	if maxResults < 1 {
		maxResults = 40
	}
	if maxResults > 100 {
		maxResults = 100
	}

	query := url.Values{}
	query.Set("type", "upload")
	query.Set("prefix", folder)
	query.Set("max_results", strconv.Itoa(maxResults))
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}

	endpoint := fmt.Sprintf("%s/%s/resources/image/upload?%s", c.baseURL, c.cloudName, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Cloudinary list: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read list response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudinary list error (status %d): %s", resp.StatusCode, string(body))
	}

	var raw struct {
		Resources []struct {
			PublicID  string `json:"public_id"`
			URL       string `json:"url"`
			SecureURL string `json:"secure_url"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			Format    string `json:"format"`
			CreatedAt string `json:"created_at"`
		} `json:"resources"`
		NextCursor string `json:"next_cursor"`
		TotalCount int    `json:"total_count"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse list response: %w", err)
	}

	result := &ListResult{
		Items:      make([]Resource, 0, len(raw.Resources)),
		NextCursor: raw.NextCursor,
		TotalCount: raw.TotalCount,
	}
	for _, r := range raw.Resources {
		u := r.SecureURL
		if u == "" {
			u = r.URL
		}
		result.Items = append(result.Items, Resource{
			PublicID:  r.PublicID,
			URL:       u,
			Width:     r.Width,
			Height:    r.Height,
			Format:    r.Format,
			CreatedAt: r.CreatedAt,
		})
	}
	return result, nil
}

// signedForm adds timestamp, api_key and the SHA-1 signature Cloudinary's
// upload API requires: hex(sha1("k1=v1&k2=v2&...<api_secret>")) over the
// params sorted by key, with api_key excluded from the signed string.
func (c *Client) signedForm(params map[string]string) url.Values {
	signed := make(map[string]string, len(params)+1)
	for k, v := range params {
		signed[k] = v
	}
	signed["timestamp"] = strconv.FormatInt(c.now().Unix(), 10)

	keys := make([]string, 0, len(signed))
	for k := range signed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+signed[k])
	}
	digest := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))

	form := url.Values{}
	for k, v := range signed {
		form.Set(k, v)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", hex.EncodeToString(digest[:]))
	return form
}
