package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ledgerdrive/internal/netx"
)

// DefaultLighthouseEndpoint is the Lighthouse upload node.
const DefaultLighthouseEndpoint = "https://node.lighthouse.storage"

// LighthouseUploader posts content to a Lighthouse-compatible /api/v0/add
// endpoint as a multipart form file.
type LighthouseUploader struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewLighthouseUploader(endpoint, apiKey string, client *http.Client) *LighthouseUploader {
	if endpoint == "" {
		endpoint = DefaultLighthouseEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &LighthouseUploader{endpoint: strings.TrimRight(endpoint, "/"), apiKey: apiKey, client: client}
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

func (u *LighthouseUploader) Upload(ctx context.Context, data []byte, onProgress func(float64)) (string, error) {
	report(onProgress, 0)

	body, err := netx.PostMultipartFile(ctx, u.client, u.endpoint+"/api/v0/add", u.apiKey, "file", "upload", data, onProgress)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	var resp addResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode add response: %w", ErrTransport, err)
	}
	if resp.Hash == "" {
		return "", fmt.Errorf("%w: %w", ErrTransport, errors.New("add response carries no hash"))
	}
	if !ValidCID(resp.Hash) {
		return "", fmt.Errorf("%w: invalid cid %q", ErrTransport, resp.Hash)
	}

	report(onProgress, 1)
	return resp.Hash, nil
}

var _ Uploader = (*LighthouseUploader)(nil)
