// Package ipfs publishes documents to IPFS through the Pinata pinning API.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"

	"github.com/recordlink/registrar/internal/core/domain"
)

const (
	DefaultBaseURL = "https://api.pinata.cloud"
	defaultTimeout = 15 * time.Second

	pinFilePath  = "/pinning/pinFileToIPFS"
	testAuthPath = "/data/testAuthentication"
)

// Config holds Pinata credentials and transport settings.
type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

// PinataClient implements ports.ContentPublisher. Every call is a single
// attempt; retries are left to the caller.
type PinataClient struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewPinataClient(cfg Config, log zerolog.Logger) *PinataClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("pinata_api_key", cfg.APIKey).
		SetHeader("pinata_secret_api_key", cfg.SecretKey).
		SetHeader("Accept", "application/json")

	return &PinataClient{http: client, log: log}
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

// Publish pins content under name and returns its CID. Non-2xx responses,
// timeouts and undecodable CIDs are all reported as domain.ErrPublicationFailed.
func (c *PinataClient) Publish(ctx context.Context, content []byte, name string) (string, error) {
	meta, err := json.Marshal(pinataMetadata{Name: name})
	if err != nil {
		return "", fmt.Errorf("%w: encode metadata: %w", domain.ErrPublicationFailed, err)
	}

	var out pinResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(content)).
		SetFormData(map[string]string{"pinataMetadata": string(meta)}).
		SetResult(&out).
		Post(pinFilePath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPublicationFailed, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: pinata responded %d: %s", domain.ErrPublicationFailed, resp.StatusCode(), truncate(resp.String(), 256))
	}

	parsed, err := cid.Decode(out.IpfsHash)
	if err != nil {
		return "", fmt.Errorf("%w: invalid CID %q: %w", domain.ErrPublicationFailed, out.IpfsHash, err)
	}

	c.log.Debug().
		Str("name", name).
		Str("cid", parsed.String()).
		Int64("pin_size", out.PinSize).
		Msg("pinned to ipfs")

	return parsed.String(), nil
}

// Ping verifies the configured credentials.
func (c *PinataClient) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(testAuthPath)
	if err != nil {
		return fmt.Errorf("pinata ping: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("pinata ping: status %d", resp.StatusCode())
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
