package activitypub

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	ActivityJSONType = "application/activity+json"
	LDJSONType       = `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`
	userAgent        = "statusbridge/1.0 ActivityPub"

	// documentAccept is sent when fetching actors and objects.
	documentAccept = ActivityJSONType + ", " + LDJSONType

	maxBodySize = 4 << 20
)

// ErrNotFound is returned when a remote document answers 404 or 410.
var ErrNotFound = errors.New("remote document not found")

// Client fetches federation documents. When a key is configured every GET is signed,
// which servers running in authorized-fetch mode require.
type Client struct {
	http  *http.Client
	key   *rsa.PrivateKey
	keyId string
}

func NewClient(httpClient *http.Client, key *rsa.PrivateKey, keyId string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{http: httpClient, key: key, keyId: keyId}
}

func (c *Client) get(ctx context.Context, uri, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	req.Header.Set("Host", req.URL.Host)

	if c.key != nil {
		if err := SignRequest(req, c.key, c.keyId); err != nil {
			return nil, fmt.Errorf("failed to sign request: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// fetchJSON GETs uri and decodes the body into v.
func (c *Client) fetchJSON(ctx context.Context, uri, accept string, v interface{}) error {
	resp, err := c.get(ctx, uri, accept)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%s: %w", uri, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %s failed with status: %d", uri, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", uri, err)
	}
	log.Debug().Str("uri", uri).Int("bytes", len(body)).Msg("Fetched remote document")
	return nil
}
