// Package playstore implements a client for the Google Play distribution
// endpoints (FDFE) used to look up app metadata and acquire download tokens.
// The wire format is undocumented protobuf; this package decodes only the
// handful of fields the gateway surfaces and treats everything else as opaque
// (see fdfe.go). Callers receive structured responses or the typed failures
// ErrAppNotFound, ErrUnauthorized and ErrVersionNotFound, and never parse
// error strings.
//
// Two separate HTTP clients are used: one for metadata/delivery calls
// (30-second timeout by default) and one for binary downloads (10 minutes).
// The timeout difference is intentional: API calls should fail quickly if the
// session token is stale or the endpoint unreachable, while APK transfers
// legitimately take minutes for large packages on slow links. A single shared
// client with either timeout would cause unnecessary download failures or mask
// connectivity problems.
package playstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is the upstream collaborator boundary: one detail lookup and one
// download-token acquisition per call, no retries. Implementations must
// return the package's sentinel errors for classifiable failures.
type Client interface {
	// Details fetches the store listing for a package as visible to this
	// client's account.
	Details(ctx context.Context, packageName string) (*AppDetails, error)

	// Delivery acquires the download manifest for an exact version code.
	// The version code is passed through verbatim; an upstream rejection is
	// reported as ErrVersionNotFound, never substituted with another version.
	Delivery(ctx context.Context, packageName string, versionCode int) (*DeliveryData, error)

	// Fetch opens a streaming GET against a signed artifact URL previously
	// returned by Delivery. The caller owns the returned body and must close
	// it. Size is the upstream Content-Length, or -1 when unknown.
	Fetch(ctx context.Context, artifactURL string) (body io.ReadCloser, size int64, err error)
}

// Credentials is one (account identifier, session token) pair. The AAS token
// is the long-lived session secret obtained out of band; it is presented on
// every call and never refreshed by this package.
type Credentials struct {
	Email    string
	AASToken string
}

// Options configures a GooglePlayClient beyond its credentials.
type Options struct {
	// BaseURL of the distribution endpoint, without trailing slash.
	BaseURL string
	// DeviceID is the GSF identifier presented as the requesting device.
	DeviceID string
	// UserAgent mimics the Play client build the device profile claims.
	UserAgent       string
	APITimeout      time.Duration
	DownloadTimeout time.Duration
}

// GooglePlayClient talks to the FDFE endpoints with one account's session.
// It is safe for concurrent use; all fields are read-only after construction.
type GooglePlayClient struct {
	baseURL   string
	creds     Credentials
	deviceID  string
	userAgent string

	apiClient *http.Client
	// downloadClient carries the long timeout; it only ever touches the
	// signed artifact URLs returned by Delivery.
	downloadClient *http.Client
}

// NewClient creates a GooglePlayClient for one channel's credentials.
func NewClient(creds Credentials, opts Options) *GooglePlayClient {
	apiTimeout := opts.APITimeout
	if apiTimeout <= 0 {
		apiTimeout = 30 * time.Second
	}
	downloadTimeout := opts.DownloadTimeout
	if downloadTimeout <= 0 {
		downloadTimeout = 10 * time.Minute
	}
	return &GooglePlayClient{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		creds:          creds,
		deviceID:       opts.DeviceID,
		userAgent:      opts.UserAgent,
		apiClient:      &http.Client{Timeout: apiTimeout},
		downloadClient: &http.Client{Timeout: downloadTimeout},
	}
}

// Details implements Client.
func (c *GooglePlayClient) Details(ctx context.Context, packageName string) (*AppDetails, error) {
	q := url.Values{}
	q.Set("doc", packageName)

	body, err := c.get(ctx, "/fdfe/details", q)
	if err != nil {
		return nil, err
	}

	details, err := decodeDetailsResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode details response: %w", err)
	}
	if details == nil {
		// A 200 response whose payload carries no document means the item is
		// not published on this account's track.
		return nil, fmt.Errorf("package %s: %w", packageName, ErrAppNotFound)
	}
	return details, nil
}

// Delivery implements Client. The ot=1 offer type requests the free offer;
// paid apps the account does not own surface as a non-OK delivery status.
func (c *GooglePlayClient) Delivery(ctx context.Context, packageName string, versionCode int) (*DeliveryData, error) {
	q := url.Values{}
	q.Set("doc", packageName)
	q.Set("vc", strconv.Itoa(versionCode))
	q.Set("ot", "1")

	body, err := c.get(ctx, "/fdfe/delivery", q)
	if err != nil {
		return nil, err
	}

	data, status, err := decodeDeliveryResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode delivery response: %w", err)
	}
	switch status {
	case deliveryStatusOK:
		if data == nil || data.MainURL == "" {
			return nil, fmt.Errorf("package %s vc=%d: delivery response carried no download URL", packageName, versionCode)
		}
		return data, nil
	case deliveryStatusVersionUnavailable:
		return nil, fmt.Errorf("package %s vc=%d: %w", packageName, versionCode, ErrVersionNotFound)
	case deliveryStatusNotAvailable:
		return nil, fmt.Errorf("package %s: %w", packageName, ErrAppNotFound)
	default:
		return nil, fmt.Errorf("package %s vc=%d: unexpected delivery status %d", packageName, versionCode, status)
	}
}

// Fetch implements Client. Artifact URLs are pre-signed, so no session
// headers are attached; sending them to a third-party CDN host would leak the
// token.
func (c *GooglePlayClient) Fetch(ctx context.Context, artifactURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("artifact fetch failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("artifact fetch returned status %d", resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}

// get performs one authenticated FDFE call and returns the raw response body.
// HTTP status codes are classified into the package's typed errors.
func (c *GooglePlayClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "GoogleLogin auth="+c.creds.AASToken)
	req.Header.Set("X-DFE-Device-Id", c.deviceID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.apiClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("account %s: %w", c.creds.Email, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, ErrAppNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}
	return body, nil
}
