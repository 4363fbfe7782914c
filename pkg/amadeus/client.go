// Package amadeus is a minimal client for the Amadeus self-service REST API.
// Every invocation authenticates with its own client credentials; a Session
// reuses one access token across the calls of that invocation only.
package amadeus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const tokenPath = "/v1/security/oauth2/token"

// Credentials identify the calling application.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Valid reports whether both halves are set.
func (c Credentials) Valid() bool { return c.ClientID != "" && c.ClientSecret != "" }

// APIError is a non-2xx answer from Amadeus (token endpoint included).
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amadeus: status %d: %s", e.Status, e.Body)
}

// Client holds the API base URL and the transport shared by all sessions.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL (e.g. https://test.api.amadeus.com).
// A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Session is an authenticated view of the client for one invocation.
type Session struct {
	baseURL string
	http    *http.Client
}

// Session binds creds to a token source. The token is fetched lazily on the first Get.
func (c *Client) Session(ctx context.Context, creds Credentials) *Session {
	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	// token requests go through the same (instrumented) transport as API calls
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	hc := cfg.Client(ctx)
	hc.Timeout = c.http.Timeout
	return &Session{baseURL: c.baseURL, http: hc}
}

// Get performs GET baseURL+path?query and returns the raw response body.
// Non-2xx answers are returned as *APIError.
func (s *Session) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := s.http.Do(req)
	if err != nil {
		return nil, asAPIError(err)
	}
	defer func() { _ = res.Body.Close() }()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Body: string(b)}
	}
	return b, nil
}

// asAPIError surfaces token endpoint rejections (bad credentials) as APIError.
func asAPIError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &APIError{Status: re.Response.StatusCode, Body: string(re.Body)}
	}
	return err
}
