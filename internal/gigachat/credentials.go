// ABOUTME: Bearer credential cache for the GigaChat OAuth token endpoint
// ABOUTME: Lazily refreshes on expiry with single-flight issuance across concurrent callers

package gigachat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ErrAuth is returned when credential issuance fails. The previously cached
// credential, if any, is left untouched.
var ErrAuth = errors.New("credential issuance failed")

// Credential is a bearer token with an absolute expiry.
// It is replaced wholesale on refresh, never partially mutated.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the credential can still sign requests at the given time.
// Comparison uses wall-clock time only; clock skew is not compensated.
func (c Credential) Valid(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.ExpiresAt)
}

// tokenResponse is the OAuth endpoint's JSON payload.
// expires_at is expressed in milliseconds since epoch.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// CredentialCache owns the single process-wide GigaChat credential.
// Refresh is always lazy: the next Token call that observes expiry triggers
// issuance, and concurrent callers in the same expired window share one
// in-flight issuance call.
type CredentialCache struct {
	oauthURL string
	authKey  string
	scope    string
	httpc    *http.Client
	logger   *slog.Logger

	mu    sync.Mutex
	cred  Credential
	group singleflight.Group

	now func() time.Time
}

// NewCredentialCache creates a credential cache for the given OAuth endpoint.
// authKey is the pre-encoded Basic auth value, scope the fixed OAuth scope.
func NewCredentialCache(oauthURL, authKey, scope string, timeout time.Duration) *CredentialCache {
	return &CredentialCache{
		oauthURL: oauthURL,
		authKey:  authKey,
		scope:    scope,
		httpc:    &http.Client{Timeout: timeout},
		logger:   slog.Default().With("component", "gigachat"),
		now:      time.Now,
	}
}

// Token returns a currently valid access token, issuing a new credential if
// the cached one is absent or expired. Returns an error wrapping ErrAuth when
// issuance fails.
func (c *CredentialCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.cred.Valid(c.now()) {
		token := c.cred.AccessToken
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	// Single-flight: all callers racing on an expired window share one
	// issuance call instead of issuing duplicates.
	v, err, _ := c.group.Do("issue", func() (any, error) {
		// Re-check under the lock: a previous flight may have refreshed
		// the credential between our check and this call.
		c.mu.Lock()
		if c.cred.Valid(c.now()) {
			token := c.cred.AccessToken
			c.mu.Unlock()
			return token, nil
		}
		c.mu.Unlock()

		cred, err := c.issue(ctx)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.cred = cred
		c.mu.Unlock()

		return cred.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// issue performs the OAuth token exchange.
func (c *CredentialCache) issue(ctx context.Context) (Credential, error) {
	form := url.Values{}
	form.Set("scope", c.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, fmt.Errorf("%w: building request: %v", ErrAuth, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+c.authKey)
	req.Header.Set("RqUID", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Credential{}, fmt.Errorf("%w: oauth endpoint returned %d: %s", ErrAuth, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Credential{}, fmt.Errorf("%w: decoding response: %v", ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return Credential{}, fmt.Errorf("%w: empty access_token in response", ErrAuth)
	}

	cred := Credential{
		AccessToken: tr.AccessToken,
		ExpiresAt:   time.UnixMilli(tr.ExpiresAt),
	}

	c.logger.Debug("credential issued", "expires_at", cred.ExpiresAt)
	return cred, nil
}
