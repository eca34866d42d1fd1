package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// expiryMargin renews tokens slightly before the server-reported expiry so
// in-flight requests never carry a token about to lapse.
const expiryMargin = 60 * time.Second

// session owns the tenant access token for one client instance. Tokens are
// never shared across clients; expiry is checked explicitly on every use.
type session struct {
	tokenURL  string
	appID     string
	appSecret string
	client    *http.Client
	now       func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newSession(tokenURL, appID, appSecret string, client *http.Client) *session {
	return &session{
		tokenURL:  tokenURL,
		appID:     appID,
		appSecret: appSecret,
		client:    client,
		now:       time.Now,
	}
}

// Token returns a valid access token, fetching a fresh one when the cached
// token is missing or within the expiry margin.
func (s *session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Add(expiryMargin).Before(s.expiresAt) {
		return s.token, nil
	}

	body, err := json.Marshal(tokenRequest{AppID: s.appID, AppSecret: s.appSecret})
	if err != nil {
		return "", fmt.Errorf("remote: encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("remote: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote: request token: %w", err)
	}
	defer resp.Body.Close()

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("remote: decode token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Code != 0 {
		return "", wrapAPIError(&APIError{
			Method:     http.MethodPost,
			URL:        s.tokenURL,
			StatusCode: resp.StatusCode,
			Code:       parsed.ErrCode,
			Message:    parsed.Message,
		})
	}
	if parsed.Data.AccessToken == "" {
		return "", fmt.Errorf("remote: token response carried no access token")
	}

	s.token = parsed.Data.AccessToken
	s.expiresAt = s.now().Add(time.Duration(parsed.Data.ExpiresIn) * time.Second)
	return s.token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (s *session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}
