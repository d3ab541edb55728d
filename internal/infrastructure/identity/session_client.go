package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/you/phoneauthsvc/domain"
)

// SessionClient implements domain.IdentitySessions. It authenticates with
// the unprivileged anon key so the sessions it mints are scoped to the end
// user, never to the privileged actor.
type SessionClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewSessionClient creates the unprivileged platform client.
func NewSessionClient(baseURL, anonKey string) *SessionClient {
	return &SessionClient{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordGrantResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginWithPassword implements domain.IdentitySessions
func (c *SessionClient) LoginWithPassword(ctx context.Context, alias, password string) (*domain.PlatformSession, error) {
	data, err := json.Marshal(passwordGrantRequest{Email: alias, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token?grant_type=password", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity platform login failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrLoginRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity platform login returned status %d", resp.StatusCode)
	}

	var grant passwordGrantResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	return &domain.PlatformSession{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresIn:    grant.ExpiresIn,
	}, nil
}
