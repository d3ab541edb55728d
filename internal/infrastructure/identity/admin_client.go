package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/you/phoneauthsvc/domain"
)

// AdminClient implements domain.IdentityAdmin against the platform's REST
// admin API. Every call carries the privileged service key; the client is
// constructed once at startup and injected, never rebuilt per request.
type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewAdminClient creates the privileged platform client. A missing service
// key is a configuration error, not something to retry around.
func NewAdminClient(baseURL, serviceKey string) (*AdminClient, error) {
	if serviceKey == "" {
		return nil, domain.ErrPrivilegedCredentialMissing
	}
	return &AdminClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type adminUserList struct {
	Users []adminUser `json:"users"`
}

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

type apiError struct {
	Message string `json:"msg"`
	Error   string `json:"error"`
}

// CreateIdentity implements domain.IdentityAdmin. The platform rejects a
// duplicate alias with a conflict status, which surfaces as ErrAliasTaken.
func (c *AdminClient) CreateIdentity(ctx context.Context, alias, password string) (*domain.Identity, error) {
	body := createUserRequest{Email: alias, Password: password, EmailConfirm: true}

	var created adminUser
	status, err := c.do(ctx, http.MethodPost, "/admin/users", body, &created)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return &domain.Identity{ID: created.ID, Alias: created.Email}, nil
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return nil, domain.ErrAliasTaken
	default:
		return nil, fmt.Errorf("identity platform create returned status %d", status)
	}
}

// ListIdentities implements domain.IdentityAdmin. Pages are 1-based; an
// empty page means the enumeration is complete.
func (c *AdminClient) ListIdentities(ctx context.Context, page, perPage int) ([]*domain.Identity, error) {
	path := fmt.Sprintf("/admin/users?page=%d&per_page=%d", page, perPage)

	var list adminUserList
	status, err := c.do(ctx, http.MethodGet, path, nil, &list)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("identity platform list returned status %d", status)
	}

	identities := make([]*domain.Identity, 0, len(list.Users))
	for _, u := range list.Users {
		identities = append(identities, &domain.Identity{ID: u.ID, Alias: u.Email})
	}
	return identities, nil
}

// SetPassword implements domain.IdentityAdmin
func (c *AdminClient) SetPassword(ctx context.Context, identityID, password string) error {
	path := "/admin/users/" + url.PathEscape(identityID)

	status, err := c.do(ctx, http.MethodPut, path, setPasswordRequest{Password: password}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCredentialRotation, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: platform returned status %d", domain.ErrCredentialRotation, status)
	}
	return nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("identity platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode platform response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
