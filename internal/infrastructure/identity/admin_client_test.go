package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/phoneauthsvc/domain"
)

func TestNewAdminClient_RequiresServiceKey(t *testing.T) {
	_, err := NewAdminClient("http://platform.local", "")
	assert.ErrorIs(t, err, domain.ErrPrivilegedCredentialMissing)

	client, err := NewAdminClient("http://platform.local", "service-key")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestAdminClient_CreateIdentity(t *testing.T) {
	var authSeen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/admin/users", r.URL.Path)
		authSeen = r.Header.Get("Authorization")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+919000000001@phone.finadvisor.app", body["email"])
		assert.NotEmpty(t, body["password"])
		assert.Equal(t, true, body["email_confirm"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "uid-123", "email": body["email"].(string)})
	}))
	defer srv.Close()

	client, err := NewAdminClient(srv.URL, "service-key")
	require.NoError(t, err)

	identity, err := client.CreateIdentity(context.Background(), "+919000000001@phone.finadvisor.app", "throwaway")
	require.NoError(t, err)
	assert.Equal(t, "uid-123", identity.ID)
	assert.Equal(t, "+919000000001@phone.finadvisor.app", identity.Alias)
	assert.Equal(t, "Bearer service-key", authSeen)
}

func TestAdminClient_CreateIdentityConflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"msg": "user already registered"})
		}))

		client, err := NewAdminClient(srv.URL, "service-key")
		require.NoError(t, err)

		_, err = client.CreateIdentity(context.Background(), "taken@phone.finadvisor.app", "pw")
		assert.ErrorIs(t, err, domain.ErrAliasTaken, "status %d", status)
		srv.Close()
	}
}

func TestAdminClient_ListIdentitiesPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/users", r.URL.Path)
		page := r.URL.Query().Get("page")
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		if page == "1" {
			json.NewEncoder(w).Encode(map[string]any{"users": []map[string]string{
				{"id": "uid-1", "email": "a@phone.finadvisor.app"},
				{"id": "uid-2", "email": "b@phone.finadvisor.app"},
			}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"users": []map[string]string{}})
	}))
	defer srv.Close()

	client, err := NewAdminClient(srv.URL, "service-key")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := client.ListIdentities(ctx, 1, 50)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "uid-1", first[0].ID)

	second, err := client.ListIdentities(ctx, 2, 50)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestAdminClient_SetPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/admin/users/uid-123", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new-secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "uid-123"})
	}))
	defer srv.Close()

	client, err := NewAdminClient(srv.URL, "service-key")
	require.NoError(t, err)

	require.NoError(t, client.SetPassword(context.Background(), "uid-123", "new-secret"))
}

func TestAdminClient_SetPasswordFailureWrapsRotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewAdminClient(srv.URL, "service-key")
	require.NoError(t, err)

	err = client.SetPassword(context.Background(), "uid-123", "new-secret")
	assert.ErrorIs(t, err, domain.ErrCredentialRotation)
}

func TestAdminClient_CreateIdentityServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewAdminClient(srv.URL, "service-key")
	require.NoError(t, err)

	_, err = client.CreateIdentity(context.Background(), "a@phone.finadvisor.app", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAliasTaken)
}
