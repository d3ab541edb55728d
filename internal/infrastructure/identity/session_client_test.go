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

func TestSessionClient_LoginWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+919000000001@phone.finadvisor.app", body["email"])
		assert.Equal(t, "bridge-secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "platform-access",
			"refresh_token": "platform-refresh",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	client := NewSessionClient(srv.URL, "anon-key")

	session, err := client.LoginWithPassword(context.Background(), "+919000000001@phone.finadvisor.app", "bridge-secret")
	require.NoError(t, err)
	assert.Equal(t, "platform-access", session.AccessToken)
	assert.Equal(t, "platform-refresh", session.RefreshToken)
	assert.Equal(t, int64(3600), session.ExpiresIn)
}

func TestSessionClient_LoginRejected(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		}))

		client := NewSessionClient(srv.URL, "anon-key")
		_, err := client.LoginWithPassword(context.Background(), "a@phone.finadvisor.app", "wrong")
		assert.ErrorIs(t, err, domain.ErrLoginRejected, "status %d", status)
		srv.Close()
	}
}

func TestSessionClient_PlatformErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewSessionClient(srv.URL, "anon-key")
	_, err := client.LoginWithPassword(context.Background(), "a@phone.finadvisor.app", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLoginRejected)
}
