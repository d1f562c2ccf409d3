package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestProvider(t *testing.T, userInfo http.HandlerFunc) *GoogleProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", userInfo)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	p := NewGoogleProvider("client-id", "client-secret", "http://localhost:8080/auth/google/callback")
	p.cfg.Endpoint = oauth2.Endpoint{
		AuthURL:  ts.URL + "/auth",
		TokenURL: ts.URL + "/token",
	}
	p.userInfoURL = ts.URL + "/userinfo"

	return p
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider("client-id", "client-secret", "http://localhost:8080/auth/google/callback")

	u, err := url.Parse(p.AuthCodeURL("some-state"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "some-state", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Contains(t, q.Get("scope"), "userinfo.email")
}

func TestGoogleProvider_Identify(t *testing.T) {
	okUserInfo := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "google-123",
			"email": "alice@example.com",
			"name":  "Alice",
		})
	}

	t.Run("success", func(t *testing.T) {
		p := newTestProvider(t, okUserInfo)

		identity, err := p.Identify(context.Background(), "good-code")

		require.NoError(t, err)
		assert.Equal(t, "google-123", identity.Subject)
		assert.Equal(t, "alice@example.com", identity.Email)
		assert.Equal(t, "Alice", identity.Name)
	})

	t.Run("exchange failure", func(t *testing.T) {
		p := newTestProvider(t, okUserInfo)

		identity, err := p.Identify(context.Background(), "bad-code")

		assert.Error(t, err)
		assert.Nil(t, identity)
	})

	t.Run("userinfo failure", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		identity, err := p.Identify(context.Background(), "good-code")

		assert.Error(t, err)
		assert.Nil(t, identity)
	})

	t.Run("empty subject", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"email": "alice@example.com"})
		})

		identity, err := p.Identify(context.Background(), "good-code")

		assert.ErrorIs(t, err, errEmptySubject)
		assert.Nil(t, identity)
	})
}
