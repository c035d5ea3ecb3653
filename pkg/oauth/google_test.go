package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthgate/pkg/oauth"
)

var _ oauth.Provider = (*oauth.GoogleProvider)(nil)

// newTestProvider points every provider endpoint at a local server.
func newTestProvider(t *testing.T, handler http.Handler) *oauth.GoogleProvider {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:      "test-id",
		ClientSecret:  "test-secret",
		RedirectURL:   "https://example.com/auth/callback",
		AuthURL:       ts.URL + "/auth",
		TokenURL:      ts.URL + "/token",
		RevocationURL: ts.URL + "/revoke",
		UserInfoURL:   ts.URL + "/userinfo",
		UserAgent:     "oauthgate-test",
	}, oauth.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return p
}

func TestNewGoogleProvider(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, p)
	})

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientSecret: "test-secret",
		})
		require.ErrorIs(t, err, oauth.ErrMissingClientID)
		require.Nil(t, p)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID: "test-id",
		})
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
		require.Nil(t, p)
	})

	t.Run("relative endpoint rejected", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			TokenURL:     "/token",
		})
		require.ErrorIs(t, err, oauth.ErrInvalidEndpoint)
		require.Nil(t, p)
	})

	t.Run("default scopes applied", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
		})
		require.NoError(t, err)

		u := p.AuthCodeURL("state")
		require.Contains(t, u, "scope=")
		require.Contains(t, u, "userinfo.email")
		require.Contains(t, u, "userinfo.profile")
		require.Contains(t, u, "accounts.google.com")
	})

	t.Run("custom scopes", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			Scopes:       []string{"openid"},
		})
		require.NoError(t, err)

		u := p.AuthCodeURL("state")
		require.Contains(t, u, "openid")
		require.NotContains(t, u, "userinfo.email")
	})
}

func TestGoogleProvider_Name(t *testing.T) {
	t.Parallel()
	p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "google", p.Name())
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, http.NotFoundHandler())

	raw := p.AuthCodeURL("test-state")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/auth", u.Path)

	q := u.Query()
	require.Equal(t, "test-state", q.Get("state"))
	require.Equal(t, "test-id", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "https://example.com/auth/callback", q.Get("redirect_uri"))
	require.Contains(t, q.Get("scope"), "userinfo.profile")
	require.Contains(t, q.Get("scope"), "userinfo.email")
}

func TestGoogleProvider_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("successful exchange", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "/token", r.URL.Path)
			assert.Equal(t, "test-code", r.FormValue("code"))
			assert.Equal(t, "test-id", r.FormValue("client_id"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-access-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}))

		token, err := p.Exchange(context.Background(), "test-code", "")
		require.NoError(t, err)
		require.Equal(t, "test-access-token", token.AccessToken)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("custom redirect URI", func(t *testing.T) {
		t.Parallel()

		var receivedRedirectURI atomic.Value
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedRedirectURI.Store(r.FormValue("redirect_uri"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-token",
				"token_type":   "Bearer",
			})
		}))

		_, err := p.Exchange(context.Background(), "test-code", "https://example.com/override")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/override", receivedRedirectURI.Load())
	})

	t.Run("invalid code is not retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Bad Request",
			})
		}))

		_, err := p.Exchange(context.Background(), "bad-code", "")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("response without access token", func(t *testing.T) {
		t.Parallel()

		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
		}))

		_, err := p.Exchange(context.Background(), "code", "")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)
	})
}

func TestGoogleProvider_FetchUserInfo(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/userinfo", r.URL.Path)
			assert.Equal(t, "json", r.URL.Query().Get("alt"))
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "oauthgate-test", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":    "12345",
				"email": "user@example.com",
				"name":  "Test User",
			})
		}))

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.NoError(t, err)
		require.Equal(t, "12345", user.ID)
		require.Equal(t, "user@example.com", user.Email)
		require.Equal(t, "Test User", user.Name)
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()

		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "12345", "name": "No Email"})
		}))

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrMissingEmail)
		require.Nil(t, user)
	})

	t.Run("non-OK status", func(t *testing.T) {
		t.Parallel()

		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("forbidden"))
		}))

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrRequestFailed)
		require.Nil(t, user)
	})

	t.Run("bad JSON", func(t *testing.T) {
		t.Parallel()

		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("not-json"))
		}))

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrDecodeFailed)
		require.Nil(t, user)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			UserInfoURL:  ts.URL + "/userinfo",
		})
		require.NoError(t, err)

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrFetchFailed)
		require.Nil(t, user)
	})
}

func TestGoogleProvider_Revoke(t *testing.T) {
	t.Parallel()

	t.Run("posts token to revocation endpoint", func(t *testing.T) {
		t.Parallel()

		var revoked atomic.Value
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/revoke", r.URL.Path)
			revoked.Store(r.FormValue("token"))
			w.WriteHeader(http.StatusOK)
		}))

		require.NoError(t, p.Revoke(context.Background(), "tok"))
		require.Equal(t, "tok", revoked.Load())
	})

	t.Run("provider rejects token", func(t *testing.T) {
		t.Parallel()

		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))

		require.ErrorIs(t, p.Revoke(context.Background(), "tok"), oauth.ErrRequestFailed)
	})

	t.Run("no endpoint configured", func(t *testing.T) {
		t.Parallel()

		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
		})
		require.NoError(t, err)
		require.ErrorIs(t, p.Revoke(context.Background(), "tok"), oauth.ErrRevocationUnsupported)
	})
}

func TestGoogleDefaultScopes(t *testing.T) {
	t.Parallel()
	scopes := oauth.GoogleDefaultScopes()
	require.Len(t, scopes, 2)
	require.Contains(t, scopes, "https://www.googleapis.com/auth/userinfo.email")
	require.Contains(t, scopes, "https://www.googleapis.com/auth/userinfo.profile")
}

func TestGenerateState(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for range 100 {
		s, err := oauth.GenerateState()
		require.NoError(t, err)
		require.Len(t, s, 43) // 32 bytes, raw base64url
		require.NotContains(t, s, "=")
		_, dup := seen[s]
		require.False(t, dup, "state must not repeat")
		seen[s] = struct{}{}
	}
}
