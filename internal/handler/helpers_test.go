package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthgate/internal/auth"
	"github.com/dmitrymomot/oauthgate/internal/handler"
	"github.com/dmitrymomot/oauthgate/internal/metrics"
	"github.com/dmitrymomot/oauthgate/internal/user"
	"github.com/dmitrymomot/oauthgate/pkg/cookie"
	"github.com/dmitrymomot/oauthgate/pkg/health"
	"github.com/dmitrymomot/oauthgate/pkg/oauth"
	"github.com/dmitrymomot/oauthgate/pkg/session"
)

const testSecret = "this-is-a-32-byte-secret-key!!!!"

// MockProvider is a mock implementation of oauth.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://idp.test/auth?state=" + url.QueryEscape(state)
}

func (m *MockProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	args := m.Called(ctx, code, redirectURI)
	tok, _ := args.Get(0).(*oauth2.Token)
	return tok, args.Error(1)
}

func (m *MockProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*oauth.UserInfo, error) {
	args := m.Called(ctx, token)
	info, _ := args.Get(0).(*oauth.UserInfo)
	return info, args.Error(1)
}

func (m *MockProvider) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// memoryUsers is an in-memory auth.UserStore.
type memoryUsers struct {
	users   map[string]*user.User
	findErr error
	mu      sync.Mutex
	next    int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*user.User)}
}

func (s *memoryUsers) Create(_ context.Context, in user.NewUser) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	u := &user.User{
		ID:          fmt.Sprintf("user-%d", s.next),
		Email:       in.Email,
		Name:        in.Name,
		AccessToken: in.AccessToken,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *memoryUsers) FindByID(_ context.Context, id string) (*user.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, false, s.findErr
	}
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *memoryUsers) failFind(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findErr = err
}

type testApp struct {
	server   *httptest.Server
	client   *http.Client
	provider *MockProvider
	users    *memoryUsers
	store    *session.MemoryStore
	registry *prometheus.Registry
}

func newTestApp(t *testing.T, checks health.Checks, opts ...handler.AuthOption) *testApp {
	t.Helper()

	provider := &MockProvider{}
	users := newMemoryUsers()
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	cookies, err := cookie.New(testSecret)
	require.NoError(t, err)
	sessions := session.NewManager(store, cookies)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	backend := auth.NewOAuthBackend(provider, users, auth.WithRecorder(m))
	router := handler.NewRouter(handler.RouterConfig{
		Metrics:        m,
		Sessions:       sessions,
		Checks:         checks,
		AllowedOrigins: []string{"https://app.example.com"},
	}, handler.NewAuthHandler(backend, sessions, nil, opts...))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		provider: provider,
		users:    users,
		store:    store,
		registry: reg,
	}
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, a.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// startLogin calls /auth/login and returns the CSRF state embedded in the URL.
func (a *testApp) startLogin(t *testing.T, next string) string {
	t.Helper()
	path := "/auth/login"
	if next != "" {
		path += "?next=" + url.QueryEscape(next)
	}
	resp := a.get(t, path)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	u, err := url.Parse(body.URL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func (a *testApp) sessionCookie(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(a.server.URL)
	require.NoError(t, err)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == "__sid" {
			return c.Value
		}
	}
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func (a *testApp) expectSignIn(code, accessToken, email, name string) {
	a.provider.On("Exchange", mock.Anything, code, "").
		Return(&oauth2.Token{AccessToken: accessToken}, nil).Once()
	a.provider.On("FetchUserInfo", mock.Anything, mock.MatchedBy(func(tok *oauth2.Token) bool {
		return tok.AccessToken == accessToken
	})).Return(&oauth.UserInfo{ID: "sub-" + email, Email: email, Name: name}, nil).Once()
}
