package auth_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthgate/internal/user"
	"github.com/dmitrymomot/oauthgate/pkg/oauth"
	"github.com/dmitrymomot/oauthgate/pkg/session"
)

// MockProvider is a mock implementation of oauth.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://idp.test/auth?state=" + state
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

// MockUserStore is a mock implementation of auth.UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, in user.NewUser) (*user.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*user.User, bool, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Bool(1), args.Error(2)
}

// memoryUsers is an in-memory UserStore that assigns sequential IDs.
type memoryUsers struct {
	users map[string]*user.User
	mu    sync.Mutex
	next  int
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
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *memoryUsers) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// MockSessionManager is a mock implementation of auth.SessionManager.
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *MockSessionManager) Destroy(ctx context.Context, sess *session.Session) error {
	return m.Called(ctx, sess).Error(0)
}

type recordedLogin struct {
	outcome string
	seconds float64
}

type fakeRecorder struct {
	logins []recordedLogin
	mu     sync.Mutex
}

func (r *fakeRecorder) ObserveLogin(outcome string, seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, recordedLogin{outcome: outcome, seconds: seconds})
}

func (r *fakeRecorder) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.logins))
	for _, l := range r.logins {
		out = append(out, l.outcome)
	}
	return out
}
