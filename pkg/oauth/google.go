package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

const (
	// GoogleProviderName is the identifier for Google OAuth provider.
	GoogleProviderName = "google"

	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"
	defaultUserAgent   = "oauthgate"
)

// GoogleDefaultScopes returns the default scopes for Google OAuth.
func GoogleDefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/userinfo.profile",
		"https://www.googleapis.com/auth/userinfo.email",
	}
}

// GoogleProvider implements Provider for Google OAuth.
type GoogleProvider struct {
	config        *oauth2.Config
	httpClient    *http.Client
	userInfoURL   string
	revocationURL string
	userAgent     string
}

// NewGoogleProvider creates a new Google OAuth provider.
// Returns an error if ClientID or ClientSecret is empty or if any configured
// endpoint is not an absolute URL.
func NewGoogleProvider(cfg GoogleConfig, opts ...Option) (*GoogleProvider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	endpoint := googleOAuth.Endpoint
	// Code exchange must never be retried with a different auth style.
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}

	for _, raw := range []string{endpoint.AuthURL, endpoint.TokenURL, userInfoURL, cfg.RevocationURL, cfg.RedirectURL} {
		if raw == "" {
			continue
		}
		if err := validateEndpoint(raw); err != nil {
			return nil, err
		}
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GoogleDefaultScopes()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient:    o.httpClient,
		userInfoURL:   userInfoURL,
		revocationURL: cfg.RevocationURL,
		userAgent:     userAgent,
	}, nil
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() string {
	return GoogleProviderName
}

// AuthCodeURL generates the authorization URL.
func (p *GoogleProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
// A non-empty redirectURI overrides the configured one for this exchange.
func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := p.config
	if redirectURI != "" {
		cfg = &oauth2.Config{
			ClientID:     p.config.ClientID,
			ClientSecret: p.config.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       p.config.Scopes,
			Endpoint:     p.config.Endpoint,
		}
	}

	token, err := cfg.Exchange(p.contextWithHTTPClient(ctx), code)
	if err != nil {
		return nil, errors.Join(ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return nil, errors.Join(ErrExchangeFailed, errors.New("token response has no access_token"))
	}
	return token, nil
}

// FetchUserInfo retrieves user information from the userinfo endpoint.
// The request carries the bearer token and a User-Agent identifying the client.
func (p *GoogleProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	if token == nil || token.AccessToken == "" {
		return nil, errors.Join(ErrFetchFailed, errors.New("empty access token"))
	}

	u, err := url.Parse(p.userInfoURL)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	q := u.Query()
	q.Set("alt", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build userinfo request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch userinfo: %w", err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, errors.New("unexpected nil response from userinfo endpoint"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("userinfo request failed: status=%d body=%s", resp.StatusCode, body))
	}

	var googleUser googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode userinfo: %w", err))
	}

	if strings.TrimSpace(googleUser.Email) == "" {
		return nil, ErrMissingEmail
	}

	return &UserInfo{
		ID:    googleUser.ID,
		Email: googleUser.Email,
		Name:  googleUser.Name,
	}, nil
}

// Revoke invalidates the given token at the provider's revocation endpoint.
func (p *GoogleProvider) Revoke(ctx context.Context, token string) error {
	if p.revocationURL == "" {
		return ErrRevocationUnsupported
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Join(ErrFetchFailed, fmt.Errorf("build revocation request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client().Do(req)
	if err != nil {
		return errors.Join(ErrFetchFailed, fmt.Errorf("revoke token: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Join(ErrRequestFailed, fmt.Errorf("revocation failed: status=%d", resp.StatusCode))
	}
	return nil
}

func (p *GoogleProvider) client() *http.Client {
	if p.httpClient != nil {
		return p.httpClient
	}
	return http.DefaultClient
}

func (p *GoogleProvider) contextWithHTTPClient(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Join(ErrInvalidEndpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.Join(ErrInvalidEndpoint, fmt.Errorf("%q is not an absolute URL", raw))
	}
	return nil
}

// googleUserInfo represents the response from Google's userinfo endpoint.
type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

var _ Provider = (*GoogleProvider)(nil)
