package oauth

// GoogleConfig holds Google OAuth configuration.
// Endpoint URLs default to Google's public endpoints and can be overridden
// to point at a compatible provider or a local test server.
type GoogleConfig struct {
	ClientID      string   `env:"OAUTH_CLIENT_ID,required"`
	ClientSecret  string   `env:"OAUTH_CLIENT_SECRET,required"`
	RedirectURL   string   `env:"OAUTH_REDIRECT_URL,required"`
	AuthURL       string   `env:"OAUTH_AUTH_URL" envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL      string   `env:"OAUTH_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	RevocationURL string   `env:"OAUTH_REVOCATION_URL" envDefault:"https://oauth2.googleapis.com/revoke"`
	UserInfoURL   string   `env:"OAUTH_USERINFO_URL" envDefault:"https://www.googleapis.com/oauth2/v1/userinfo"`
	UserAgent     string   `env:"OAUTH_USER_AGENT" envDefault:"oauthgate"`
	Scopes        []string `env:"OAUTH_SCOPES" envSeparator:","`
}
