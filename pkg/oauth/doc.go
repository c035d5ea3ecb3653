// Package oauth provides the OAuth2 authorization code flow against Google
// (or any provider exposing Google-compatible endpoints).
//
// The Provider interface covers the steps a sign-in backend needs: building
// the authorization URL, exchanging the code for a token, fetching the user
// profile and revoking the token on logout.
//
// # Usage
//
//	provider, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
//		ClientID:     os.Getenv("OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/auth/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state, err := oauth.GenerateState()
//	if err != nil {
//		// handle error
//	}
//	url := provider.AuthCodeURL(state)
//
//	// In the callback handler, after comparing the echoed state:
//	token, err := provider.Exchange(ctx, code, "")
//	if err != nil {
//		// handle error
//	}
//	info, err := provider.FetchUserInfo(ctx, token)
//
// # Endpoints
//
// Authorization, token, revocation and userinfo URLs default to Google's and
// can be overridden through GoogleConfig. The token endpoint is always called
// with client credentials in the request body so an authorization code is
// sent at most once.
//
// # Testing
//
// Point the endpoints at an httptest server, or inject a client:
//
//	provider, err := oauth.NewGoogleProvider(cfg, oauth.WithHTTPClient(ts.Client()))
//
// # Error Handling
//
//   - ErrMissingClientID, ErrMissingClientSecret, ErrInvalidEndpoint: bad configuration
//   - ErrExchangeFailed: provider rejected the code or returned a malformed token
//   - ErrFetchFailed, ErrNilResponse: transport failure
//   - ErrRequestFailed: non-2xx response
//   - ErrDecodeFailed, ErrMissingEmail: profile response does not match the schema
//
// Errors are composed with errors.Join; use errors.Is for checking.
package oauth
