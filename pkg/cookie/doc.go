// Package cookie writes and verifies HMAC-SHA256 signed cookies.
//
// The session manager stores only an opaque token in the cookie; signing
// lets it reject forged tokens before touching the session store.
//
//	m, err := cookie.New(os.Getenv("SESSION_SECRET"), cookie.WithSecure(true))
//	if err != nil {
//		log.Fatal(err) // secret shorter than 32 bytes
//	}
//	m.SetSigned(w, "__sid", token, 86400)
//	token, err := m.GetSigned(r, "__sid")
//	if errors.Is(err, cookie.ErrBadSig) {
//		// tampered cookie
//	}
package cookie
