// Package session stores the backend-issued token pair on the client.
//
// The browser cookie jar is the only durable client-side state: two opaque
// string values under fixed cookie names. Tokens are written unconditionally,
// never inspected, and cleared together. Clearing is idempotent.
package session

import "net/http"

const (
	// AccessTokenCookie and RefreshTokenCookie are the fixed names the
	// token pair is keyed by.
	AccessTokenCookie  = "sp_access_token"
	RefreshTokenCookie = "sp_refresh_token"

	// CookiePath ensures the cookies are sent with all requests.
	CookiePath = "/"

	// CookieMaxAge sets the cookie expiration (30 days). The tokens inside
	// expire on their own schedule, backend-owned; the cookie lifetime only
	// bounds how long a browser keeps resending them.
	CookieMaxAge = 30 * 24 * 60 * 60
)

// Store is durable per-client storage for the token pair.
//
// A token is "present" only when its stored value is non-empty; callers
// treat ok=false as the absent-marker. Implementations never validate
// token contents.
type Store interface {
	AccessToken(r *http.Request) (string, bool)
	RefreshToken(r *http.Request) (string, bool)
	SetTokens(w http.ResponseWriter, access, refresh string)
	Clear(w http.ResponseWriter)
}

// CookieStore keeps the token pair in HttpOnly cookies.
type CookieStore struct {
	isSecure bool // Secure flag on cookies (true in production)
}

// NewCookieStore creates a cookie-backed token store.
func NewCookieStore(isSecure bool) *CookieStore {
	return &CookieStore{isSecure: isSecure}
}

func (s *CookieStore) AccessToken(r *http.Request) (string, bool) {
	return readCookie(r, AccessTokenCookie)
}

func (s *CookieStore) RefreshToken(r *http.Request) (string, bool) {
	return readCookie(r, RefreshTokenCookie)
}

// SetTokens overwrites both cookies unconditionally.
func (s *CookieStore) SetTokens(w http.ResponseWriter, access, refresh string) {
	s.setCookie(w, AccessTokenCookie, access, CookieMaxAge)
	s.setCookie(w, RefreshTokenCookie, refresh, CookieMaxAge)
}

// Clear deletes both cookies. Safe to call when nothing is stored.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	s.setCookie(w, AccessTokenCookie, "", -1)
	s.setCookie(w, RefreshTokenCookie, "", -1)
}

func (s *CookieStore) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func readCookie(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// MemoryStore is an in-process Store for tests and isolated controller
// instances. It ignores the request/response arguments and holds a single
// token pair.
type MemoryStore struct {
	access  string
	refresh string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken(*http.Request) (string, bool) {
	return s.access, s.access != ""
}

func (s *MemoryStore) RefreshToken(*http.Request) (string, bool) {
	return s.refresh, s.refresh != ""
}

func (s *MemoryStore) SetTokens(_ http.ResponseWriter, access, refresh string) {
	s.access = access
	s.refresh = refresh
}

func (s *MemoryStore) Clear(http.ResponseWriter) {
	s.access = ""
	s.refresh = ""
}
