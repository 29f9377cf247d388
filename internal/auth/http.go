// ABOUTME: HTTP middleware for token authentication on API and admin endpoints
// ABOUTME: Accepts an Authorization bearer token or the session cookie

package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// SessionCookie names the cookie carrying the signed session token.
const SessionCookie = "mymanager_session"

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Authenticate resolves the caller of r from its bearer token or session cookie.
func Authenticate(r *http.Request, verifier TokenVerifier) (*Identity, string) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, errMsg := extractBearerToken(h)
		if errMsg != "" {
			return nil, errMsg
		}
		user, err := verifier.Verify(token)
		if err != nil {
			return nil, "invalid token"
		}
		return &Identity{Username: user, Method: "bearer"}, ""
	}

	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, "not authenticated"
	}
	user, err := verifier.Verify(cookie.Value)
	if err != nil {
		return nil, "session expired"
	}
	return &Identity{Username: user, Method: "session"}, ""
}

// HTTPAuthMiddleware rejects unauthenticated requests with a JSON 401 in the
// {success, error} shape the API uses, and adds the Identity to the context.
func HTTPAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, errMsg := Authenticate(r, verifier)
			if id == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="mymanager"`)
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": errMsg})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
