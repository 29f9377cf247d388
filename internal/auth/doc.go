// Package auth provides authentication for the mymanager backoffice.
//
// # Credentials
//
// There is a single account, configured under auth: in the config file.
// Authenticator compares the submitted password against a bcrypt hash;
// a plaintext password in the config is hashed once at startup. Generate
// a hash with `mymanager passwd`.
//
// # Tokens
//
// TokenIssuer signs HS256 JWTs whose "sub" claim is the username. The same
// token serves as the browser session cookie (SessionCookie) and as an API
// bearer token:
//
//	Authorization: Bearer <token>
//
// # HTTP Middleware
//
// HTTPAuthMiddleware guards the JSON API and stores the caller in the
// request context:
//
//	id := auth.FromContext(r.Context())
package auth
