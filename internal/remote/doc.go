// Package remote is the facade over external JSON sources used when the
// backoffice runs in remote mode.
//
// Each (kind, source) pair resolves to a base URL and a path through a
// lookup table; unmapped pairs use "/<kind>". List responses are cached for
// five minutes under "<kind>_<source>_<encoded params>". Non-2xx responses
// surface as *RequestError, which matches ErrRequestFailed.
//
// Another MyManager instance can act as a source: point a base URL at its
// /api prefix and set a bearer token.
package remote
