// Package auth provides authentication middleware for the admin endpoints.
//
// APIKeyMiddleware(mode, header, key, next) checks the API key in the named
// HTTP header before calling next.
//
// When mode != "apikey" or key == "", all requests pass through (useful for
// local development with auth disabled). Viewers on /ws are never
// authenticated.
package auth
