// Package common contains constants and sentinel errors shared by the
// session client and the development identity backend.
package common

// TokenKey is the well-known metadata key under which the session token is
// persisted on the client.
const TokenKey = "accessToken"

// AuthorizationHeaderName carries the bearer token on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName correlates client requests with backend logs.
const RequestIDHeaderName = "X-Request-ID"
