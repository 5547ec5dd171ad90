package common

// AuthorizationHeaderName carries the bearer token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"
