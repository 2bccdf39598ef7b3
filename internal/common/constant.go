package common

// AuthorizationHeaderName carries "Bearer <token>" on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "
